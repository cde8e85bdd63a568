// Command ramanviewer is the Raman Spectrum Viewer. It needs a MATLAB file
// holding a 3-D array under "data": there is no simulated fallback. A pixel
// is chosen by typing its coordinates and pressing "Show Spectrum".
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"github.com/shreya-3-4/Spectroscopy-viewer/params"
	"github.com/shreya-3-4/Spectroscopy-viewer/session"
	"github.com/shreya-3-4/Spectroscopy-viewer/viewer"
)

func main() {
	paramPath := flag.String("params", "", "JSON5 parameter file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "\n\tUsage: ramanviewer [-params <parameter-file>] [file.mat]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 1 {
		fmt.Println("\n\tWrong number of arguments.")
		flag.Usage()
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	p := params.Defaults("Raman Spectrum Viewer", session.RamanConfig())
	if *paramPath != "" {
		data, err := os.ReadFile(*paramPath)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tAttempt to read parameter file %q failed: %w\n", *paramPath, err))
			os.Exit(2)
		}
		p, err = params.Parse(data, p)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tProblem in parameter file %q: %w\n", *paramPath, err))
			os.Exit(3)
		}
		if p.ShowInput {
			fmt.Printf("%s", "\nPrintout of complete parameter file contents...\n")
			fmt.Println(string(data))
		}
	}

	myApp := app.NewWithID("io.github.shreya34.ramanviewer")
	v, err := viewer.New(myApp, viewer.RamanOptions(p))
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tCould not create the viewer: %w\n", err))
		os.Exit(4)
	}

	// The window still opens so that another file can be chosen.
	if err := v.Load(flag.Arg(0)); err != nil {
		fmt.Println(fmt.Errorf("\n\t%w\n", err))
		dialog.ShowError(err, v.Window())
	}
	v.ShowAndRun()
}
