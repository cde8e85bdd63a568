// Command spectroscopy-viewer explores hyperspectral Raman cubes: pick a
// shift index to see the intensity map, then pick a pixel (by typing or by
// clicking the map) to see its smoothed spectrum with the biomarker bands.
// Without a file, or if the file cannot be used, it shows simulated data.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"fyne.io/fyne/v2/app"

	"github.com/shreya-3-4/Spectroscopy-viewer/params"
	"github.com/shreya-3-4/Spectroscopy-viewer/session"
	"github.com/shreya-3-4/Spectroscopy-viewer/viewer"
)

const version = "1_0_0"

func main() {
	paramPath := flag.String("params", "", "JSON5 parameter file")
	verbose := flag.Bool("v", false, "log selections")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "\n\tUsage: spectroscopy-viewer [-params <parameter-file>] [-v] [file.mat]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 1 {
		fmt.Println("\n\tWrong number of arguments.")
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	p := params.Defaults("Spectroscopy Viewer", session.DefaultConfig())
	if *paramPath != "" {
		// Read the Json5 (or Json) parameter file
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
		// Check for user wanting printout of the parameter file
		if p.ShowInput {
			fmt.Printf("%s", "\nPrintout of complete parameter file contents...\n")
			fmt.Println(string(data))
		}
	}

	fmt.Printf("\nVersion %s\n\n", version)

	// We supply an ID because the preferences API remembers the last folder used
	myApp := app.NewWithID("io.github.shreya34.spectroscopyviewer")
	v, err := viewer.New(myApp, viewer.SpectroscopyOptions(p))
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tCould not create the viewer: %w\n", err))
		os.Exit(4)
	}

	// A file that cannot be used falls back to simulated data, so only a
	// broken configuration fails here.
	if err := v.Load(flag.Arg(0)); err != nil {
		fmt.Println(fmt.Errorf("\n\tCould not show data: %w\n", err))
		os.Exit(5)
	}
	v.ShowAndRun()
}
