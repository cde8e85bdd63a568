// Command ramanplot renders the intensity map and the smoothed spectrum of
// one pixel to PNG files without opening a window. It can also write the
// cube it used, loaded or simulated, to a MAT-file.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shreya-3-4/Spectroscopy-viewer/cube"
	"github.com/shreya-3-4/Spectroscopy-viewer/matfile"
	"github.com/shreya-3-4/Spectroscopy-viewer/params"
	"github.com/shreya-3-4/Spectroscopy-viewer/render"
	"github.com/shreya-3-4/Spectroscopy-viewer/session"
)

func main() {
	in := flag.String("in", "", "MATLAB file holding the cube (simulated data if empty)")
	paramPath := flag.String("params", "", "JSON5 parameter file")
	index := flag.Int("index", -1, "shift index of the map (default from parameters)")
	px := flag.Int("x", -1, "pixel column (default from parameters)")
	py := flag.Int("y", -1, "pixel row (default from parameters)")
	mapOut := flag.String("map", "intensity_map.png", "map figure output")
	spectrumOut := flag.String("spectrum", "spectrum.png", "spectrum plot output")
	save := flag.String("save", "", "write the cube and shift axis to this MAT-file")
	seed := flag.Uint64("seed", 0, "seed for simulated data (0 uses the parameters or the clock)")
	raman := flag.Bool("raman", false, "use the Raman Spectrum Viewer labels and require -in")
	crosshair := flag.Bool("crosshair", true, "mark the selected pixel on the map")
	flag.Parse()

	if flag.NArg() != 0 {
		fmt.Println("\n\tWrong number of arguments.")
		flag.Usage()
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	programStart := time.Now()

	cfg := session.DefaultConfig()
	if *raman {
		cfg = session.RamanConfig()
	}
	p := params.Defaults("ramanplot", cfg)
	if *paramPath != "" {
		var err error
		p, err = params.Load(*paramPath, p)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\t%w\n", err))
			os.Exit(2)
		}
	}
	if *seed != 0 {
		p.Source.Synthetic.Seed = *seed
	}

	var ds cube.Dataset
	if *raman {
		if *in == "" {
			fmt.Println("\n\t-raman requires -in <file.mat>")
			os.Exit(1)
		}
		c, shifts, err := cube.DecodeFile(*in, p.Source)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tError loading file %q: %w\n", *in, err))
			os.Exit(3)
		}
		ds = cube.Dataset{Cube: c, Shifts: shifts, Status: cube.Status{Level: cube.LevelSuccess, Message: "File loaded successfully!"}}
	} else {
		var err error
		ds, err = cube.LoadFile(*in, p.Source)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tCould not obtain a cube: %w\n", err))
			os.Exit(3)
		}
	}
	rows, cols, depth := ds.Cube.Dims()
	fmt.Printf("%s\n", ds.Status.Message)
	fmt.Printf("Cube is %d rows x %d columns with %d shifts from %0.1f to %0.1f cm-1\n",
		rows, cols, depth, ds.Shifts[0], ds.Shifts[depth-1])
	lo, hi := ds.Cube.Range()
	fmt.Printf("Intensities range from %g to %g\n", lo, hi)

	if *save != "" {
		key := p.Source.Key
		if key == "" {
			key = cube.DefaultKey
		}
		vars := []*matfile.Variable{
			{Name: key, Dims: []int{rows, cols, depth}, Data: ds.Cube.ColumnMajor()},
			{Name: "shifts", Dims: []int{1, depth}, Data: ds.Shifts},
		}
		opts := matfile.WriteOptions{Compress: true, Description: "Raman cube written by ramanplot"}
		if err := matfile.Save(*save, vars, opts); err != nil {
			fmt.Println(fmt.Errorf("\n\tWriting of %q failed: %w\n", *save, err))
			os.Exit(4)
		}
		fmt.Printf("Cube written to %s\n", *save)
	}

	sess, err := session.New(ds, p.Session)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\t%w\n", err))
		os.Exit(5)
	}
	if *index >= 0 {
		sess.SetShiftIndex(*index)
	}
	x, y := sess.Pixel()
	if *px >= 0 {
		x = *px
	}
	if *py >= 0 {
		y = *py
	}
	x, y = sess.SetPixel(x, y)

	cmap, err := render.ColorMapByName(p.ColorMap)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\t%w\n", err))
		os.Exit(5)
	}
	mapOpts := sess.MapOptions(cmap, p.PercentileLow, p.PercentileHigh)
	if *crosshair {
		mapOpts.Cursor = &image.Point{X: x, Y: y}
	}

	start := time.Now()
	img, err := render.MapFigure(sess.Map(), sess.ShiftIndex(), mapOpts)
	if err != nil {
		fmt.Println(fmt.Errorf("creation of the map figure failed: %w", err))
		os.Exit(6)
	}
	if err := render.SavePNG(*mapOut, img); err != nil {
		fmt.Println(fmt.Errorf("writing of %q failed: %w", *mapOut, err))
		os.Exit(7)
	}
	fmt.Printf("%s written to %s in %s\n", sess.MapTitle(), *mapOut, time.Since(start))

	start = time.Now()
	sp, err := sess.Spectrum()
	if err != nil {
		fmt.Println(fmt.Errorf("smoothing failed: %w", err))
		os.Exit(8)
	}
	fig, err := sess.SpectrumFigure(sp)
	if err != nil {
		fmt.Println(fmt.Errorf("creation of the spectrum plot failed: %w", err))
		os.Exit(9)
	}
	img, err = fig.Image(960, 540)
	if err != nil {
		fmt.Println(fmt.Errorf("rendering of the spectrum plot failed: %w", err))
		os.Exit(9)
	}
	if err := render.SavePNG(*spectrumOut, img); err != nil {
		fmt.Println(fmt.Errorf("writing of %q failed: %w", *spectrumOut, err))
		os.Exit(10)
	}
	fmt.Printf("%s written to %s in %s\n", sp.Title, *spectrumOut, time.Since(start))
	if shift, peak, ok := sp.Peak(); ok {
		fmt.Printf("Strongest peak is %g at %0.1f cm-1", peak, shift)
		if bands := sess.Bands(shift); len(bands) > 0 {
			fmt.Printf(" (%s)", strings.Join(bands, ", "))
		}
		fmt.Println()
	}

	fmt.Printf("\nTotal program run time is %s\n", time.Since(programStart))
}
