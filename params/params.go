// Package params reads the optional JSON5 parameter file shared by the
// viewers and the headless renderer. Every key is optional; missing keys keep
// their defaults.
package params

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	json "github.com/KevinWang15/go-json5"

	"github.com/shreya-3-4/Spectroscopy-viewer/biomarker"
	"github.com/shreya-3-4/Spectroscopy-viewer/cube"
	"github.com/shreya-3-4/Spectroscopy-viewer/render"
	"github.com/shreya-3-4/Spectroscopy-viewer/session"
)

// Params is everything a parameter file can set.
type Params struct {
	Title   string
	Source  cube.SourceOptions
	Session session.Config

	ColorMap                      string
	PercentileLow, PercentileHigh float64

	// WindowSizePixels is the initial window width; 0 keeps the viewer's own.
	WindowSizePixels int
	ShowInput        bool
}

// Defaults returns the parameters used when no file is given.
func Defaults(title string, cfg session.Config) Params {
	return Params{
		Title:          title,
		Source:         cube.DefaultSource(),
		Session:        cfg,
		ColorMap:       "hot",
		PercentileHigh: 100,
	}
}

// Load reads and validates the parameter file at path on top of base.
func Load(path string, base Params) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("attempt to read parameter file %q failed: %w", path, err)
	}
	p, err := Parse(data, base)
	if err != nil {
		return base, fmt.Errorf("parameter file %q: %w", path, err)
	}
	return p, nil
}

// Parse reads JSON5 (or JSON) parameter data on top of base.
func Parse(data []byte, base Params) (Params, error) {
	// Parse json(5) data into a generic container
	var jsonTable map[string]interface{}
	if err := json.Unmarshal(data, &jsonTable); err != nil {
		return base, fmt.Errorf("format error: %w", err)
	}

	p := base
	// Slices are replaced, never appended to, so base stays untouched.
	p.Session.Regions = append([]biomarker.Region(nil), base.Session.Regions...)
	p.Source.Synthetic.Peaks = append([]cube.Peak(nil), base.Source.Synthetic.Peaks...)

	if msg, ok := validateJsonTableAndFillParams(jsonTable, &p); !ok {
		return base, errors.New(msg)
	}
	return p, nil
}

func getLeafValue(jsonTable map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = jsonTable
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func keyName(path []string) string {
	return strings.Join(path, ".")
}

// The leaf helpers leave dst alone when the key is missing.

func floatLeaf(jsonTable map[string]interface{}, dst *float64, path ...string) (string, bool) {
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		return "", true
	}
	f, ok := v.(float64)
	if !ok {
		return keyName(path) + ": is not a float64", false
	}
	*dst = f
	return "", true
}

func intLeaf(jsonTable map[string]interface{}, dst *int, path ...string) (string, bool) {
	var f float64
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		return "", true
	}
	f, ok = v.(float64)
	if !ok {
		return keyName(path) + ": is not a float64", false
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return keyName(path) + ": is not an integer", false
	}
	*dst = int(f)
	return "", true
}

func stringLeaf(jsonTable map[string]interface{}, dst *string, path ...string) (string, bool) {
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		return "", true
	}
	s, ok := v.(string)
	if !ok {
		return keyName(path) + ": is not a string", false
	}
	*dst = s
	return "", true
}

func boolLeaf(jsonTable map[string]interface{}, dst *bool, path ...string) (string, bool) {
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		return "", true
	}
	b, ok := v.(bool)
	if !ok {
		return keyName(path) + ": is not a bool", false
	}
	*dst = b
	return "", true
}

func validateJsonTableAndFillParams(jsonTable map[string]interface{}, p *Params) (string, bool) {
	if msg, ok := boolLeaf(jsonTable, &p.ShowInput, "show_input_bool"); !ok {
		return msg, false
	}
	if msg, ok := stringLeaf(jsonTable, &p.Title, "title"); !ok {
		return msg, false
	}

	if msg, ok := intLeaf(jsonTable, &p.WindowSizePixels, "window_size_pixels"); !ok {
		return msg, false
	}
	if p.WindowSizePixels < 0 {
		return "window_size_pixels: must not be negative", false
	}

	if msg, ok := stringLeaf(jsonTable, &p.Source.Key, "data_key"); !ok {
		return msg, false
	}

	if msg, ok := floatLeaf(jsonTable, &p.Source.ShiftMin, "shift_min"); !ok {
		return msg, false
	}
	if msg, ok := floatLeaf(jsonTable, &p.Source.ShiftMax, "shift_max"); !ok {
		return msg, false
	}
	if !(p.Source.ShiftMin < p.Source.ShiftMax) {
		return fmt.Sprintf("shift_min: %g is not below shift_max %g", p.Source.ShiftMin, p.Source.ShiftMax), false
	}
	p.Source.Synthetic.ShiftMin = p.Source.ShiftMin
	p.Source.Synthetic.ShiftMax = p.Source.ShiftMax

	if msg, ok := validateSynthetic(jsonTable, &p.Source.Synthetic); !ok {
		return msg, false
	}

	if msg, ok := intLeaf(jsonTable, &p.Session.Window, "smoothing", "window_length"); !ok {
		return msg, false
	}
	if msg, ok := intLeaf(jsonTable, &p.Session.Order, "smoothing", "polyorder"); !ok {
		return msg, false
	}
	if p.Session.Window <= 0 || p.Session.Window%2 == 0 {
		return "smoothing.window_length: must be a positive odd number", false
	}
	if p.Session.Order < 0 || p.Session.Order >= p.Session.Window {
		return "smoothing.polyorder: must be at least 0 and less than smoothing.window_length", false
	}

	if msg, ok := validateBiomarkers(jsonTable, p); !ok {
		return msg, false
	}

	if msg, ok := intLeaf(jsonTable, &p.Session.DefaultShiftIndex, "default_shift_index"); !ok {
		return msg, false
	}
	if msg, ok := intLeaf(jsonTable, &p.Session.DefaultX, "default_x"); !ok {
		return msg, false
	}
	if msg, ok := intLeaf(jsonTable, &p.Session.DefaultY, "default_y"); !ok {
		return msg, false
	}

	if msg, ok := stringLeaf(jsonTable, &p.ColorMap, "colormap"); !ok {
		return msg, false
	}
	if _, err := render.ColorMapByName(p.ColorMap); err != nil {
		return "colormap: " + err.Error(), false
	}

	if msg, ok := floatLeaf(jsonTable, &p.PercentileLow, "map_percentile_low"); !ok {
		return msg, false
	}
	if msg, ok := floatLeaf(jsonTable, &p.PercentileHigh, "map_percentile_high"); !ok {
		return msg, false
	}
	if !(0 <= p.PercentileLow && p.PercentileLow < p.PercentileHigh && p.PercentileHigh <= 100) {
		return "map_percentile_low, map_percentile_high: must satisfy 0 <= low < high <= 100", false
	}

	return "No problem found in parameter file", true
}

func validateSynthetic(jsonTable map[string]interface{}, s *cube.SyntheticOptions) (string, bool) {
	if _, ok := getLeafValue(jsonTable, "synthetic"); !ok {
		return "", true
	}

	for _, leaf := range []struct {
		key string
		dst *int
	}{
		{"rows", &s.Rows},
		{"cols", &s.Cols},
		{"shifts", &s.Shifts},
	} {
		if msg, ok := intLeaf(jsonTable, leaf.dst, "synthetic", leaf.key); !ok {
			return msg, false
		}
		if *leaf.dst <= 0 {
			return "synthetic." + leaf.key + ": must be positive", false
		}
	}

	seed := float64(s.Seed)
	if msg, ok := floatLeaf(jsonTable, &seed, "synthetic", "seed"); !ok {
		return msg, false
	}
	if seed < 0 || seed != math.Trunc(seed) {
		return "synthetic.seed: is not a non-negative integer", false
	}
	s.Seed = uint64(seed)

	if msg, ok := floatLeaf(jsonTable, &s.NoiseSigma, "synthetic", "noise_sigma"); !ok {
		return msg, false
	}
	if s.NoiseSigma < 0 {
		return "synthetic.noise_sigma: must not be negative", false
	}
	if msg, ok := floatLeaf(jsonTable, &s.JitterMin, "synthetic", "jitter_min"); !ok {
		return msg, false
	}
	if msg, ok := floatLeaf(jsonTable, &s.JitterMax, "synthetic", "jitter_max"); !ok {
		return msg, false
	}
	if s.JitterMin > s.JitterMax {
		return "synthetic.jitter_min: is greater than synthetic.jitter_max", false
	}

	v, ok := getLeafValue(jsonTable, "synthetic", "peaks")
	if !ok {
		return "", true
	}
	list, ok := v.([]interface{})
	if !ok {
		return "synthetic.peaks: is not an array", false
	}
	s.Peaks = s.Peaks[:0]
	for i, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return fmt.Sprintf("synthetic.peaks[%d]: is not an object", i), false
		}
		var pk cube.Peak
		for _, leaf := range []struct {
			key string
			dst *float64
		}{
			{"center", &pk.Center},
			{"width", &pk.Width},
		} {
			v, ok := entry[leaf.key]
			if !ok {
				return fmt.Sprintf("synthetic.peaks[%d].%s: not found", i, leaf.key), false
			}
			*leaf.dst, ok = v.(float64)
			if !ok {
				return fmt.Sprintf("synthetic.peaks[%d].%s: is not a float64", i, leaf.key), false
			}
		}
		if pk.Width <= 0 {
			return fmt.Sprintf("synthetic.peaks[%d].width: must be positive", i), false
		}
		s.Peaks = append(s.Peaks, pk)
	}
	return "", true
}

func validateBiomarkers(jsonTable map[string]interface{}, p *Params) (string, bool) {
	v, ok := getLeafValue(jsonTable, "biomarkers")
	if !ok {
		return "", true
	}
	list, ok := v.([]interface{})
	if !ok {
		return "biomarkers: is not an array", false
	}

	regions := make([]biomarker.Region, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return fmt.Sprintf("biomarkers[%d]: is not an object", i), false
		}

		var r biomarker.Region
		r.Label, ok = entry["label"].(string)
		if !ok {
			return fmt.Sprintf("biomarkers[%d].label: is not a string", i), false
		}
		r.Low, ok = entry["low"].(float64)
		if !ok {
			return fmt.Sprintf("biomarkers[%d].low: is not a float64", i), false
		}
		r.High, ok = entry["high"].(float64)
		if !ok {
			return fmt.Sprintf("biomarkers[%d].high: is not a float64", i), false
		}
		name, ok := entry["color"].(string)
		if !ok {
			return fmt.Sprintf("biomarkers[%d].color: is not a string", i), false
		}
		c, err := biomarker.ParseColor(name)
		if err != nil {
			return fmt.Sprintf("biomarkers[%d].color: %v", i, err), false
		}
		r.Color = c
		regions = append(regions, r)
	}
	if err := biomarker.Validate(regions); err != nil {
		return "biomarkers: " + err.Error(), false
	}
	p.Session.Regions = regions
	return "", true
}
