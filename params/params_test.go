package params

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreya-3-4/Spectroscopy-viewer/cube"
	"github.com/shreya-3-4/Spectroscopy-viewer/session"
)

func base() Params {
	return Defaults("Spectroscopy Viewer", session.DefaultConfig())
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	p, err := Parse([]byte("{}"), base())
	require.NoError(t, err)
	assert.Equal(t, base(), p)
}

func TestParseFullFile(t *testing.T) {
	data := []byte(`{
		// JSON5 allows comments, unquoted keys and trailing commas.
		title: "Bladder biopsy",
		data_key: "cube",
		shift_min: 500,
		shift_max: 1700,
		synthetic: {
			rows: 16, cols: 24, shifts: 300, seed: 42,
			noise_sigma: 0.01, jitter_min: 0.9, jitter_max: 1.1,
			peaks: [{center: 1003, width: 8}, {center: 1655, width: 20},],
		},
		smoothing: {window_length: 11, polyorder: 2},
		biomarkers: [
			{label: "Phenylalanine", low: 1000, high: 1006, color: "gold"},
			{label: "Amide I", low: 1650, high: 1660, color: "#ff8000"},
		],
		default_shift_index: 40,
		default_x: 3,
		default_y: 4,
		colormap: "gray",
		map_percentile_low: 1,
		map_percentile_high: 99,
		window_size_pixels: 900,
		show_input_bool: true,
	}`)
	p, err := Parse(data, base())
	require.NoError(t, err)

	assert.Equal(t, "Bladder biopsy", p.Title)
	assert.Equal(t, "cube", p.Source.Key)
	assert.Equal(t, 500.0, p.Source.ShiftMin)
	assert.Equal(t, 1700.0, p.Source.Synthetic.ShiftMax)

	syn := p.Source.Synthetic
	assert.Equal(t, [3]int{16, 24, 300}, [3]int{syn.Rows, syn.Cols, syn.Shifts})
	assert.Equal(t, uint64(42), syn.Seed)
	assert.Equal(t, 0.01, syn.NoiseSigma)
	assert.Equal(t, []cube.Peak{{Center: 1003, Width: 8}, {Center: 1655, Width: 20}}, syn.Peaks)

	assert.Equal(t, 11, p.Session.Window)
	assert.Equal(t, 2, p.Session.Order)
	require.Len(t, p.Session.Regions, 2)
	assert.Equal(t, "Amide I", p.Session.Regions[1].Label)
	assert.Equal(t, color.NRGBA{255, 128, 0, 255}, p.Session.Regions[1].Color)
	assert.Equal(t, 40, p.Session.DefaultShiftIndex)
	assert.Equal(t, 3, p.Session.DefaultX)
	assert.Equal(t, 4, p.Session.DefaultY)

	assert.Equal(t, "gray", p.ColorMap)
	assert.Equal(t, 1.0, p.PercentileLow)
	assert.Equal(t, 99.0, p.PercentileHigh)
	assert.Equal(t, 900, p.WindowSizePixels)
	assert.True(t, p.ShowInput)

	// The base defaults are not modified.
	assert.Len(t, base().Session.Regions, 3)
	assert.Len(t, base().Source.Synthetic.Peaks, 3)
}

func TestParseErrorsNameTheKey(t *testing.T) {
	for _, tc := range []struct {
		data, msg string
	}{
		{`{show_input_bool: "yes"}`, "show_input_bool: is not a bool"},
		{`{window_size_pixels: "big"}`, "window_size_pixels: is not a float64"},
		{`{default_x: 3.5}`, "default_x: is not an integer"},
		{`{data_key: 7}`, "data_key: is not a string"},
		{`{shift_min: 2000}`, "shift_min: 2000 is not below shift_max 1800"},
		{`{synthetic: {rows: 0}}`, "synthetic.rows: must be positive"},
		{`{synthetic: {seed: -1}}`, "synthetic.seed: is not a non-negative integer"},
		{`{synthetic: {jitter_min: 2}}`, "synthetic.jitter_min: is greater than synthetic.jitter_max"},
		{`{synthetic: {peaks: [{center: 1000}]}}`, "synthetic.peaks[0].width: not found"},
		{`{smoothing: {window_length: 20}}`, "smoothing.window_length: must be a positive odd number"},
		{`{smoothing: {polyorder: 21}}`, "smoothing.polyorder: must be at least 0 and less than smoothing.window_length"},
		{`{biomarkers: {}}`, "biomarkers: is not an array"},
		{`{biomarkers: [{label: "x", low: 1, high: 2, color: "nope"}]}`, `biomarkers[0].color: unknown color "nope"`},
		{`{biomarkers: [{label: "x", low: 3, high: 2, color: "red"}]}`, "biomarkers: biomarker \"x\": low bound 3 is not below high bound 2"},
		{`{colormap: "jet"}`, `colormap: render: unknown color map "jet"`},
		{`{map_percentile_low: 50, map_percentile_high: 50}`, "map_percentile_low, map_percentile_high: must satisfy 0 <= low < high <= 100"},
	} {
		_, err := Parse([]byte(tc.data), base())
		if assert.Error(t, err, tc.data) {
			assert.Equal(t, tc.msg, err.Error(), tc.data)
		}
	}
}

func TestParseFormatError(t *testing.T) {
	_, err := Parse([]byte(`{unterminated`), base())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format error")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{default_shift_index: 7}`), 0o644))
	p, err := Load(path, base())
	require.NoError(t, err)
	assert.Equal(t, 7, p.Session.DefaultShiftIndex)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json5"), base())
	assert.Error(t, err)
}
