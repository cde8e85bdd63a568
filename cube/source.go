package cube

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shreya-3-4/Spectroscopy-viewer/matfile"
)

// DefaultKey is the MAT-file variable holding the cube.
const DefaultKey = "data"

// ErrMissingKey is returned when a MAT-file has no variable under the
// expected key.
var ErrMissingKey = errors.New("cube: variable not found")

// Level classifies a load outcome for display.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Status is the user-facing message describing how a dataset was obtained.
type Status struct {
	Level   Level
	Message string
}

// Dataset is a cube together with its shift axis.
type Dataset struct {
	Cube   *Cube
	Shifts []float64
	// Synthetic is set when the cube was generated instead of loaded.
	Synthetic bool
	Status    Status
}

// SourceOptions configures loading.
type SourceOptions struct {
	// Key names the MAT-file variable holding the cube. Empty means DefaultKey.
	Key                string
	ShiftMin, ShiftMax float64
	// Synthetic describes the fallback cube.
	Synthetic SyntheticOptions
}

// DefaultSource returns the options used by the viewers.
func DefaultSource() SourceOptions {
	return SourceOptions{
		Key:       DefaultKey,
		ShiftMin:  400,
		ShiftMax:  1800,
		Synthetic: DefaultSynthetic(),
	}
}

func (o SourceOptions) key() string {
	if o.Key == "" {
		return DefaultKey
	}
	return o.Key
}

// Decode reads a MAT-file from r and returns the cube stored under the
// configured key with its shift axis. It never falls back to synthetic data.
func Decode(r io.Reader, opts SourceOptions) (*Cube, []float64, error) {
	f, err := matfile.Read(r)
	if err != nil {
		return nil, nil, err
	}
	return fromMAT(f, opts)
}

// DecodeFile is Decode for a path.
func DecodeFile(path string, opts SourceOptions) (*Cube, []float64, error) {
	f, err := matfile.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return fromMAT(f, opts)
}

func fromMAT(f *matfile.File, opts SourceOptions) (*Cube, []float64, error) {
	v, ok := f.Variable(opts.key())
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q (file has %v)", ErrMissingKey, opts.key(), f.Names)
	}
	c, err := FromColumnMajor(v.Dims, v.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("variable %q: %w", v.Name, err)
	}
	return c, ShiftAxis(opts.ShiftMin, opts.ShiftMax, c.depth), nil
}

// Load obtains a dataset from r. A nil reader, a missing key or any decode
// failure yields the synthetic cube instead; the returned Status says which
// path was taken. Load only fails if the synthetic options are invalid.
func Load(r io.Reader, opts SourceOptions) (Dataset, error) {
	if r == nil {
		return synthetic(opts, Status{Level: LevelInfo, Message: "No file uploaded. Using simulated data."})
	}

	c, shifts, err := Decode(r, opts)
	return loaded(c, shifts, err, opts)
}

// LoadFile is Load for a path. An empty path means no file.
func LoadFile(path string, opts SourceOptions) (Dataset, error) {
	if path == "" {
		return Load(nil, opts)
	}
	c, shifts, err := DecodeFile(path, opts)
	return loaded(c, shifts, err, opts)
}

func loaded(c *Cube, shifts []float64, err error, opts SourceOptions) (Dataset, error) {
	switch {
	case errors.Is(err, ErrMissingKey):
		slog.Warn("cube variable missing, using simulated data", "key", opts.key(), "err", err)
		return synthetic(opts, Status{
			Level:   LevelError,
			Message: fmt.Sprintf("The uploaded .mat file doesn't contain a '%s' key.", opts.key()),
		})
	case err != nil:
		slog.Warn("cube load failed, using simulated data", "err", err)
		return synthetic(opts, Status{Level: LevelError, Message: fmt.Sprintf("Error loading file: %v", err)})
	}

	rows, cols, depth := c.Dims()
	lo, hi := c.Range()
	slog.Info("cube loaded", "rows", rows, "cols", cols, "shifts", depth, "min", lo, "max", hi)
	return Dataset{
		Cube:   c,
		Shifts: shifts,
		Status: Status{Level: LevelSuccess, Message: "File loaded successfully!"},
	}, nil
}

func synthetic(opts SourceOptions, st Status) (Dataset, error) {
	c, shifts, err := Synthesize(opts.Synthetic)
	if err != nil {
		return Dataset{}, fmt.Errorf("simulated data: %w", err)
	}
	rows, cols, depth := c.Dims()
	slog.Info("cube synthesized", "rows", rows, "cols", cols, "shifts", depth, "seed", opts.Synthetic.Seed)
	return Dataset{Cube: c, Shifts: shifts, Synthetic: true, Status: st}, nil
}
