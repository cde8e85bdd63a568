// Package savgol implements the Savitzky-Golay smoothing filter.
//
// Each output sample is the value, at that sample, of the least-squares
// polynomial fitted to the surrounding window. Away from the ends this is a
// fixed convolution. Within half a window of either end the polynomial fitted
// to the first (or last) full window is evaluated instead, so the output has
// the same length as the input and polynomials of degree up to the filter
// order pass through unchanged.
package savgol

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultWindow and DefaultOrder are the settings used for Raman spectra.
	DefaultWindow = 21
	DefaultOrder  = 3
)

// ErrTooShort is returned when the signal is shorter than the window.
var ErrTooShort = errors.New("savgol: signal shorter than window")

// Filter is a Savitzky-Golay filter of fixed window length and order.
type Filter struct {
	window, order int
	// rows[i] maps a window of samples to the fitted value at position i.
	rows [][]float64
}

// New returns a filter with the given odd window length and polynomial
// order, which must be smaller than the window.
func New(window, order int) (*Filter, error) {
	switch {
	case window <= 0 || window%2 == 0:
		return nil, fmt.Errorf("savgol: window length %d must be a positive odd number", window)
	case order < 0:
		return nil, fmt.Errorf("savgol: negative polynomial order %d", order)
	case order >= window:
		return nil, fmt.Errorf("savgol: polynomial order %d must be less than window length %d", order, window)
	}

	half := window / 2

	// Vandermonde matrix on positions centered at zero.
	v := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		t := float64(i - half)
		p := 1.0
		for k := 0; k <= order; k++ {
			v.Set(i, k, p)
			p *= t
		}
	}

	// pinv = (VᵀV)⁻¹Vᵀ via the least-squares solution of V·X = I.
	var qr mat.QR
	qr.Factorize(v)
	eye := mat.NewDiagDense(window, nil)
	for i := 0; i < window; i++ {
		eye.SetDiag(i, 1)
	}
	pinv := mat.NewDense(order+1, window, nil)
	if err := qr.SolveTo(pinv, false, eye); err != nil {
		return nil, fmt.Errorf("savgol: least squares: %w", err)
	}

	// Hat matrix: fitted values at every window position.
	var hat mat.Dense
	hat.Mul(v, pinv)

	f := &Filter{window: window, order: order, rows: make([][]float64, window)}
	for i := range f.rows {
		f.rows[i] = mat.Row(nil, i, &hat)
	}
	return f, nil
}

// Window returns the window length.
func (f *Filter) Window() int { return f.window }

// Order returns the polynomial order.
func (f *Filter) Order() int { return f.order }

// Coefficients returns the convolution weights applied away from the ends.
func (f *Filter) Coefficients() []float64 {
	out := make([]float64, f.window)
	copy(out, f.rows[f.window/2])
	return out
}

// Apply smooths x and returns a new slice of the same length.
func (f *Filter) Apply(x []float64) ([]float64, error) {
	n := len(x)
	if n < f.window {
		return nil, fmt.Errorf("%w: %d samples, window length %d", ErrTooShort, n, f.window)
	}
	half := f.window / 2
	out := make([]float64, n)

	center := f.rows[half]
	for i := half; i < n-half; i++ {
		out[i] = floats.Dot(center, x[i-half:i+half+1])
	}

	head := x[:f.window]
	tail := x[n-f.window:]
	for i := 0; i < half; i++ {
		out[i] = floats.Dot(f.rows[i], head)
		out[n-half+i] = floats.Dot(f.rows[half+1+i], tail)
	}
	return out, nil
}

// Smooth applies a filter with the given window length and order to x.
func Smooth(x []float64, window, order int) ([]float64, error) {
	f, err := New(window, order)
	if err != nil {
		return nil, err
	}
	return f.Apply(x)
}
