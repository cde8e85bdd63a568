// Package biomarker defines the Raman shift bands annotated on spectra.
package biomarker

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Opacity of the shaded bands.
const Opacity = 0.3

// Region is a named wavenumber interval shaded on spectrum plots.
type Region struct {
	Label string
	Low   float64 // cm⁻¹
	High  float64 // cm⁻¹
	Color color.NRGBA
}

// Contains reports whether shift lies inside the region.
func (r Region) Contains(shift float64) bool {
	return shift >= r.Low && shift <= r.High
}

// Fill returns the region color at band opacity.
func (r Region) Fill() color.NRGBA {
	c := r.Color
	c.A = uint8(float64(c.A)*Opacity + 0.5)
	return c
}

// Defaults returns the nucleic acid, protein and lipid bands.
func Defaults() []Region {
	return []Region{
		{Label: "Nucleic Acids", Low: 780, High: 790, Color: mustColor("skyblue")},
		{Label: "Proteins", Low: 1000, High: 1010, Color: mustColor("violet")},
		{Label: "Lipids", Low: 1440, High: 1450, Color: mustColor("lightgreen")},
	}
}

// Labels returns the distinct region labels in first-seen order.
func Labels(regions []Region) []string {
	seen := make(map[string]bool, len(regions))
	var out []string
	for _, r := range regions {
		if seen[r.Label] {
			continue
		}
		seen[r.Label] = true
		out = append(out, r.Label)
	}
	return out
}

// Matching returns the distinct labels of the regions containing shift.
func Matching(regions []Region, shift float64) []string {
	var in []Region
	for _, r := range regions {
		if r.Contains(shift) {
			in = append(in, r)
		}
	}
	return Labels(in)
}

// Validate checks that every region has a label and a non-empty range.
func Validate(regions []Region) error {
	for i, r := range regions {
		if r.Label == "" {
			return fmt.Errorf("biomarker %d: empty label", i)
		}
		if !(r.Low < r.High) {
			return fmt.Errorf("biomarker %q: low bound %g is not below high bound %g", r.Label, r.Low, r.High)
		}
	}
	return nil
}

// ParseColor accepts an SVG 1.1 color name or #rrggbb.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
		}
	}
	return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
}

func mustColor(name string) color.NRGBA {
	c, err := ParseColor(name)
	if err != nil {
		panic(err)
	}
	return c
}
