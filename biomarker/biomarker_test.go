package biomarker

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	require.Len(t, d, 3)
	assert.Equal(t, []string{"Nucleic Acids", "Proteins", "Lipids"}, Labels(d))
	assert.Equal(t, 780.0, d[0].Low)
	assert.Equal(t, 1450.0, d[2].High)
	assert.Equal(t, color.NRGBA{135, 206, 235, 255}, d[0].Color)
	assert.True(t, d[1].Contains(1005))
	assert.False(t, d[1].Contains(1011))
	assert.NoError(t, Validate(d))
}

func TestFillOpacity(t *testing.T) {
	r := Region{Color: color.NRGBA{238, 130, 238, 255}}
	assert.Equal(t, color.NRGBA{238, 130, 238, 77}, r.Fill())
}

func TestLabelsDeduplicates(t *testing.T) {
	regions := append(Defaults(), Region{Label: "Proteins", Low: 1650, High: 1660})
	assert.Equal(t, []string{"Nucleic Acids", "Proteins", "Lipids"}, Labels(regions))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate([]Region{{Label: "", Low: 1, High: 2}}))
	assert.Error(t, Validate([]Region{{Label: "x", Low: 2, High: 2}}))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor(" SkyBlue ")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{135, 206, 235, 255}, c)

	c, err = ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 128, 0, 255}, c)

	for name, want := range map[string]color.NRGBA{
		"lightblue":      {173, 216, 230, 255},
		"cornflowerblue": {100, 149, 237, 255},
		"lightcoral":     {240, 128, 128, 255},
		"navy":           {0, 0, 128, 255},
		"magenta":        {255, 0, 255, 255},
		"cyan":           {0, 255, 255, 255},
	} {
		c, err := ParseColor(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, c, name)
	}

	_, err = ParseColor("#ff80")
	assert.Error(t, err)
	_, err = ParseColor("chartreuse-ish")
	assert.Error(t, err)
}

func TestMatching(t *testing.T) {
	regions := append(Defaults(), Region{Label: "Proteins", Low: 1003, High: 1660})
	assert.Equal(t, []string{"Proteins"}, Matching(regions, 1005))
	assert.Equal(t, []string{"Lipids", "Proteins"}, Matching(regions, 1445))
	assert.Empty(t, Matching(Defaults(), 900))
}
