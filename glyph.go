package glyphmatrix

import (
	"math"
	"sort"
	"unicode"
)

// Blank is drawn for empty ramps and for cells without image data.
const Blank = ' '

// GlyphRamp orders glyphs from darkest (index 0) to brightest.
type GlyphRamp []rune

func (r GlyphRamp) String() string {
	return string(r)
}

var (
	// DefaultRamp mixes punctuation, half-width katakana and digits.
	DefaultRamp = GlyphRamp(" :・.=*+-<>¦｜ﾘﾊﾐﾋｰｳｼﾅﾓﾆｻﾜﾂｵﾘｱﾎﾃﾏｹﾒｴｶｷﾑﾕﾗｾﾈｽﾀﾇﾍZç0123456789$")
	ASCIIRamp   = GlyphRamp(" .:-=+*#%@")
)

var rampPresets = map[string]func() GlyphRamp{
	"default": func() GlyphRamp { return DefaultRamp },
	"ascii":   func() GlyphRamp { return ASCIIRamp },
	"braille": BrailleRamp,
}

// RampPresets lists the names accepted by ResolveRamp, sorted.
func RampPresets() []string {
	names := make([]string, 0, len(rampPresets))
	for name := range rampPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveRamp returns the preset called s, or s itself read as a ramp.
func ResolveRamp(s string) GlyphRamp {
	if preset, ok := rampPresets[s]; ok {
		return preset()
	}
	return GlyphRamp(s)
}

/*
SelectGlyph maps a luminance in [0,1] onto ramp. The luminance is passed
through a square-root curve first, which spreads dark values over more of the
ramp than a linear mapping would. An empty ramp yields Blank.
*/
func SelectGlyph(luminance float64, ramp GlyphRamp) rune {
	if len(ramp) == 0 {
		return Blank
	}
	if !(luminance > 0) {
		luminance = 0
	} else if luminance > 1 {
		luminance = 1
	}
	adjusted := math.Pow(luminance, 0.5)
	idx := int(math.Floor(adjusted * float64(len(ramp))))
	if idx < 0 {
		idx = 0
	}
	if idx > len(ramp)-1 {
		idx = len(ramp) - 1
	}
	if ramp[idx] == 0 {
		return Blank
	}
	return ramp[idx]
}

// IsBlank reports whether drawing r would leave the cell empty.
func IsBlank(r rune) bool {
	return r == 0 || unicode.IsSpace(r)
}
