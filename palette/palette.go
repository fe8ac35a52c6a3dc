// Package palette maps symbolic color names to literal CSS colors and
// provides the small amount of color math the renderer needs.
package palette

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette maps a symbolic name to a literal color string.
type Palette map[string]string

// Default returns a fresh copy of the stock palette.
func Default() Palette {
	return Palette{
		"motor":  "rgb(171,71,188)",
		"motor2": "rgb(186,104,200)",
		"sens1":  "rgb(77,182,172)",
		"sens2":  "rgb(3,169,244)",
		"cereb":  "rgb(240,98,146)",
		"basal":  "rgb(245,127,23)",
		"thal":   "rgb(1,87,155)",
		"olf":    "rgb(56,142,60)",
		"arrow":  "rgb(230,235,240)",
	}
}

// Fallback is used whenever a stroke color cannot be parsed.
var Fallback = RGB{230, 235, 240}

// Resolve returns the literal color for a palette key. Strings that are not
// keys pass through unchanged; an empty value resolves to "".
func (p Palette) Resolve(v string) string {
	if v == "" {
		return ""
	}
	if lit, ok := p[v]; ok {
		return lit
	}
	return v
}

// Clone returns an independent copy of p.
func (p Palette) Clone() Palette {
	out := make(Palette, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// RGB is an 8-bit per channel color.
type RGB struct {
	R, G, B uint8
}

var rgbPattern = regexp.MustCompile(`(?i)^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)`)

var named = map[string]RGB{
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"orange":  {255, 165, 0},
	"purple":  {128, 0, 128},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},
}

// Parse reads rgb()/rgba() notation, #hex and a handful of CSS names.
func Parse(s string) (RGB, bool) {
	s = strings.TrimSpace(s)
	if m := rgbPattern.FindStringSubmatch(s); m != nil {
		return RGB{channel(m[1]), channel(m[2]), channel(m[3])}, true
	}
	if strings.HasPrefix(s, "#") {
		hex := s
		if len(hex) == 4 {
			hex = "#" + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2) + strings.Repeat(hex[3:4], 2)
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return RGB{}, false
		}
		r, g, b := c.RGB255()
		return RGB{r, g, b}, true
	}
	if c, ok := named[strings.ToLower(s)]; ok {
		return c, true
	}
	return RGB{}, false
}

// MustParse parses s, falling back to Fallback when s is not understood.
func MustParse(s string) RGB {
	if c, ok := Parse(s); ok {
		return c
	}
	return Fallback
}

func channel(s string) uint8 {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return uint8(min(255, n))
}

// Brighten adds delta to every channel, clamping at 255.
func (c RGB) Brighten(delta int) RGB {
	add := func(v uint8) uint8 {
		return uint8(max(0, min(255, int(v)+delta)))
	}
	return RGB{add(c.R), add(c.G), add(c.B)}
}

// CSS renders c in rgb() notation.
func (c RGB) CSS() string {
	return "rgb(" + strconv.Itoa(int(c.R)) + "," + strconv.Itoa(int(c.G)) + "," + strconv.Itoa(int(c.B)) + ")"
}

// Colorful converts c for blending and hex output.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Hex renders c as #rrggbb.
func (c RGB) Hex() string {
	return c.Colorful().Hex()
}

// Blend mixes c toward other by t in [0,1] in RGB space.
func (c RGB) Blend(other RGB, t float64) RGB {
	m := c.Colorful().BlendRgb(other.Colorful(), math.Max(0, math.Min(1, t))).Clamped()
	r, g, b := m.RGB255()
	return RGB{r, g, b}
}
