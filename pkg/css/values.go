package css

import (
	"strconv"
	"strings"
)

// FormatPx formats v as a CSS pixel length using the shortest decimal
// representation. Negative zero prints as "0px".
func FormatPx(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// Translate3D returns the transform used to shift a box vertically.
func Translate3D(y float64) string {
	return "translate3d(0, " + FormatPx(y) + ", 0)"
}

// ParseTranslateY extracts the y component of translate3d(x, y, z),
// translate(x, y) or translateY(y).
func ParseTranslateY(transform string) (float64, bool) {
	transform = strings.TrimSpace(transform)
	open := strings.IndexByte(transform, '(')
	end := strings.LastIndexByte(transform, ')')
	if open < 0 || end < open {
		return 0, false
	}
	fn := strings.TrimSpace(transform[:open])
	args := strings.Split(transform[open+1:end], ",")
	switch fn {
	case "translate3d", "translate":
		if len(args) < 2 {
			return 0, false
		}
		return ParseLength(args[1])
	case "translateY":
		return ParseLength(args[0])
	}
	return 0, false
}

type Color struct {
	R, G, B uint8
	A       float64
}

var namedColors = map[string]Color{
	"red":        {255, 0, 0, 1},
	"green":      {0, 128, 0, 1},
	"blue":       {0, 0, 255, 1},
	"yellow":     {255, 255, 0, 1},
	"cyan":       {0, 255, 255, 1},
	"magenta":    {255, 0, 255, 1},
	"white":      {255, 255, 255, 1},
	"black":      {0, 0, 0, 1},
	"gray":       {128, 128, 128, 1},
	"lightgray":  {211, 211, 211, 1},
	"orange":     {255, 165, 0, 1},
	"purple":     {128, 0, 128, 1},
	"pink":       {255, 192, 203, 1},
	"brown":      {165, 42, 42, 1},
	"lime":       {0, 255, 0, 1},
	"navy":       {0, 0, 128, 1},
	"teal":       {0, 128, 128, 1},
	"silver":     {192, 192, 192, 1},
	"steelblue":  {70, 130, 180, 1},
	"whitesmoke": {245, 245, 245, 1},
}

// ParseColor understands named colours, #rgb, #rrggbb, rgb() and rgba().
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "transparent" {
		return Color{}, true
	}
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	for _, fn := range []string{"rgba(", "rgb("} {
		if strings.HasPrefix(s, fn) && strings.HasSuffix(s, ")") {
			return parseRGBColor(strings.Split(s[len(fn):len(s)-1], ","))
		}
	}
	return Color{}, false
}

func parseHexColor(hex string) (Color, bool) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, true
}

func parseRGBColor(parts []string) (Color, bool) {
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return Color{}, false
		}
		ch[i] = uint8(n)
	}
	c := Color{R: ch[0], G: ch[1], B: ch[2], A: 1}
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return Color{}, false
		}
		c.A = a
	}
	return c, true
}
