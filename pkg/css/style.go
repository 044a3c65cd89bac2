package css

import (
	"strconv"
	"strings"
)

// Style is a computed property map. Shorthands are already expanded.
type Style struct {
	Properties map[string]string
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

func (s *Style) Get(property string) (string, bool) {
	val, ok := s.Properties[property]
	return val, ok
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

func (s *Style) Delete(property string) {
	delete(s.Properties, property)
}

func (s *Style) GetLength(property string) (float64, bool) {
	val, ok := s.Get(property)
	if !ok {
		return 0, false
	}
	return ParseLength(val)
}

// ParseLength parses a length value (e.g., "100px" or "100")
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// BoxEdge represents the four sides of a box (top, right, bottom, left)
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

func (s *Style) GetMargin() BoxEdge {
	return s.edges("margin")
}

func (s *Style) GetPadding() BoxEdge {
	return s.edges("padding")
}

func (s *Style) GetBorderWidth() BoxEdge {
	return BoxEdge{
		Top:    s.getLengthOrZero("border-top-width"),
		Right:  s.getLengthOrZero("border-right-width"),
		Bottom: s.getLengthOrZero("border-bottom-width"),
		Left:   s.getLengthOrZero("border-left-width"),
	}
}

func (s *Style) edges(prefix string) BoxEdge {
	return BoxEdge{
		Top:    s.getLengthOrZero(prefix + "-top"),
		Right:  s.getLengthOrZero(prefix + "-right"),
		Bottom: s.getLengthOrZero(prefix + "-bottom"),
		Left:   s.getLengthOrZero(prefix + "-left"),
	}
}

func (s *Style) getLengthOrZero(property string) float64 {
	val, ok := s.GetLength(property)
	if !ok {
		return 0
	}
	return val
}

type PositionType string

const (
	PositionStatic   PositionType = "static"
	PositionRelative PositionType = "relative"
	PositionAbsolute PositionType = "absolute"
	PositionFixed    PositionType = "fixed"
	PositionSticky   PositionType = "sticky"
)

// GetPosition returns the position type (default: static). Any keyword that
// survived Compute other than the built-in ones is a native sticky spelling.
func (s *Style) GetPosition() PositionType {
	pos, ok := s.Get("position")
	if !ok {
		return PositionStatic
	}
	switch PositionType(pos) {
	case PositionStatic, PositionRelative, PositionAbsolute, PositionFixed:
		return PositionType(pos)
	}
	return PositionSticky
}

// GetTop returns the top offset of a positioned box.
func (s *Style) GetTop() (float64, bool) {
	return s.GetLength("top")
}

type DisplayType string

const (
	DisplayBlock DisplayType = "block"
	DisplayNone  DisplayType = "none"
)

func (s *Style) GetDisplay() DisplayType {
	if d, ok := s.Get("display"); ok && d == "none" {
		return DisplayNone
	}
	return DisplayBlock
}

// IsScrollable reports whether overflow-y (or overflow) makes the box a
// scroll container.
func (s *Style) IsScrollable() bool {
	for _, prop := range []string{"overflow-y", "overflow"} {
		if v, ok := s.Get(prop); ok {
			return v == "auto" || v == "scroll"
		}
	}
	return false
}

// TranslateY returns the vertical component of a translate transform.
func (s *Style) TranslateY() float64 {
	v, ok := s.Get("transform")
	if !ok {
		return 0
	}
	y, _ := ParseTranslateY(v)
	return y
}

// expandShorthand expands shorthand CSS properties into individual properties
func expandShorthand(style *Style, property, value string) {
	switch property {
	case "margin", "padding":
		expandBoxProperty(style, property, value)
	case "border":
		expandBorderProperty(style, value)
	default:
		style.Set(property, value)
	}
}

// expandBoxProperty expands margin/padding shorthand with the usual
// one to four value forms.
func expandBoxProperty(style *Style, prefix, value string) {
	parts := strings.Fields(value)
	var t, r, b, l string
	switch len(parts) {
	case 1:
		t, r, b, l = parts[0], parts[0], parts[0], parts[0]
	case 2:
		t, r, b, l = parts[0], parts[1], parts[0], parts[1]
	case 3:
		t, r, b, l = parts[0], parts[1], parts[2], parts[1]
	case 4:
		t, r, b, l = parts[0], parts[1], parts[2], parts[3]
	default:
		return
	}
	style.Set(prefix+"-top", t)
	style.Set(prefix+"-right", r)
	style.Set(prefix+"-bottom", b)
	style.Set(prefix+"-left", l)
}

// expandBorderProperty expands "1px solid black" style shorthands.
func expandBorderProperty(style *Style, value string) {
	for _, part := range strings.Fields(value) {
		switch {
		case strings.HasSuffix(part, "px"):
			for _, side := range []string{"top", "right", "bottom", "left"} {
				style.Set("border-"+side+"-width", part)
			}
		case part == "solid" || part == "dotted" || part == "dashed" || part == "double":
			style.Set("border-style", part)
		default:
			style.Set("border-color", part)
		}
	}
}
