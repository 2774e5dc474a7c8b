package gravit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Pattern is the paint source of a fill, stroke or overlay: a background
// checker, a flat color or a gradient. A nil Pattern paints nothing.
//
// Patterns serialize to a type-tag character followed by a type-specific
// body: 'B' background, 'C' color, 'G' gradient.
type Pattern interface {
	patternTag() byte
}

// BackgroundPattern paints the transparency checkerboard.
type BackgroundPattern struct{}

// SolidPattern paints a flat color.
type SolidPattern struct {
	Color Color
}

// GradientStop is one color stop, Offset in [0, 1].
type GradientStop struct {
	Offset float64
	Color  Color
}

// LinearGradient runs from (X1, Y1) to (X2, Y2), expressed in the painted
// element's bounding-box units (0..1).
type LinearGradient struct {
	X1, Y1, X2, Y2 float64
	Stops          []GradientStop
}

// RadialGradient is centered at (CX, CY) with radius R, in bounding-box units.
type RadialGradient struct {
	CX, CY, R float64
	Stops     []GradientStop
}

func (BackgroundPattern) patternTag() byte { return 'B' }
func (SolidPattern) patternTag() byte      { return 'C' }
func (LinearGradient) patternTag() byte    { return 'G' }
func (RadialGradient) patternTag() byte    { return 'G' }

// MimePattern is the clipboard type carrying a formatted pattern.
const MimePattern = "application/infinity+pattern"

// FormatPattern returns the tag+body string of p. A nil pattern formats as "".
func FormatPattern(p Pattern) string {
	switch p := p.(type) {
	case nil:
		return ""
	case BackgroundPattern:
		return "B"
	case SolidPattern:
		return "C" + FormatColor(p.Color)
	case LinearGradient:
		return "GL" + formatFloats(p.X1, p.Y1, p.X2, p.Y2) + "|" + formatStops(p.Stops)
	case RadialGradient:
		return "GR" + formatFloats(p.CX, p.CY, p.R) + "|" + formatStops(p.Stops)
	}
	panic(fmt.Sprintf("gravit: unknown pattern type %T", p))
}

// ParsePattern parses the output of FormatPattern. The empty string yields a
// nil pattern. Unknown tags return ErrUnknownPattern.
func ParsePattern(s string) (Pattern, error) {
	if s == "" {
		return nil, nil
	}
	body := s[1:]
	switch s[0] {
	case 'B':
		if body != "" {
			return nil, fmt.Errorf("%w: background takes no body: %q", ErrInvalidValue, s)
		}
		return BackgroundPattern{}, nil
	case 'C':
		c, err := ParseColor(body)
		if err != nil {
			return nil, err
		}
		return SolidPattern{Color: c}, nil
	case 'G':
		return parseGradient(body)
	}
	return nil, fmt.Errorf("%w: tag %q", ErrUnknownPattern, s[0])
}

func parseGradient(body string) (Pattern, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: empty gradient", ErrInvalidValue)
	}
	geom, stopsStr, ok := strings.Cut(body[1:], "|")
	if !ok {
		return nil, fmt.Errorf("%w: gradient %q has no stops", ErrInvalidValue, body)
	}
	stops, err := parseStops(stopsStr)
	if err != nil {
		return nil, err
	}
	switch body[0] {
	case 'L':
		v, err := parseFloats(geom, 4)
		if err != nil {
			return nil, err
		}
		return LinearGradient{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3], Stops: stops}, nil
	case 'R':
		v, err := parseFloats(geom, 3)
		if err != nil {
			return nil, err
		}
		return RadialGradient{CX: v[0], CY: v[1], R: v[2], Stops: stops}, nil
	}
	return nil, fmt.Errorf("%w: gradient type %q", ErrUnknownPattern, body[0])
}

// FormatColor returns "#rrggbb", or "#rrggbbaa" when the color is not opaque.
func FormatColor(c Color) string {
	hex := colorful.Color{R: clampUnit(c.R), G: clampUnit(c.G), B: clampUnit(c.B)}.Hex()
	if a := unitToByte(c.A); a != 255 {
		hex += fmt.Sprintf("%02x", a)
	}
	return hex
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	alpha := 1.0
	switch len(s) {
	case 7:
	case 9:
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: color alpha %q", ErrInvalidValue, s)
		}
		alpha = float64(a) / 255
		s = s[:7]
	default:
		return Color{}, fmt.Errorf("%w: color %q", ErrInvalidValue, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: color %q: %v", ErrInvalidValue, s, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func formatFloats(vs ...float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%w: want %d numbers in %q", ErrInvalidValue, n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		out[i] = v
	}
	return out, nil
}

func formatStops(stops []GradientStop) string {
	parts := make([]string, len(stops))
	for i, st := range stops {
		parts[i] = strconv.FormatFloat(st.Offset, 'g', -1, 64) + ":" + FormatColor(st.Color)
	}
	return strings.Join(parts, ";")
}

func parseStops(s string) ([]GradientStop, error) {
	if s == "" {
		return nil, nil
	}
	var stops []GradientStop
	for _, part := range strings.Split(s, ";") {
		off, col, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: gradient stop %q", ErrInvalidValue, part)
		}
		o, err := strconv.ParseFloat(off, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		c, err := ParseColor(col)
		if err != nil {
			return nil, err
		}
		stops = append(stops, GradientStop{Offset: o, Color: c})
	}
	return stops, nil
}
