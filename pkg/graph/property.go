package graph

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Kind is the declared type of a property field.
type Kind int

const (
	KindNumber Kind = iota
	KindBool
	KindColor
	KindVec3
	KindChoice
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindColor:
		return "color"
	case KindVec3:
		return "vec3"
	case KindChoice:
		return "choice"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Value is a typed property value.
type Value interface {
	Kind() Kind
	String() string
}

// Number is a scalar property value.
type Number float64

// Bool is a boolean property value.
type Bool bool

// Color is an RGB property value.
type Color colorful.Color

// Vec3 is a 3-component property value.
type Vec3 v3.Vec

// Choice is one of a field's enumerated options.
type Choice string

// Text is a free-form string value.
type Text string

func (Number) Kind() Kind { return KindNumber }
func (Bool) Kind() Kind   { return KindBool }
func (Color) Kind() Kind  { return KindColor }
func (Vec3) Kind() Kind   { return KindVec3 }
func (Choice) Kind() Kind { return KindChoice }
func (Text) Kind() Kind   { return KindText }

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }
func (c Color) String() string  { return colorful.Color(c).Hex() }
func (v Vec3) String() string   { return fmt.Sprintf("%g,%g,%g", v.X, v.Y, v.Z) }
func (c Choice) String() string { return string(c) }
func (t Text) String() string   { return string(t) }

// Hex parses a "#rrggbb" or "#rgb" string into a Color.
func Hex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(c), nil
}

// MustHex is Hex for literals; it panics on malformed input.
func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Field declares one property of a node type.
type Field struct {
	Name    string
	Label   string
	Kind    Kind
	Default Value
	Min     float64 // numeric bounds, ignored when Min == Max
	Max     float64
	Step    float64
	Options []string // for KindChoice
	// Visible reports whether the field applies given the current values.
	// A nil Visible means always visible.
	Visible func(Properties) bool
}

func (f Field) bounded() bool { return f.Min != f.Max }

// Parse converts the raw widget string for f into a Value.
func (f Field) Parse(raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		return Number(n), nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		return Bool(b), nil
	case KindColor:
		return Hex(raw)
	case KindVec3:
		parts := strings.Split(raw, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%s: expected x,y,z, got %q", f.Name, raw)
		}
		var xyz [3]float64
		for i, p := range parts {
			n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: component %d: %w", f.Name, i, err)
			}
			xyz[i] = n
		}
		return Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
	case KindChoice:
		return Choice(raw), nil
	case KindText:
		return Text(raw), nil
	}
	return nil, fmt.Errorf("%s: unsupported kind %s", f.Name, f.Kind)
}

// normalize checks v against f and clamps numbers into range.
func (f Field) normalize(v Value) (Value, error) {
	if v == nil || v.Kind() != f.Kind {
		return nil, fmt.Errorf("%w: %s wants %s", ErrPropertyType, f.Name, f.Kind)
	}
	switch x := v.(type) {
	case Number:
		if math.IsNaN(float64(x)) {
			return nil, fmt.Errorf("%w: %s is NaN", ErrPropertyType, f.Name)
		}
		if f.bounded() {
			return Number(math.Max(f.Min, math.Min(f.Max, float64(x)))), nil
		}
	case Choice:
		if !slices.ContainsFunc(f.Options, func(o string) bool { return strings.EqualFold(o, string(x)) }) {
			return nil, fmt.Errorf("%w: %s has no option %q", ErrPropertyType, f.Name, string(x))
		}
	}
	return v, nil
}

// Properties is a node's live value map. Values are immutable, so a
// shallow copy is a full snapshot.
type Properties map[string]Value

// Clone returns a snapshot of p.
func (p Properties) Clone() Properties {
	return maps.Clone(p)
}

// Number returns the named number, or 0.
func (p Properties) Number(name string) float64 {
	n, _ := p[name].(Number)
	return float64(n)
}

// Bool returns the named boolean, or false.
func (p Properties) Bool(name string) bool {
	b, _ := p[name].(Bool)
	return bool(b)
}

// Color returns the named colour, or black.
func (p Properties) Color(name string) colorful.Color {
	c, _ := p[name].(Color)
	return colorful.Color(c)
}

// Vec3 returns the named vector, or zero.
func (p Properties) Vec3(name string) v3.Vec {
	v, _ := p[name].(Vec3)
	return v3.Vec(v)
}

// Choice returns the named choice lower-cased, or "".
func (p Properties) Choice(name string) string {
	c, _ := p[name].(Choice)
	return strings.ToLower(string(c))
}

// Text returns the named text, or "".
func (p Properties) Text(name string) string {
	t, _ := p[name].(Text)
	return string(t)
}
