package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for length and line-height.
// The engine works in points throughout; other units are converted on parse.

// Unit represents the original unit of a length value as written by the author.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitPT               // points (the engine's native unit)
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// To converts this length to target unit. Supported targets: UnitPT, UnitMM.
// Unit-less values are treated as already being in the target unit.
func (l Length) To(target Unit) float64 {
	switch l.Unit {
	case UnitPT:
		if target == UnitMM {
			return l.Value * PtToMm
		}
		return l.Value
	case UnitMM:
		if target == UnitMM {
			return l.Value
		}
		return l.Value * MmToPt
	case UnitCM:
		mm := l.Value * 10
		if target == UnitMM {
			return mm
		}
		return mm * MmToPt
	case UnitIN:
		mm := l.Value * 25.4
		if target == UnitMM {
			return mm
		}
		return mm * MmToPt
	case UnitNone:
		return l.Value
	}
	return l.Value
}

func (l Length) ToPT() float64 { return l.To(UnitPT) }
func (l Length) ToMM() float64 { return l.To(UnitMM) }

// ParseRawLengthStr parses a length string preserving its unit.
// Bare numbers keep UnitNone so callers may apply their own default (pt).
func ParseRawLengthStr(value string) Length {
	v := strings.TrimSpace(value)
	if v == "" {
		return Length{Value: 0, Unit: UnitNone}
	}
	lower := strings.ToLower(v)
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Value: 0, Unit: UnitNone}
	}
	return Length{Value: f, Unit: unit}
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves author intent: either a factor (e.g., 1.4x) or an
// absolute length (e.g., 18pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// Resolve computes the absolute line height in pt for the given font size (pt).
func (s LineHeightSpec) Resolve(fontSizePT float64) float64 {
	switch s.Kind {
	case LineHeightFactor:
		if s.Factor > 0 {
			return fontSizePT * s.Factor
		}
		return fontSizePT * defaultLineHeight
	case LineHeightAbsolute:
		return s.Len.ToPT()
	default:
		return fontSizePT * defaultLineHeight
	}
}

// ParseLineHeight parses "1.4", "1.4x" or an absolute length like "18pt".
func ParseLineHeight(value string) LineHeightSpec {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: defaultLineHeight}
	}
	if strings.HasSuffix(v, "x") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil && f > 0 {
			return LineHeightSpec{Kind: LineHeightFactor, Factor: f}
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: defaultLineHeight}
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}
	}
	l := ParseRawLengthStr(v)
	if l.Unit != UnitNone && l.Value > 0 {
		return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}
	}
	return LineHeightSpec{Kind: LineHeightFactor, Factor: defaultLineHeight}
}
