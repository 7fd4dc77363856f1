package lut

import (
	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

// Attributes is the read-only view of image metadata used by the pipeline.
// Every getter reports false when the attribute is absent or not convertible.
type Attributes interface {
	Float(t tag.Tag) (float64, bool)
	Floats(t tag.Tag) ([]float64, bool)
	Int(t tag.Tag) (int, bool)
	Ints(t tag.Tag) ([]int, bool)
	String(t tag.Tag) (string, bool)
	// Bytes returns binary values in the byte order reported by BigEndian.
	Bytes(t tag.Tag) ([]byte, bool)
	// Nested returns item index of the sequence t.
	Nested(t tag.Tag, index int) (Attributes, bool)
	BigEndian() bool
}

func floatOr(attrs Attributes, t tag.Tag, def float64) float64 {
	if v, ok := attrs.Float(t); ok {
		return v
	}
	return def
}

func intOr(attrs Attributes, t tag.Tag, def int) int {
	if v, ok := attrs.Int(t); ok {
		return v
	}
	return def
}
