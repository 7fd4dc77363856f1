// Package lut builds the grayscale display pipeline for DICOM/DICOS images.
//
// Stored pixel values pass through up to three table stages before display:
//
//	stored value -> Modality (rescale or LUT) -> VOI (window or LUT) -> Presentation -> display value
//
// A Factory reads the stage parameters from an image's attributes and composes
// them into a single LUT that maps every stored value of the image straight to
// an output value of the requested bit depth:
//
//	f := lut.NewFactory(lut.NewStoredValue(12, false))
//	f.Init(attrs)
//	f.SetVOI(attrs, 0, 0, true)
//	table, err := f.CreateLUT(8)
//	if err != nil {
//		return err
//	}
//	display := table.Apply(raw)
package lut

import (
	"errors"
	"fmt"
)

// ErrStoredValue reports a stored value domain outside 1..16 bits.
var ErrStoredValue = errors.New("stored value bits must be between 1 and 16")

// StoredValue interprets raw samples for one bit depth and signedness.
type StoredValue interface {
	// ValueOf masks (unsigned) or sign extends (signed) raw to the stored bit depth.
	ValueOf(raw int) int
	MinValue() int
	MaxValue() int
	Bits() int
	Signed() bool
}

// NewStoredValue returns the Signed or Unsigned interpretation for bits (1-16).
func NewStoredValue(bits int, signed bool) StoredValue {
	if signed {
		return NewSigned(bits)
	}
	return NewUnsigned(bits)
}

func checkStoredValue(sv StoredValue) error {
	if sv == nil {
		return fmt.Errorf("%w: no stored value domain", ErrStoredValue)
	}
	if sv.Bits() < 1 || sv.Bits() > 16 {
		return fmt.Errorf("%w: %v", ErrStoredValue, sv)
	}
	return nil
}

// Unsigned is the stored value domain 0..2^bits-1.
type Unsigned struct {
	bits int
	mask int
}

// NewUnsigned creates an unsigned domain of the given bit depth.
func NewUnsigned(bits int) Unsigned {
	return Unsigned{bits: bits, mask: (1 << bits) - 1}
}

func (u Unsigned) ValueOf(raw int) int { return raw & u.mask }
func (u Unsigned) MinValue() int       { return 0 }
func (u Unsigned) MaxValue() int       { return u.mask }
func (u Unsigned) Bits() int           { return u.bits }
func (u Unsigned) Signed() bool        { return false }
func (u Unsigned) String() string      { return fmt.Sprintf("unsigned(%d)", u.bits) }

// Signed is the two's complement domain -2^(bits-1)..2^(bits-1)-1.
type Signed struct {
	bits  int
	shift int
}

// NewSigned creates a signed domain of the given bit depth.
func NewSigned(bits int) Signed {
	return Signed{bits: bits, shift: 32 - bits}
}

func (s Signed) ValueOf(raw int) int {
	return int(int32(uint32(raw)<<s.shift) >> s.shift)
}
func (s Signed) MinValue() int  { return -(1 << (s.bits - 1)) }
func (s Signed) MaxValue() int  { return (1 << (s.bits - 1)) - 1 }
func (s Signed) Bits() int      { return s.bits }
func (s Signed) Signed() bool   { return true }
func (s Signed) String() string { return fmt.Sprintf("signed(%d)", s.bits) }
