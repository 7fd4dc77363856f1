package lut

import (
	"errors"
	"fmt"
	"math/bits"
)

// LUT maps stored values of its input domain to output values of OutBits depth.
//
// Stored values below Offset clamp to the first entry and values past the end
// of the table clamp to the last one. A LUT is never modified after it is
// built: AdjustOutBits, Combine and Inverse return new tables.
type LUT interface {
	// Apply returns the output value for a stored value.
	Apply(v int) int
	// AdjustOutBits rescales every entry into the range of outBits.
	AdjustOutBits(outBits int) LUT
	// Combine feeds the output of this table into next.
	Combine(next LUT) LUT
	// Inverse reflects every entry within the output range.
	Inverse() LUT
	Length() int
	InBits() StoredValue
	OutBits() int
	Offset() int
	// Entries returns a copy of the table entries.
	Entries() []int
}

// Sample is the storage width of table entries.
type Sample interface {
	~uint8 | ~uint16
}

// Table is a LUT whose entries are stored as T.
type Table[T Sample] struct {
	inBits  StoredValue
	outBits int
	offset  int
	data    []T
}

// ByteLUT holds tables of at most 8 output bits.
type ByteLUT = Table[uint8]

// ShortLUT holds tables of 9 to 16 output bits.
type ShortLUT = Table[uint16]

// NewByteLUT wraps data as a table starting at stored value offset.
func NewByteLUT(inBits StoredValue, outBits, offset int, data []uint8) *ByteLUT {
	return &ByteLUT{inBits: inBits, outBits: outBits, offset: offset, data: data}
}

// NewShortLUT wraps data as a table starting at stored value offset.
func NewShortLUT(inBits StoredValue, outBits, offset int, data []uint16) *ShortLUT {
	return &ShortLUT{inBits: inBits, outBits: outBits, offset: offset, data: data}
}

// ErrRampSize reports a ramp of fewer than two entries.
var ErrRampSize = errors.New("ramp needs at least two entries")

// NewRamp returns a linear table of size entries spanning 0..2^outBits-1,
// starting at stored value offset.
func NewRamp(inBits StoredValue, outBits, offset, size int) (LUT, error) {
	if size < 2 {
		return nil, fmt.Errorf("%w: %d", ErrRampSize, size)
	}
	return clippedRamp(inBits, outBits, offset, size, offset, offset+size-1), nil
}

// clippedRamp holds the entries lo..hi of the ramp of size entries starting
// at offset. Stored values outside the ramp take its end values.
func clippedRamp(inBits StoredValue, outBits, offset, size, lo, hi int) LUT {
	maxOut := maxValue(outBits)
	maxIndex := size - 1
	mid := maxIndex / 2
	return build(inBits, outBits, lo, hi-lo+1, func(i int) int {
		j := min(max(lo+i-offset, 0), maxIndex)
		return (j*maxOut + mid) / maxIndex
	})
}

// build allocates the table variant that fits outBits and fills it from entry.
func build(inBits StoredValue, outBits, offset, size int, entry func(i int) int) LUT {
	if outBits > 8 {
		return fill[uint16](inBits, outBits, offset, size, entry)
	}
	return fill[uint8](inBits, outBits, offset, size, entry)
}

func fill[T Sample](inBits StoredValue, outBits, offset, size int, entry func(i int) int) *Table[T] {
	t := &Table[T]{inBits: inBits, outBits: outBits, offset: offset, data: make([]T, size)}
	for i := range t.data {
		t.data[i] = T(entry(i))
	}
	return t
}

func maxValue(n int) int {
	return (1 << n) - 1
}

func (t *Table[T]) index(v int) int {
	return min(max(t.inBits.ValueOf(v)-t.offset, 0), len(t.data)-1)
}

func (t *Table[T]) Apply(v int) int {
	return int(t.data[t.index(v)])
}

func (t *Table[T]) AdjustOutBits(outBits int) LUT {
	if outBits == t.outBits {
		return t
	}
	// newVal = round(oldVal * maxNew / maxOld); maxOld is odd so no value lands on .5
	maxOld := int64(maxValue(t.outBits))
	maxNew := int64(maxValue(outBits))
	return build(t.inBits, outBits, t.offset, len(t.data), func(i int) int {
		old := min(int64(t.data[i]), maxOld)
		return int((old*maxNew + maxOld/2) / maxOld)
	})
}

func (t *Table[T]) Combine(next LUT) LUT {
	return build(t.inBits, next.OutBits(), t.offset, len(t.data), func(i int) int {
		return next.Apply(int(t.data[i]))
	})
}

func (t *Table[T]) Inverse() LUT {
	maxOut := maxValue(t.outBits)
	return fill[T](t.inBits, t.outBits, t.offset, len(t.data), func(i int) int {
		return maxOut - int(t.data[i])
	})
}

func (t *Table[T]) Length() int         { return len(t.data) }
func (t *Table[T]) InBits() StoredValue { return t.inBits }
func (t *Table[T]) OutBits() int        { return t.outBits }
func (t *Table[T]) Offset() int         { return t.offset }

func (t *Table[T]) Entries() []int {
	out := make([]int, len(t.data))
	for i, v := range t.data {
		out[i] = int(v)
	}
	return out
}

func (t *Table[T]) String() string {
	return fmt.Sprintf("lut(in=%v out=%d offset=%d len=%d)", t.inBits, t.outBits, t.offset, len(t.data))
}

// log2 returns the bit length of value minus one, i.e. floor(log2(value)).
func log2(value int) int {
	return bits.Len(uint(value)) - 1
}
