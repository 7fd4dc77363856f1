package lut

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

var (
	// ErrDescriptor reports a LUT Descriptor that is missing or not three valued.
	ErrDescriptor = errors.New("invalid LUT descriptor")
	// ErrTableData reports LUT Data whose size does not match the descriptor.
	ErrTableData = errors.New("LUT data does not match descriptor")
	// ErrTableBits reports an unsupported bits per entry value.
	ErrTableBits = errors.New("unsupported LUT entry bit depth")
)

// Descriptor is the decoded LUT Descriptor (0028,3002).
type Descriptor struct {
	// Length is the number of entries; a stored 0 means 65536.
	Length int
	// First is the first stored value mapped, read as a signed 16 bit value.
	First int
	Bits  int
}

// ParseDescriptor decodes the three values of a LUT Descriptor.
func ParseDescriptor(desc []int) (Descriptor, error) {
	if len(desc) != 3 {
		return Descriptor{}, fmt.Errorf("%w: %d values", ErrDescriptor, len(desc))
	}
	d := Descriptor{
		Length: desc[0] & 0xFFFF,
		First:  int(int16(desc[1])),
		Bits:   desc[2],
	}
	if d.Length == 0 {
		d.Length = 0x10000
	}
	if d.Bits < 1 || d.Bits > 16 {
		return Descriptor{}, fmt.Errorf("%w: %d", ErrTableBits, d.Bits)
	}
	return d, nil
}

// FromTable builds a table from a descriptor and its LUT Data payload.
//
// A payload of two bytes per entry holds 16 bit words in the given byte order.
// When such a payload declares 8 bits or less per entry, the low byte of each
// word carries the value and the padding byte is dropped. A payload of one
// byte per entry is used as is.
func FromTable(inBits StoredValue, desc Descriptor, data []byte, bigEndian bool) (LUT, error) {
	if len(data) == desc.Length<<1 {
		if desc.Bits > 8 {
			var order binary.ByteOrder = binary.LittleEndian
			if bigEndian {
				order = binary.BigEndian
			}
			maxOut := maxValue(desc.Bits)
			ss := make([]uint16, desc.Length)
			for i := range ss {
				ss[i] = uint16(min(int(order.Uint16(data[i<<1:])), maxOut))
			}
			return NewShortLUT(inBits, desc.Bits, desc.First, ss), nil
		}
		hilo := 0
		if bigEndian {
			hilo = 1
		}
		data = halfLength(data, hilo)
	}
	if len(data) != desc.Length {
		return nil, fmt.Errorf("%w: %d bytes for %d entries", ErrTableData, len(data), desc.Length)
	}
	if desc.Bits > 8 {
		return nil, fmt.Errorf("%w: %d bits in byte table", ErrTableBits, desc.Bits)
	}
	maxOut := maxValue(desc.Bits)
	bs := make([]uint8, len(data))
	for i, b := range data {
		bs[i] = uint8(min(int(b), maxOut))
	}
	return NewByteLUT(inBits, desc.Bits, desc.First, bs), nil
}

// halfLength keeps every other byte starting at hilo.
func halfLength(data []byte, hilo int) []byte {
	bs := make([]byte, len(data)>>1)
	for i := range bs {
		bs[i] = data[(i<<1)|hilo]
	}
	return bs
}

// ReadTable builds a table from a LUT item (Modality, VOI or Presentation LUT
// Sequence item). A nil item yields (nil, nil).
func ReadTable(inBits StoredValue, item Attributes) (LUT, error) {
	if item == nil {
		return nil, nil
	}
	desc, err := readDescriptor(item)
	if err != nil {
		return nil, err
	}
	data, ok := item.Bytes(tag.LUTData)
	if !ok {
		return nil, fmt.Errorf("%w: missing LUT data", ErrTableData)
	}
	return FromTable(inBits, desc, data, item.BigEndian())
}

func readDescriptor(item Attributes) (Descriptor, error) {
	desc, ok := item.Ints(tag.LUTDescriptor)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: missing", ErrDescriptor)
	}
	return ParseDescriptor(desc)
}
