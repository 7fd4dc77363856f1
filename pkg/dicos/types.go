package dicos

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

// Dataset represents a complete DICOM dataset or a single sequence item
type Dataset struct {
	Elements map[Tag]*Element
	// BigEndian is set when the body was read from (or will be written as)
	// Explicit VR Big Endian. Binary values kept as raw bytes follow this order.
	BigEndian bool
}

// Element represents a single DICOM element
type Element struct {
	Tag   Tag
	VR    string      // Value Representation
	Value interface{} // Parsed value
}

// Tag alias to avoid duplication
type Tag = tag.Tag

// PixelData represents pixel data (native or encapsulated)
type PixelData struct {
	IsEncapsulated bool
	Frames         []Frame
	Offsets        []uint32 // Basic Offset Table for encapsulated data
}

// Frame represents a single frame of pixel data
type Frame struct {
	// For native (uncompressed) data
	Data []uint16

	// For encapsulated (compressed) data
	CompressedData []byte
}

// Find returns an element by tag
func (ds *Dataset) Find(t Tag) (*Element, bool) {
	elem, ok := ds.Elements[t]
	return elem, ok
}

// ByteOrder returns the byte order of binary values held as raw bytes
func (ds *Dataset) ByteOrder() binary.ByteOrder {
	if ds.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// GetString returns a string value from an element
func (elem *Element) GetString() (string, bool) {
	if s, ok := elem.Value.(string); ok {
		return s, true
	}
	return "", false
}

// GetInt returns the first int value from an element
func (elem *Element) GetInt() (int, bool) {
	switch v := elem.Value.(type) {
	case uint16:
		return int(v), true
	case int16:
		return int(v), true
	case uint32:
		return int(v), true
	case int32:
		return int(v), true
	case int:
		return v, true
	case []byte:
		if len(v) == 2 {
			return int(binary.LittleEndian.Uint16(v)), true
		}
		if len(v) == 4 {
			return int(binary.LittleEndian.Uint32(v)), true
		}
	}
	if vs, ok := elem.GetInts(); ok && len(vs) > 0 {
		return vs[0], true
	}
	return 0, false
}

// GetInts returns a slice of ints from an element. IS strings are split on backslashes.
func (elem *Element) GetInts() ([]int, bool) {
	switch v := elem.Value.(type) {
	case []uint16:
		res := make([]int, len(v))
		for i, val := range v {
			res[i] = int(val)
		}
		return res, true
	case []int16:
		res := make([]int, len(v))
		for i, val := range v {
			res[i] = int(val)
		}
		return res, true
	case []uint32:
		res := make([]int, len(v))
		for i, val := range v {
			res[i] = int(val)
		}
		return res, true
	case []int32:
		res := make([]int, len(v))
		for i, val := range v {
			res[i] = int(val)
		}
		return res, true
	case []int:
		return v, true
	case uint16, int16, uint32, int32, int:
		i, _ := elem.GetInt()
		return []int{i}, true
	case string:
		parts := splitMulti(v)
		if len(parts) == 0 {
			return nil, false
		}
		res := make([]int, len(parts))
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return nil, false
			}
			res[i] = n
		}
		return res, true
	case []byte:
		if len(v)%2 == 0 {
			res := make([]int, len(v)/2)
			for i := 0; i < len(res); i++ {
				res[i] = int(binary.LittleEndian.Uint16(v[i*2:]))
			}
			return res, true
		}
	}
	return nil, false
}

// GetFloats returns a slice of float64s from an element. DS strings are split on backslashes.
func (elem *Element) GetFloats() ([]float64, bool) {
	switch v := elem.Value.(type) {
	case []float32:
		res := make([]float64, len(v))
		for i, val := range v {
			res[i] = float64(val)
		}
		return res, true
	case []float64:
		return v, true
	case float32:
		return []float64{float64(v)}, true
	case float64:
		return []float64{v}, true
	case string:
		parts := splitMulti(v)
		if len(parts) == 0 {
			return nil, false
		}
		res := make([]float64, len(parts))
		for i, p := range parts {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, false
			}
			res[i] = f
		}
		return res, true
	}
	if vs, ok := elem.GetInts(); ok {
		res := make([]float64, len(vs))
		for i, val := range vs {
			res[i] = float64(val)
		}
		return res, true
	}
	return nil, false
}

// GetPixelData returns pixel data from an element
func (elem *Element) GetPixelData() (*PixelData, bool) {
	if pd, ok := elem.Value.(*PixelData); ok {
		return pd, true
	}
	return nil, false
}

// GetItems returns the items of a sequence element
func (elem *Element) GetItems() ([]*Dataset, bool) {
	items, ok := elem.Value.([]*Dataset)
	return items, ok
}

// splitMulti splits a multi-valued string on backslashes, dropping padding
func splitMulti(s string) []string {
	s = strings.TrimRight(s, "\x00 ")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "\\")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// formatDS renders a decimal string value
func formatDS(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
