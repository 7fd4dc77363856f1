package dicos

import (
	"encoding/binary"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
	"github.com/jpfielding/dicoslut/pkg/lut"
)

// attributes exposes a Dataset to the lut package. Sequence items inherit
// the byte order of the dataset they were read from.
type attributes struct {
	ds    *Dataset
	order binary.ByteOrder
}

// Attributes adapts a dataset to lut.Attributes
func Attributes(ds *Dataset) lut.Attributes {
	return &attributes{ds: ds, order: ds.ByteOrder()}
}

func (a *attributes) Float(t tag.Tag) (float64, bool) {
	vs, ok := a.Floats(t)
	if !ok || len(vs) == 0 {
		return 0, false
	}
	return vs[0], true
}

func (a *attributes) Floats(t tag.Tag) ([]float64, bool) {
	elem, ok := a.ds.Find(t)
	if !ok {
		return nil, false
	}
	return elem.GetFloats()
}

func (a *attributes) Int(t tag.Tag) (int, bool) {
	elem, ok := a.ds.Find(t)
	if !ok {
		return 0, false
	}
	return elem.GetInt()
}

func (a *attributes) Ints(t tag.Tag) ([]int, bool) {
	elem, ok := a.ds.Find(t)
	if !ok {
		return nil, false
	}
	if b, ok := elem.Value.([]byte); ok {
		// binary words read without a known VR
		if len(b)%2 != 0 {
			return nil, false
		}
		res := make([]int, len(b)/2)
		for i := range res {
			res[i] = int(a.order.Uint16(b[i*2:]))
		}
		return res, true
	}
	return elem.GetInts()
}

func (a *attributes) String(t tag.Tag) (string, bool) {
	elem, ok := a.ds.Find(t)
	if !ok {
		return "", false
	}
	return elem.GetString()
}

// Bytes returns binary values in the dataset byte order. Word values decoded
// as US or SS are re-encoded so tables read the same either way.
func (a *attributes) Bytes(t tag.Tag) ([]byte, bool) {
	elem, ok := a.ds.Find(t)
	if !ok {
		return nil, false
	}
	switch v := elem.Value.(type) {
	case []byte:
		return v, true
	case []uint16:
		b := make([]byte, len(v)*2)
		for i, w := range v {
			a.order.PutUint16(b[i*2:], w)
		}
		return b, true
	case []int16:
		b := make([]byte, len(v)*2)
		for i, w := range v {
			a.order.PutUint16(b[i*2:], uint16(w))
		}
		return b, true
	case uint16:
		b := make([]byte, 2)
		a.order.PutUint16(b, v)
		return b, true
	}
	return nil, false
}

func (a *attributes) Nested(t tag.Tag, index int) (lut.Attributes, bool) {
	elem, ok := a.ds.Find(t)
	if !ok {
		return nil, false
	}
	items, ok := elem.GetItems()
	if !ok || index < 0 || index >= len(items) || items[index] == nil {
		return nil, false
	}
	return &attributes{ds: items[index], order: a.order}, true
}

func (a *attributes) BigEndian() bool {
	return a.order == binary.BigEndian
}
