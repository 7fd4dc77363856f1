package lut

import (
	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

// attrs is an in-memory Attributes used by the tests in this package.
type attrs struct {
	values    map[tag.Tag]any
	bigEndian bool
}

func newAttrs(kv ...any) *attrs {
	a := &attrs{values: map[tag.Tag]any{}}
	for i := 0; i+1 < len(kv); i += 2 {
		a.values[kv[i].(tag.Tag)] = kv[i+1]
	}
	return a
}

func (a *attrs) Float(t tag.Tag) (float64, bool) {
	if vs, ok := a.Floats(t); ok && len(vs) > 0 {
		return vs[0], true
	}
	return 0, false
}

func (a *attrs) Floats(t tag.Tag) ([]float64, bool) {
	switch v := a.values[t].(type) {
	case float64:
		return []float64{v}, true
	case []float64:
		return v, true
	}
	return nil, false
}

func (a *attrs) Int(t tag.Tag) (int, bool) {
	if vs, ok := a.Ints(t); ok && len(vs) > 0 {
		return vs[0], true
	}
	return 0, false
}

func (a *attrs) Ints(t tag.Tag) ([]int, bool) {
	switch v := a.values[t].(type) {
	case int:
		return []int{v}, true
	case []int:
		return v, true
	}
	return nil, false
}

func (a *attrs) String(t tag.Tag) (string, bool) {
	s, ok := a.values[t].(string)
	return s, ok
}

func (a *attrs) Bytes(t tag.Tag) ([]byte, bool) {
	b, ok := a.values[t].([]byte)
	return b, ok
}

func (a *attrs) Nested(t tag.Tag, index int) (Attributes, bool) {
	items, ok := a.values[t].([]*attrs)
	if !ok || index < 0 || index >= len(items) {
		return nil, false
	}
	return items[index], true
}

func (a *attrs) BigEndian() bool {
	return a.bigEndian
}

// lutItem builds a LUT sequence item from a descriptor and little endian 16 bit words.
func lutItem(desc []int, words ...uint16) *attrs {
	data := make([]byte, len(words)*2)
	for i, w := range words {
		data[i*2] = byte(w)
		data[i*2+1] = byte(w >> 8)
	}
	return newAttrs(tag.LUTDescriptor, desc, tag.LUTData, data)
}
