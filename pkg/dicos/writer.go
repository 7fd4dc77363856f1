package dicos

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/jpfielding/dicoslut/pkg/dicos/transfer"
	"github.com/jpfielding/dicoslut/pkg/dicos/vr"
)

// WriteFile writes a dataset to a DICOS file
func WriteFile(path string, ds *Dataset) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return Write(f, ds)
}

// Write writes a dataset to a writer. The file meta group is always
// Explicit VR Little Endian and the body follows the dataset's Transfer Syntax UID.
// A dataset without file meta is written as Implicit VR Little Endian.
func Write(w io.Writer, ds *Dataset) (int64, error) {
	cw := &CountingWriter{Writer: w}

	// 1. Write Preamble (128 bytes 0x00)
	preamble := make([]byte, 128)
	if _, err := cw.Write(preamble); err != nil {
		return cw.Count.Load(), err
	}

	// 2. Write DICM Magic
	if _, err := cw.Write([]byte("DICM")); err != nil {
		return cw.Count.Load(), err
	}

	// 3. Write meta group, then the body in the negotiated encoding
	meta := &Dataset{Elements: make(map[Tag]*Element)}
	body := &Dataset{Elements: make(map[Tag]*Element)}
	for t, elem := range ds.Elements {
		if t.Group == 0x0002 {
			meta.Elements[t] = elem
		} else {
			body.Elements[t] = elem
		}
	}
	if _, err := writeDataSetBody(cw, meta, encoder{order: binary.LittleEndian, explicitVR: true}); err != nil {
		return cw.Count.Load(), err
	}
	ts := transfer.ImplicitVRLittleEndian
	if len(meta.Elements) > 0 {
		ts = GetTransferSyntax(ds)
	}
	if _, err := writeDataSetBody(cw, body, encoderFor(ts)); err != nil {
		return cw.Count.Load(), err
	}
	return cw.Count.Load(), nil
}

// encoder carries the byte order and VR mode for one part of a file
type encoder struct {
	order      binary.ByteOrder
	explicitVR bool
}

func encoderFor(ts transfer.Syntax) encoder {
	e := encoder{order: binary.LittleEndian, explicitVR: ts.IsExplicitVR()}
	if !ts.IsLittleEndian() {
		e.order = binary.BigEndian
	}
	return e
}

func writeDataSetBody(w io.Writer, ds *Dataset, enc encoder) (int64, error) {
	// Collect elements and sort by Tag
	var elements []*Element
	for _, elem := range ds.Elements {
		elements = append(elements, elem)
	}

	sort.Slice(elements, func(i, j int) bool {
		t1 := elements[i].Tag
		t2 := elements[j].Tag
		if t1.Group != t2.Group {
			return t1.Group < t2.Group
		}
		return t1.Element < t2.Element
	})

	cw := &CountingWriter{Writer: w}

	for _, elem := range elements {
		if _, err := enc.writeElement(cw, elem); err != nil {
			return cw.Count.Load(), fmt.Errorf("failed to write element %v: %w", elem.Tag, err)
		}
	}

	return cw.Count.Load(), nil
}

func (enc encoder) writeElement(w io.Writer, elem *Element) (int, error) {
	cw := &CountingWriter{Writer: w}

	// Write Tag
	if err := binary.Write(cw, enc.order, elem.Tag.Group); err != nil {
		return int(cw.Count.Load()), err
	}
	if err := binary.Write(cw, enc.order, elem.Tag.Element); err != nil {
		return int(cw.Count.Load()), err
	}

	vr := elem.VR
	if len(vr) != 2 {
		slog.Warn("Invalid VR length, defaulting to UN", "vr", vr, "tag", elem.Tag)
		vr = "UN"
	}

	valBytes, isUndefinedLength, err := enc.encodeValue(elem.Value, vr)
	if err != nil {
		return int(cw.Count.Load()), err
	}

	length := uint32(len(valBytes))
	if isUndefinedLength {
		length = undefinedLength
	}

	switch {
	case !enc.explicitVR:
		if err := binary.Write(cw, enc.order, length); err != nil {
			return int(cw.Count.Load()), err
		}
	case isLongVR(vr):
		// VR, 2 reserved bytes, 4 byte length
		if _, err := cw.Write([]byte{vr[0], vr[1], 0, 0}); err != nil {
			return int(cw.Count.Load()), err
		}
		if err := binary.Write(cw, enc.order, length); err != nil {
			return int(cw.Count.Load()), err
		}
	default:
		if isUndefinedLength {
			return int(cw.Count.Load()), fmt.Errorf("undefined length not supported for Short VR %s", vr)
		}
		if len(valBytes) > math.MaxUint16 {
			return int(cw.Count.Load()), fmt.Errorf("value of %d bytes too long for VR %s", len(valBytes), vr)
		}
		if _, err := cw.Write([]byte(vr)); err != nil {
			return int(cw.Count.Load()), err
		}
		if err := binary.Write(cw, enc.order, uint16(len(valBytes))); err != nil {
			return int(cw.Count.Load()), err
		}
	}

	if _, err := cw.Write(valBytes); err != nil {
		return int(cw.Count.Load()), err
	}

	return int(cw.Count.Load()), nil
}

// encodeValue returns encoded bytes and a bool indicating if undefined length used (e.g. encapsulated pixels)
func (enc encoder) encodeValue(v interface{}, vr string) ([]byte, bool, error) {
	if v == nil {
		return []byte{}, false, nil
	}

	if pd, ok := v.(*PixelData); ok {
		if pd.IsEncapsulated {
			b, err := enc.encodeEncapsulatedPixelData(pd)
			return b, true, err // Undefined Length
		}
		return enc.encodeNativePixelData(pd), false, nil
	}

	switch val := v.(type) {
	case []*Dataset:
		if vr == "SQ" {
			b, err := enc.encodeSequence(val)
			return b, true, err
		}
		return nil, false, fmt.Errorf("unexpected []*Dataset for VR %s", vr)
	case string:
		return padString(val, vr), false, nil
	case []string:
		return padString(strings.Join(val, "\\"), vr), false, nil
	case uint16:
		return enc.encodeInts([]int{int(val)}, vr)
	case int16:
		return enc.encodeInts([]int{int(val)}, vr)
	case int:
		return enc.encodeInts([]int{val}, vr)
	case []int:
		return enc.encodeInts(val, vr)
	case []uint16:
		b := make([]byte, len(val)*2)
		for i, u := range val {
			enc.order.PutUint16(b[i*2:], u)
		}
		return b, false, nil
	case []int16:
		b := make([]byte, len(val)*2)
		for i, s := range val {
			enc.order.PutUint16(b[i*2:], uint16(s))
		}
		return b, false, nil
	case float64:
		return enc.encodeFloats([]float64{val}, vr)
	case []float64:
		return enc.encodeFloats(val, vr)
	case []float32:
		b := make([]byte, len(val)*4)
		for i, f := range val {
			enc.order.PutUint32(b[i*4:], math.Float32bits(f))
		}
		return b, false, nil
	case []byte:
		if len(val)%2 != 0 {
			return append(append([]byte{}, val...), 0), false, nil
		}
		return val, false, nil
	}

	return nil, false, fmt.Errorf("unsupported value type %T for VR %s", v, vr)
}

// padString pads to even length with the padding byte of the VR
func padString(s, v string) []byte {
	b := []byte(s)
	if len(b)%2 != 0 {
		b = append(b, vr.VR(v).Padding())
	}
	return b
}

func (enc encoder) encodeInts(vals []int, vr string) ([]byte, bool, error) {
	switch vr {
	case "IS":
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = fmt.Sprintf("%d", v)
		}
		return padString(strings.Join(parts, "\\"), vr), false, nil
	case "DS":
		fs := make([]float64, len(vals))
		for i, v := range vals {
			fs[i] = float64(v)
		}
		return enc.encodeFloats(fs, vr)
	case "UL", "SL":
		b := make([]byte, len(vals)*4)
		for i, v := range vals {
			enc.order.PutUint32(b[i*4:], uint32(v))
		}
		return b, false, nil
	}
	// US, SS, and the short words of OW
	b := make([]byte, len(vals)*2)
	for i, v := range vals {
		enc.order.PutUint16(b[i*2:], uint16(v))
	}
	return b, false, nil
}

func (enc encoder) encodeFloats(vals []float64, vr string) ([]byte, bool, error) {
	switch vr {
	case "DS":
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = formatDS(v)
		}
		return padString(strings.Join(parts, "\\"), vr), false, nil
	case "FD":
		b := make([]byte, len(vals)*8)
		for i, v := range vals {
			enc.order.PutUint64(b[i*8:], math.Float64bits(v))
		}
		return b, false, nil
	case "FL":
		b := make([]byte, len(vals)*4)
		for i, v := range vals {
			enc.order.PutUint32(b[i*4:], math.Float32bits(float32(v)))
		}
		return b, false, nil
	}
	return nil, false, fmt.Errorf("float64 for VR %s not implemented", vr)
}

func (enc encoder) encodeSequence(datasets []*Dataset) ([]byte, error) {
	var buf bytes.Buffer

	for _, ds := range datasets {
		var dsBuf bytes.Buffer
		if _, err := writeDataSetBody(&dsBuf, ds, enc); err != nil {
			return nil, fmt.Errorf("failed to encode sequence item: %w", err)
		}

		// Item Tag (FFFE, E000) with explicit length
		enc.writeItemHeader(&buf, 0xE000, uint32(dsBuf.Len()))
		buf.Write(dsBuf.Bytes())
	}

	// Sequence Delimitation Item (FFFE, E0DD)
	enc.writeItemHeader(&buf, 0xE0DD, 0)

	return buf.Bytes(), nil
}

func (enc encoder) writeItemHeader(buf *bytes.Buffer, element uint16, length uint32) {
	var hdr [8]byte
	enc.order.PutUint16(hdr[0:], 0xFFFE)
	enc.order.PutUint16(hdr[2:], element)
	enc.order.PutUint32(hdr[4:], length)
	buf.Write(hdr[:])
}

func (enc encoder) encodeNativePixelData(pd *PixelData) []byte {
	var buf bytes.Buffer
	var word [2]byte
	for _, frame := range pd.Frames {
		for _, pixel := range frame.Data {
			enc.order.PutUint16(word[:], pixel)
			buf.Write(word[:])
		}
	}
	return buf.Bytes()
}

func (enc encoder) encodeEncapsulatedPixelData(pd *PixelData) ([]byte, error) {
	var buf bytes.Buffer

	// 1. Basic Offset Table
	enc.writeItemHeader(&buf, 0xE000, uint32(len(pd.Offsets)*4))
	for _, off := range pd.Offsets {
		if err := binary.Write(&buf, enc.order, off); err != nil {
			return nil, err
		}
	}

	// 2. Frames (Items)
	for _, frame := range pd.Frames {
		enc.writeItemHeader(&buf, 0xE000, uint32(len(frame.CompressedData)))
		buf.Write(frame.CompressedData)
	}

	// 3. Sequence Delimitation Item
	enc.writeItemHeader(&buf, 0xE0DD, 0)

	return buf.Bytes(), nil
}

type CountingWriter struct {
	Count  atomic.Int64
	Writer io.Writer
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.Writer.Write(p)
	if err == nil {
		c.Count.Add(int64(n))
	}
	return n, err
}
