package dicos

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
	"github.com/jpfielding/dicoslut/pkg/dicos/transfer"
	"github.com/jpfielding/dicoslut/pkg/dicos/vr"
)

const undefinedLength = 0xFFFFFFFF

// Reader reads DICOS/DICOM files
type Reader struct {
	r              *bufio.Reader
	transferSyntax string
	explicitVR     bool
	order          binary.ByteOrder
}

// NewReader creates a new DICOS reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:          bufio.NewReader(r),
		explicitVR: true,
		order:      binary.LittleEndian,
	}
}

// Parse reads a complete DICOS file
func Parse(r io.Reader) (*Dataset, error) {
	reader := NewReader(r)
	return reader.ReadDataset()
}

// ReadDataset reads the complete dataset
func (r *Reader) ReadDataset() (*Dataset, error) {
	ds := &Dataset{
		Elements: make(map[Tag]*Element),
	}

	// Read preamble (128 bytes) and DICM magic
	if _, err := io.CopyN(io.Discard, r.r, 128); err != nil {
		return nil, fmt.Errorf("failed to read preamble: %w", err)
	}

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.r, magic); err != nil {
		return nil, fmt.Errorf("failed to read DICM magic: %w", err)
	}
	if string(magic) != "DICM" {
		return nil, errors.New("invalid DICOM file: missing DICM magic")
	}

	// Group 0002 (File Meta Information) is ALWAYS Explicit VR Little Endian
	r.explicitVR = true
	r.order = binary.LittleEndian
	for r.peekMetaGroup() {
		elem, err := r.readElement(r.r)
		if err != nil {
			return nil, fmt.Errorf("failed to read meta element: %w", err)
		}
		ds.Elements[elem.Tag] = elem
		if elem.Tag == tag.TransferSyntaxUID {
			if s, ok := elem.GetString(); ok {
				r.transferSyntax = s
			}
		}
	}

	// Default to Implicit VR if no File Meta was found
	if r.transferSyntax == "" {
		r.transferSyntax = string(transfer.ImplicitVRLittleEndian)
	}
	r.updateTransferSyntax()
	ds.BigEndian = r.order == binary.BigEndian

	slog.Debug("reading dataset body",
		slog.String("transferSyntax", r.transferSyntax),
		slog.Bool("explicitVR", r.explicitVR),
		slog.Bool("bigEndian", ds.BigEndian))

	for {
		elem, err := r.readElement(r.r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read element: %w", err)
		}
		ds.Elements[elem.Tag] = elem
	}

	return ds, nil
}

// peekMetaGroup reports whether the next element belongs to group 0002
func (r *Reader) peekMetaGroup() bool {
	b, err := r.r.Peek(2)
	if err != nil {
		return false
	}
	return binary.LittleEndian.Uint16(b) == 0x0002
}

// readElement reads a tag and the element that follows it
func (r *Reader) readElement(src io.Reader) (*Element, error) {
	t, err := r.readTag(src)
	if err != nil {
		return nil, err
	}
	elem, err := r.readElementWithTag(src, t)
	if err != nil {
		return nil, fmt.Errorf("element %v: %w", t, err)
	}
	return elem, nil
}

// readElementWithTag reads a DICOM element after the tag has been read
func (r *Reader) readElementWithTag(src io.Reader, t Tag) (*Element, error) {
	var v string
	var vl uint32

	if r.explicitVR {
		// Read VR (2 bytes)
		vrBytes := make([]byte, 2)
		if _, err := io.ReadFull(src, vrBytes); err != nil {
			return nil, err
		}
		v = string(vrBytes)

		// Check if VR uses 4-byte VL or 2-byte VL + 2 reserved bytes
		if isLongVR(v) {
			if _, err := io.CopyN(io.Discard, src, 2); err != nil {
				return nil, err
			}
			if err := binary.Read(src, r.order, &vl); err != nil {
				return nil, err
			}
		} else {
			var vl16 uint16
			if err := binary.Read(src, r.order, &vl16); err != nil {
				return nil, err
			}
			vl = uint32(vl16)
		}
	} else {
		// Implicit VR: VL is always 4 bytes, VR is determined by tag
		if err := binary.Read(src, r.order, &vl); err != nil {
			return nil, err
		}
		v = getImplicitVR(t)
	}

	value, err := r.readValue(src, t, v, vl)
	if err != nil {
		return nil, err
	}
	if _, ok := value.([]*Dataset); ok {
		v = string(vr.SQ)
	}

	return &Element{
		Tag:   t,
		VR:    v,
		Value: value,
	}, nil
}

// readTag reads a DICOM tag
func (r *Reader) readTag(src io.Reader) (Tag, error) {
	var group, element uint16
	if err := binary.Read(src, r.order, &group); err != nil {
		return Tag{}, err
	}
	if err := binary.Read(src, r.order, &element); err != nil {
		return Tag{}, err
	}
	return Tag{Group: group, Element: element}, nil
}

// readValue reads the value based on VR and VL
func (r *Reader) readValue(src io.Reader, t Tag, v string, vl uint32) (interface{}, error) {
	if vr.VR(v) == vr.SQ {
		return r.readSequence(src, vl)
	}

	if vl == undefinedLength {
		if t == tag.PixelData {
			return r.readEncapsulatedPixelData(src)
		}
		// An unknown VR with undefined length can only be a sequence
		return r.readSequence(src, vl)
	}

	data := make([]byte, vl)
	if _, err := io.ReadFull(src, data); err != nil {
		return nil, err
	}

	return parseValue(v, data, r.order), nil
}

// readSequence reads the items of a sequence of defined or undefined length
func (r *Reader) readSequence(src io.Reader, vl uint32) ([]*Dataset, error) {
	items := []*Dataset{}
	if vl != undefinedLength {
		src = io.LimitReader(src, int64(vl))
	}
	for {
		t, err := r.readTag(src)
		if err == io.EOF && vl != undefinedLength {
			return items, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading sequence item tag: %w", err)
		}

		var length uint32
		if err := binary.Read(src, r.order, &length); err != nil {
			return nil, fmt.Errorf("reading item length: %w", err)
		}

		switch t {
		case tag.SequenceDelimitationItem:
			return items, nil
		case tag.Item:
			item, err := r.readItem(src, length)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", len(items), err)
			}
			items = append(items, item)
		default:
			return nil, fmt.Errorf("expected item tag, got %v", t)
		}
	}
}

// readItem reads the elements of one sequence item
func (r *Reader) readItem(src io.Reader, length uint32) (*Dataset, error) {
	item := &Dataset{
		Elements:  make(map[Tag]*Element),
		BigEndian: r.order == binary.BigEndian,
	}
	if length != undefinedLength {
		src = io.LimitReader(src, int64(length))
	}
	for {
		t, err := r.readTag(src)
		if err == io.EOF && length != undefinedLength {
			return item, nil
		}
		if err != nil {
			return nil, err
		}
		if t == tag.ItemDelimitationItem {
			if _, err := io.CopyN(io.Discard, src, 4); err != nil {
				return nil, err
			}
			return item, nil
		}
		elem, err := r.readElementWithTag(src, t)
		if err != nil {
			return nil, fmt.Errorf("element %v: %w", t, err)
		}
		item.Elements[elem.Tag] = elem
	}
}

// readEncapsulatedPixelData reads encapsulated (compressed) pixel data
func (r *Reader) readEncapsulatedPixelData(src io.Reader) (*PixelData, error) {
	pd := &PixelData{
		IsEncapsulated: true,
		Frames:         []Frame{},
	}

	// Read Basic Offset Table (Item Tag FFFE,E000)
	botTag, err := r.readTag(src)
	if err != nil {
		return nil, err
	}
	if botTag != tag.Item {
		return nil, fmt.Errorf("expected BOT item tag, got %v", botTag)
	}

	var botLength uint32
	if err := binary.Read(src, r.order, &botLength); err != nil {
		return nil, err
	}
	if botLength > 0 {
		pd.Offsets = make([]uint32, botLength/4)
		if err := binary.Read(src, r.order, pd.Offsets); err != nil {
			return nil, err
		}
	}

	// Read frames until Sequence Delimitation Item
	for {
		itemTag, err := r.readTag(src)
		if err != nil {
			return nil, err
		}

		var itemLength uint32
		if err := binary.Read(src, r.order, &itemLength); err != nil {
			return nil, err
		}
		if itemTag == tag.SequenceDelimitationItem {
			break
		}
		if itemTag != tag.Item {
			return nil, fmt.Errorf("expected item tag, got %v", itemTag)
		}

		frameData := make([]byte, itemLength)
		if _, err := io.ReadFull(src, frameData); err != nil {
			return nil, err
		}
		pd.Frames = append(pd.Frames, Frame{
			CompressedData: frameData,
		})
	}

	return pd, nil
}

// updateTransferSyntax updates reader settings based on transfer syntax
func (r *Reader) updateTransferSyntax() {
	ts := transfer.FromUID(r.transferSyntax)
	r.explicitVR = ts.IsExplicitVR()
	r.order = binary.LittleEndian
	if !ts.IsLittleEndian() {
		r.order = binary.BigEndian
	}
}

// isLongVR returns true if the VR uses 2 reserved bytes and a 4 byte length
func isLongVR(v string) bool {
	return vr.VR(v).IsLongLength()
}

// getImplicitVR returns VR for a tag when using Implicit VR transfer syntax
func getImplicitVR(t Tag) string {
	return string(vr.ForTag(t))
}

// parseValue converts raw bytes to typed value based on VR
func parseValue(v string, data []byte, order binary.ByteOrder) interface{} {
	if vr.VR(v).IsString() {
		// trim NUL and space padding
		s := string(data)
		for len(s) > 0 && (s[len(s)-1] == 0 || s[len(s)-1] == ' ') {
			s = s[:len(s)-1]
		}
		return s
	}
	switch v {
	case "US":
		if len(data) == 2 {
			return order.Uint16(data)
		}
		values := make([]uint16, len(data)/2)
		for i := range values {
			values[i] = order.Uint16(data[i*2:])
		}
		return values
	case "SS":
		if len(data) == 2 {
			return int16(order.Uint16(data))
		}
		values := make([]int16, len(data)/2)
		for i := range values {
			values[i] = int16(order.Uint16(data[i*2:]))
		}
		return values
	case "UL":
		if len(data) == 4 {
			return order.Uint32(data)
		}
		values := make([]uint32, len(data)/4)
		for i := range values {
			values[i] = order.Uint32(data[i*4:])
		}
		return values
	case "SL":
		if len(data) == 4 {
			return int32(order.Uint32(data))
		}
		values := make([]int32, len(data)/4)
		for i := range values {
			values[i] = int32(order.Uint32(data[i*4:]))
		}
		return values
	case "FL":
		if len(data) == 4 {
			return math.Float32frombits(order.Uint32(data))
		}
		values := make([]float32, len(data)/4)
		for i := range values {
			values[i] = math.Float32frombits(order.Uint32(data[i*4:]))
		}
		return values
	case "FD":
		if len(data) == 8 {
			return math.Float64frombits(order.Uint64(data))
		}
		values := make([]float64, len(data)/8)
		for i := range values {
			values[i] = math.Float64frombits(order.Uint64(data[i*8:]))
		}
		return values
	}
	// OB, OW, UN and anything unknown keep their raw bytes
	return data
}
