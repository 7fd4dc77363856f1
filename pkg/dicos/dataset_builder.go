package dicos

import (
	"fmt"

	"github.com/jpfielding/dicoslut/pkg/dicos/module"
	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
	"github.com/jpfielding/dicoslut/pkg/dicos/transfer"
	"github.com/jpfielding/dicoslut/pkg/dicos/vr"
)

// Option configures a Dataset during construction
type Option func(*Dataset) error

// NewDataset creates a Dataset with the given options
func NewDataset(opts ...Option) (*Dataset, error) {
	ds := &Dataset{Elements: make(map[Tag]*Element)}
	for _, opt := range opts {
		if err := opt(ds); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// WithElement adds a single element to the dataset
func WithElement(t tag.Tag, value interface{}) Option {
	return func(ds *Dataset) error {
		internalTag := Tag{Group: t.Group, Element: t.Element}
		vr := GetVR(t)
		ds.Elements[internalTag] = &Element{
			Tag:   internalTag,
			VR:    vr,
			Value: value,
		}
		return nil
	}
}

// WithSequence adds a sequence element to the dataset
func WithSequence(t tag.Tag, items ...*Dataset) Option {
	return func(ds *Dataset) error {
		internalTag := Tag{Group: t.Group, Element: t.Element}
		ds.Elements[internalTag] = &Element{
			Tag:   internalTag,
			VR:    "SQ",
			Value: items,
		}
		return nil
	}
}

// WithFileMeta adds standard file meta information elements
func WithFileMeta(sopClassUID, sopInstanceUID, transferSyntax string) Option {
	return func(ds *Dataset) error {
		ds.BigEndian = !transfer.FromUID(transferSyntax).IsLittleEndian()
		opts := []Option{
			WithElement(tag.MediaStorageSOPClassUID, sopClassUID),
			WithElement(tag.MediaStorageSOPInstanceUID, sopInstanceUID),
			WithElement(tag.TransferSyntaxUID, transferSyntax),
			WithElement(tag.ImplementationClassUID, "1.2.826.0.1.3680043.8.498.1"),
			WithElement(tag.ImplementationVersionName, "GO_DICOSLUT"),
		}
		for _, opt := range opts {
			if err := opt(ds); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithModule adds all elements from a module's ToTags() result.
// Values of type [][]module.IODElement become sequences, one item per entry.
func WithModule(tags []module.IODElement) Option {
	return func(ds *Dataset) error {
		for _, el := range tags {
			items, ok := el.Value.([][]module.IODElement)
			if !ok {
				if err := WithElement(el.Tag, el.Value)(ds); err != nil {
					return err
				}
				continue
			}
			sb := NewSequenceBuilder(el.Tag)
			for _, item := range items {
				sb.AddItem(WithModule(item))
			}
			opt, err := sb.Build()
			if err != nil {
				return err
			}
			if err := opt(ds); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithPixelData adds native pixel data. Samples of 8 bits or less are packed
// one per byte (OB), wider samples one per 16 bit word (OW) split into frames.
func WithPixelData(rows, cols, bitsAllocated int, data []uint16) Option {
	return func(ds *Dataset) error {
		if len(data) == 0 {
			return nil
		}
		pixelsPerFrame := rows * cols
		if pixelsPerFrame == 0 || len(data)%pixelsPerFrame != 0 {
			return fmt.Errorf("%d samples do not fill %dx%d frames", len(data), cols, rows)
		}

		t := tag.PixelData
		if bitsAllocated <= 8 {
			packed := make([]byte, len(data))
			for i, v := range data {
				packed[i] = byte(v)
			}
			ds.Elements[t] = &Element{Tag: t, VR: "OB", Value: packed}
			return nil
		}

		numFrames := len(data) / pixelsPerFrame
		pd := &PixelData{Frames: make([]Frame, numFrames)}
		for i := 0; i < numFrames; i++ {
			fData := make([]uint16, pixelsPerFrame)
			copy(fData, data[i*pixelsPerFrame:])
			pd.Frames[i] = Frame{Data: fData}
		}
		ds.Elements[t] = &Element{Tag: t, VR: "OW", Value: pd}
		return nil
	}
}

// GetVR returns the Value Representation (VR) for a standard tag
func GetVR(t tag.Tag) string {
	return string(vr.ForTag(t))
}
