package module

import (
	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

// ImagePixelModule describes a single sample per pixel grayscale image
// Per DICOM Part 3 Section C.7.6.3
type ImagePixelModule struct {
	Rows                      int
	Columns                   int
	NumberOfFrames            int
	BitsAllocated             int
	BitsStored                int
	PixelRepresentation       int    // 0 unsigned, 1 two's complement
	PhotometricInterpretation string // MONOCHROME1 or MONOCHROME2

	// Optional declared extrema; nil leaves them out
	SmallestImagePixelValue *int
	LargestImagePixelValue  *int
}

// NewImagePixelModule creates a MONOCHROME2 module with the stored depth equal to the allocation
func NewImagePixelModule(rows, cols, bits int, signed bool) *ImagePixelModule {
	m := &ImagePixelModule{
		Rows:                      rows,
		Columns:                   cols,
		NumberOfFrames:            1,
		BitsAllocated:             16,
		BitsStored:                bits,
		PhotometricInterpretation: "MONOCHROME2",
	}
	if bits <= 8 {
		m.BitsAllocated = 8
	}
	if signed {
		m.PixelRepresentation = 1
	}
	return m
}

// SetRange declares the smallest and largest stored values
func (m *ImagePixelModule) SetRange(smallest, largest int) {
	m.SmallestImagePixelValue = &smallest
	m.LargestImagePixelValue = &largest
}

func (m *ImagePixelModule) ToTags() []IODElement {
	elements := []IODElement{
		{Tag: tag.SamplesPerPixel, Value: 1},
		{Tag: tag.PhotometricInterpretation, Value: m.PhotometricInterpretation},
		{Tag: tag.Rows, Value: m.Rows},
		{Tag: tag.Columns, Value: m.Columns},
		{Tag: tag.BitsAllocated, Value: m.BitsAllocated},
		{Tag: tag.BitsStored, Value: m.BitsStored},
		{Tag: tag.HighBit, Value: m.BitsStored - 1},
		{Tag: tag.PixelRepresentation, Value: m.PixelRepresentation},
	}
	if m.NumberOfFrames > 1 {
		elements = append(elements, IODElement{Tag: tag.NumberOfFrames, Value: formatIS(m.NumberOfFrames)})
	}
	if m.SmallestImagePixelValue != nil {
		elements = append(elements, IODElement{Tag: tag.SmallestImagePixelValue, Value: *m.SmallestImagePixelValue})
	}
	if m.LargestImagePixelValue != nil {
		elements = append(elements, IODElement{Tag: tag.LargestImagePixelValue, Value: *m.LargestImagePixelValue})
	}
	return elements
}
