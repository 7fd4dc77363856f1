package module

import (
	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

// ModalityLUTModule converts stored values into modality units, either by a
// linear rescale or by a Modality LUT Sequence. A table takes the place of
// the rescale attributes.
type ModalityLUTModule struct {
	RescaleIntercept float64
	RescaleSlope     float64
	RescaleType      string // "HU", "US" (unspecified), ...

	LUT     *LUT
	LUTType string // output units of the table
}

// NewRescaleModule creates a linear Modality LUT module
func NewRescaleModule(intercept, slope float64, rescaleType string) *ModalityLUTModule {
	return &ModalityLUTModule{
		RescaleIntercept: intercept,
		RescaleSlope:     slope,
		RescaleType:      rescaleType,
	}
}

// NewModalityTableModule creates a Modality LUT module backed by a table
func NewModalityTableModule(l LUT, lutType string) *ModalityLUTModule {
	return &ModalityLUTModule{LUT: &l, LUTType: lutType}
}

func (m *ModalityLUTModule) ToTags() []IODElement {
	if m.LUT != nil {
		item := m.LUT.item()
		if m.LUTType != "" {
			item = append(item, IODElement{Tag: tag.ModalityLUTType, Value: m.LUTType})
		}
		return []IODElement{{Tag: tag.ModalityLUTSequence, Value: [][]IODElement{item}}}
	}

	elements := []IODElement{
		{Tag: tag.RescaleIntercept, Value: formatDS(m.RescaleIntercept)},
		{Tag: tag.RescaleSlope, Value: formatDS(m.RescaleSlope)},
	}
	if m.RescaleType != "" {
		elements = append(elements, IODElement{Tag: tag.RescaleType, Value: m.RescaleType})
	}
	return elements
}
