package module

import (
	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

// Presentation LUT Shape values
const (
	ShapeIdentity = "IDENTITY"
	ShapeInverse  = "INVERSE"
)

// PresentationLUTModule maps VOI output to display values, either by a named
// shape or by a Presentation LUT Sequence
type PresentationLUTModule struct {
	Shape string
	LUT   *LUT
}

func (m *PresentationLUTModule) ToTags() []IODElement {
	if m.LUT != nil {
		return []IODElement{{Tag: tag.PresentationLUTSequence, Value: [][]IODElement{m.LUT.item()}}}
	}
	if m.Shape == "" {
		return nil
	}
	return []IODElement{{Tag: tag.PresentationLUTShape, Value: m.Shape}}
}
