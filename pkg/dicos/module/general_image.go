package module

import (
	"time"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

// GeneralImageModule carries the SOP identity and image identification of a
// single grayscale instance
type GeneralImageModule struct {
	SOPClassUID    string
	SOPInstanceUID string
	Modality       string
	ImageType      []string
	InstanceNumber int
	ContentDate    Date
	ContentTime    Time
}

// NewGeneralImageModule stamps the content date and time with the current time
func NewGeneralImageModule(sopClassUID, sopInstanceUID, modality string) *GeneralImageModule {
	t := time.Now()
	return &GeneralImageModule{
		SOPClassUID:    sopClassUID,
		SOPInstanceUID: sopInstanceUID,
		Modality:       modality,
		ImageType:      []string{"ORIGINAL", "PRIMARY"},
		InstanceNumber: 1,
		ContentDate:    NewDate(t),
		ContentTime:    NewTime(t),
	}
}

func (m *GeneralImageModule) ToTags() []IODElement {
	elements := []IODElement{
		{Tag: tag.SOPClassUID, Value: m.SOPClassUID},
		{Tag: tag.SOPInstanceUID, Value: m.SOPInstanceUID},
		{Tag: tag.Modality, Value: m.Modality},
		{Tag: tag.ImageType, Value: formatMultiValue(m.ImageType)},
		{Tag: tag.InstanceNumber, Value: formatIS(m.InstanceNumber)},
	}
	if !m.ContentDate.IsZero() {
		elements = append(elements, IODElement{Tag: tag.ContentDate, Value: m.ContentDate.String()})
	}
	if !m.ContentTime.IsZero() {
		elements = append(elements, IODElement{Tag: tag.ContentTime, Value: m.ContentTime.String()})
	}
	return elements
}
