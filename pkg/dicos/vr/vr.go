// Package vr defines DICOM Value Representations and the dictionary used when
// a transfer syntax leaves the VR implicit.
package vr

import "github.com/jpfielding/dicoslut/pkg/dicos/tag"

// VR represents a DICOM Value Representation
type VR string

// Standard DICOM Value Representations
const (
	AE VR = "AE" // Application Entity (16 bytes max)
	AS VR = "AS" // Age String (4 bytes fixed)
	AT VR = "AT" // Attribute Tag (4 bytes fixed)
	CS VR = "CS" // Code String (16 bytes max)
	DA VR = "DA" // Date (8 bytes fixed)
	DS VR = "DS" // Decimal String (16 bytes max)
	DT VR = "DT" // DateTime (26 bytes max)
	FL VR = "FL" // Floating Point Single (4 bytes fixed)
	FD VR = "FD" // Floating Point Double (8 bytes fixed)
	IS VR = "IS" // Integer String (12 bytes max)
	LO VR = "LO" // Long String (64 bytes max)
	LT VR = "LT" // Long Text (10240 bytes max)
	OB VR = "OB" // Other Byte String
	OD VR = "OD" // Other Double String
	OF VR = "OF" // Other Float String
	OL VR = "OL" // Other Long
	OW VR = "OW" // Other Word String
	PN VR = "PN" // Person Name (64 bytes max per component)
	SH VR = "SH" // Short String (16 bytes max)
	SL VR = "SL" // Signed Long (4 bytes fixed)
	SQ VR = "SQ" // Sequence of Items
	SS VR = "SS" // Signed Short (2 bytes fixed)
	ST VR = "ST" // Short Text (1024 bytes max)
	TM VR = "TM" // Time (16 bytes max)
	UC VR = "UC" // Unlimited Characters
	UI VR = "UI" // Unique Identifier (64 bytes max)
	UL VR = "UL" // Unsigned Long (4 bytes fixed)
	UN VR = "UN" // Unknown
	UR VR = "UR" // Universal Resource Identifier
	US VR = "US" // Unsigned Short (2 bytes fixed)
	UT VR = "UT" // Unlimited Text
)

// IsLongLength returns true if the VR uses 2 reserved bytes and a 4 byte
// length in explicit VR encodings
func (v VR) IsLongLength() bool {
	switch v {
	case OB, OD, OF, OL, OW, SQ, UC, UN, UR, UT:
		return true
	default:
		return false
	}
}

// IsString returns true if this VR contains string data
func (v VR) IsString() bool {
	switch v {
	case AE, AS, CS, DA, DS, DT, IS, LO, LT, PN, SH, ST, TM, UC, UI, UR, UT:
		return true
	default:
		return false
	}
}

// Padding returns the byte used to pad values to even length
func (v VR) Padding() byte {
	if v.IsString() && v != UI {
		return ' '
	}
	return 0
}

// ValueSize returns the fixed size in bytes for fixed-size VRs, or 0 for variable
func (v VR) ValueSize() int {
	switch v {
	case SS, US:
		return 2
	case AT, FL, SL, UL:
		return 4
	case FD:
		return 8
	default:
		return 0 // Variable
	}
}

// dictionary holds the tags this module reads or writes outside group 0002
var dictionary = map[tag.Tag]VR{
	tag.SpecificCharacterSet: CS,
	tag.ImageType:            CS,
	tag.SOPClassUID:          UI,
	tag.SOPInstanceUID:       UI,
	tag.StudyDate:            DA,
	tag.ContentDate:          DA,
	tag.StudyTime:            TM,
	tag.ContentTime:          TM,
	tag.AccessionNumber:      SH,
	tag.Modality:             CS,
	tag.StudyDescription:     LO,
	tag.SeriesDescription:    LO,
	tag.PatientName:          PN,
	tag.PatientID:            LO,
	tag.StudyInstanceUID:     UI,
	tag.SeriesInstanceUID:    UI,
	tag.StudyID:              SH,
	tag.SeriesNumber:         IS,
	tag.InstanceNumber:       IS,

	tag.SamplesPerPixel:           US,
	tag.PhotometricInterpretation: CS,
	tag.NumberOfFrames:            IS,
	tag.Rows:                      US,
	tag.Columns:                   US,
	tag.PixelSpacing:              DS,
	tag.BitsAllocated:             US,
	tag.BitsStored:                US,
	tag.HighBit:                   US,
	tag.PixelRepresentation:       US,
	tag.SmallestImagePixelValue:   US,
	tag.LargestImagePixelValue:    US,

	tag.WindowCenter:                 DS,
	tag.WindowWidth:                  DS,
	tag.RescaleIntercept:             DS,
	tag.RescaleSlope:                 DS,
	tag.RescaleType:                  LO,
	tag.WindowCenterWidthExplanation: LO,
	tag.VOILUTFunction:               CS,

	tag.ModalityLUTSequence:     SQ,
	tag.LUTDescriptor:           US,
	tag.LUTExplanation:          LO,
	tag.ModalityLUTType:         LO,
	tag.LUTData:                 OW,
	tag.VOILUTSequence:          SQ,
	tag.PresentationLUTSequence: SQ,
	tag.PresentationLUTShape:    CS,

	tag.PixelData: OW,
}

// ForTag returns the VR of a tag. File meta elements are UI except the
// group length (UL) and version (OB); unknown tags are UN.
func ForTag(t tag.Tag) VR {
	if t.Group == 0x0002 {
		switch t.Element {
		case 0x0000:
			return UL
		case 0x0001:
			return OB
		case 0x0013:
			return SH
		}
		return UI
	}
	if v, ok := dictionary[t]; ok {
		return v
	}
	return UN
}
