// Package tag defines the DICOM/DICOS tags used by the lookup table pipeline
package tag

// Tag represents a DICOM tag with Group and Element
type Tag struct {
	Group   uint16
	Element uint16
}

// File Meta Information (Group 0002)
var (
	FileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	FileMetaInformationVersion     = Tag{0x0002, 0x0001}
	MediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	MediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TransferSyntaxUID              = Tag{0x0002, 0x0010}
	ImplementationClassUID         = Tag{0x0002, 0x0012}
	ImplementationVersionName      = Tag{0x0002, 0x0013}
)

// Identification (Group 0008, 0010, 0020)
var (
	SpecificCharacterSet = Tag{0x0008, 0x0005}
	ImageType            = Tag{0x0008, 0x0008}
	SOPClassUID          = Tag{0x0008, 0x0016}
	SOPInstanceUID       = Tag{0x0008, 0x0018}
	StudyDate            = Tag{0x0008, 0x0020}
	ContentDate          = Tag{0x0008, 0x0023}
	StudyTime            = Tag{0x0008, 0x0030}
	ContentTime          = Tag{0x0008, 0x0033}
	AccessionNumber      = Tag{0x0008, 0x0050}
	Modality             = Tag{0x0008, 0x0060}
	StudyDescription     = Tag{0x0008, 0x1030}
	SeriesDescription    = Tag{0x0008, 0x103E}
	PatientName          = Tag{0x0010, 0x0010}
	PatientID            = Tag{0x0010, 0x0020}
	StudyInstanceUID     = Tag{0x0020, 0x000D}
	SeriesInstanceUID    = Tag{0x0020, 0x000E}
	StudyID              = Tag{0x0020, 0x0010}
	SeriesNumber         = Tag{0x0020, 0x0011}
	InstanceNumber       = Tag{0x0020, 0x0013}
)

// Image Pixel Module (Group 0028)
var (
	SamplesPerPixel           = Tag{0x0028, 0x0002}
	PhotometricInterpretation = Tag{0x0028, 0x0004}
	NumberOfFrames            = Tag{0x0028, 0x0008}
	Rows                      = Tag{0x0028, 0x0010}
	Columns                   = Tag{0x0028, 0x0011}
	PixelSpacing              = Tag{0x0028, 0x0030}
	BitsAllocated             = Tag{0x0028, 0x0100}
	BitsStored                = Tag{0x0028, 0x0101}
	HighBit                   = Tag{0x0028, 0x0102}
	PixelRepresentation       = Tag{0x0028, 0x0103}
	SmallestImagePixelValue   = Tag{0x0028, 0x0106} // US/SS - Min pixel value
	LargestImagePixelValue    = Tag{0x0028, 0x0107} // US/SS - Max pixel value
	PixelData                 = Tag{0x7FE0, 0x0010}
)

// Modality and VOI LUT Modules (Group 0028)
var (
	WindowCenter                 = Tag{0x0028, 0x1050}
	WindowWidth                  = Tag{0x0028, 0x1051}
	RescaleIntercept             = Tag{0x0028, 0x1052}
	RescaleSlope                 = Tag{0x0028, 0x1053}
	RescaleType                  = Tag{0x0028, 0x1054}
	WindowCenterWidthExplanation = Tag{0x0028, 0x1055} // LO - Window explanation
	VOILUTFunction               = Tag{0x0028, 0x1056} // CS - LINEAR, SIGMOID, LINEAR_EXACT

	ModalityLUTSequence = Tag{0x0028, 0x3000} // SQ - Modality LUT sequence
	LUTDescriptor       = Tag{0x0028, 0x3002} // US - entries\first mapped\bits
	LUTExplanation      = Tag{0x0028, 0x3003} // LO - LUT explanation
	ModalityLUTType     = Tag{0x0028, 0x3004} // LO - Modality LUT output units
	LUTData             = Tag{0x0028, 0x3006} // US/OW - LUT data
	VOILUTSequence      = Tag{0x0028, 0x3010} // SQ - VOI LUT sequence
)

// Presentation LUT Module (Group 2050)
var (
	PresentationLUTSequence = Tag{0x2050, 0x0010} // SQ - Presentation LUT sequence
	PresentationLUTShape    = Tag{0x2050, 0x0020} // CS - IDENTITY or INVERSE
)

// Sequence delimiters
var (
	Item                     = Tag{0xFFFE, 0xE000}
	ItemDelimitationItem     = Tag{0xFFFE, 0xE00D}
	SequenceDelimitationItem = Tag{0xFFFE, 0xE0DD}
)

var names = map[Tag]string{
	TransferSyntaxUID:         "TransferSyntaxUID",
	SOPClassUID:               "SOPClassUID",
	Modality:                  "Modality",
	PatientName:               "PatientName",
	PatientID:                 "PatientID",
	Rows:                      "Rows",
	Columns:                   "Columns",
	NumberOfFrames:            "NumberOfFrames",
	BitsAllocated:             "BitsAllocated",
	BitsStored:                "BitsStored",
	HighBit:                   "HighBit",
	PixelRepresentation:       "PixelRepresentation",
	PhotometricInterpretation: "PhotometricInterpretation",
	SmallestImagePixelValue:   "SmallestImagePixelValue",
	LargestImagePixelValue:    "LargestImagePixelValue",
	PixelData:                 "PixelData",
	WindowCenter:              "WindowCenter",
	WindowWidth:               "WindowWidth",
	RescaleIntercept:          "RescaleIntercept",
	RescaleSlope:              "RescaleSlope",
	RescaleType:               "RescaleType",
	VOILUTFunction:            "VOILUTFunction",
	ModalityLUTSequence:       "ModalityLUTSequence",
	LUTDescriptor:             "LUTDescriptor",
	LUTExplanation:            "LUTExplanation",
	ModalityLUTType:           "ModalityLUTType",
	LUTData:                   "LUTData",
	VOILUTSequence:            "VOILUTSequence",
	PresentationLUTSequence:   "PresentationLUTSequence",
	PresentationLUTShape:      "PresentationLUTShape",
}

// LookupName returns a human-readable name for common tags, "" otherwise
func (t Tag) LookupName() string {
	return names[t]
}
