package dicos

import (
	"fmt"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

// AttributeType represents DICOM attribute type requirements
type AttributeType int

const (
	// Type1 - Required, must have value
	Type1 AttributeType = 1
	// Type1C - Conditionally required, must have value if present
	Type1C AttributeType = 2
	// Type2 - Required, may be empty
	Type2 AttributeType = 3
	// Type3 - Optional
	Type3 AttributeType = 5
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Tag        tag.Tag
	Type       AttributeType
	Path       string // sequence path for attributes inside items, e.g. "(0028,3010)[0]"
	Message    string
	IsCritical bool // Type 1 and 1C violations are critical
}

func (e ValidationError) Error() string {
	prefix := ""
	if e.Path != "" {
		prefix = e.Path + "."
	}
	return fmt.Sprintf("%s%s %s: %s", prefix, e.Tag, e.typeName(), e.Message)
}

func (e ValidationError) typeName() string {
	switch e.Type {
	case Type1:
		return "Type 1"
	case Type1C:
		return "Type 1C"
	case Type2:
		return "Type 2"
	case Type3:
		return "Type 3"
	default:
		return "Unknown"
	}
}

// ValidationResult contains all validation errors for a dataset
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid returns true if there are no critical errors
func (r ValidationResult) IsValid() bool {
	for _, err := range r.Errors {
		if err.IsCritical {
			return false
		}
	}
	return true
}

// HasErrors returns true if there are any errors
func (r ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

func (r *ValidationResult) merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// IODRequirement defines a required attribute for an IOD
type IODRequirement struct {
	Tag       tag.Tag
	Type      AttributeType
	Condition func(*Dataset) bool // For Type 1C, returns true if attribute is required
}

// ValidateDataset validates a dataset against a set of requirements
func ValidateDataset(ds *Dataset, requirements []IODRequirement) ValidationResult {
	return validateAt(ds, "", requirements)
}

func validateAt(ds *Dataset, path string, requirements []IODRequirement) ValidationResult {
	result := ValidationResult{}
	fail := func(req IODRequirement, msg string) {
		result.Errors = append(result.Errors, ValidationError{
			Tag: req.Tag, Type: req.Type, Path: path, Message: msg, IsCritical: true,
		})
	}

	for _, req := range requirements {
		elem, exists := ds.Find(req.Tag)

		switch req.Type {
		case Type1:
			if !exists {
				fail(req, "Required attribute missing")
			} else if isEmpty(elem) {
				fail(req, "Required attribute is empty")
			}
		case Type1C:
			if req.Condition == nil || !req.Condition(ds) {
				continue
			}
			if !exists {
				fail(req, "Conditionally required attribute missing")
			} else if isEmpty(elem) {
				fail(req, "Conditionally required attribute is empty")
			}
		case Type2:
			if !exists {
				result.Warnings = append(result.Warnings, ValidationError{
					Tag: req.Tag, Type: Type2, Path: path, Message: "Required attribute missing (may be empty)",
				})
			}
		case Type3:
			// Optional - no validation needed
		}
	}

	return result
}

// isEmpty checks if an element has no value
func isEmpty(elem *Element) bool {
	if elem == nil || elem.Value == nil {
		return true
	}
	switch v := elem.Value.(type) {
	case string:
		return v == ""
	case []byte:
		return len(v) == 0
	case []uint16:
		return len(v) == 0
	case []*Dataset:
		return len(v) == 0
	default:
		return false
	}
}

func present(t tag.Tag) func(*Dataset) bool {
	return func(ds *Dataset) bool {
		_, ok := ds.Find(t)
		return ok
	}
}

// ImagePixelModuleRequirements defines required attributes for Image Pixel Module
var ImagePixelModuleRequirements = []IODRequirement{
	{Tag: tag.SamplesPerPixel, Type: Type1},
	{Tag: tag.PhotometricInterpretation, Type: Type1},
	{Tag: tag.Rows, Type: Type1},
	{Tag: tag.Columns, Type: Type1},
	{Tag: tag.BitsAllocated, Type: Type1},
	{Tag: tag.BitsStored, Type: Type1},
	{Tag: tag.HighBit, Type: Type1},
	{Tag: tag.PixelRepresentation, Type: Type1},
	{Tag: tag.PixelData, Type: Type1},
}

// ModalityLUTModuleRequirements: rescale attributes stand in for a Modality LUT Sequence
var ModalityLUTModuleRequirements = []IODRequirement{
	{Tag: tag.RescaleIntercept, Type: Type1C, Condition: present(tag.RescaleSlope)},
	{Tag: tag.RescaleSlope, Type: Type1C, Condition: present(tag.RescaleIntercept)},
	{Tag: tag.ModalityLUTSequence, Type: Type3},
}

// VOILUTModuleRequirements: a window needs both center and width
var VOILUTModuleRequirements = []IODRequirement{
	{Tag: tag.WindowWidth, Type: Type1C, Condition: present(tag.WindowCenter)},
	{Tag: tag.WindowCenter, Type: Type1C, Condition: present(tag.WindowWidth)},
	{Tag: tag.VOILUTSequence, Type: Type3},
}

// LUTItemRequirements applies to every item of a Modality, VOI or Presentation LUT Sequence
var LUTItemRequirements = []IODRequirement{
	{Tag: tag.LUTDescriptor, Type: Type1},
	{Tag: tag.LUTData, Type: Type1},
}

// ValidateGrayscale validates the pixel description and every lookup table
// stage of a grayscale image, including the items of its LUT sequences.
func ValidateGrayscale(ds *Dataset) ValidationResult {
	result := ValidationResult{}
	for _, reqs := range [][]IODRequirement{
		ImagePixelModuleRequirements,
		ModalityLUTModuleRequirements,
		VOILUTModuleRequirements,
	} {
		result.merge(ValidateDataset(ds, reqs))
	}

	for _, seq := range []tag.Tag{tag.ModalityLUTSequence, tag.VOILUTSequence, tag.PresentationLUTSequence} {
		for i, item := range GetSequenceItems(ds, seq) {
			result.merge(validateAt(item, fmt.Sprintf("%s[%d]", seq, i), LUTItemRequirements))
		}
	}
	return result
}
