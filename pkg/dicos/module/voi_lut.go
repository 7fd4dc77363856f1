package module

import (
	"strings"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

// VOILUTModule represents the VOI LUT (Value of Interest Lookup Table) Module
// Per DICOM Part 3 Section C.11.2
// Provides window/level presets and LUT-based transformations for display
type VOILUTModule struct {
	// Linear Window/Level presets, selected by index
	Windows []WindowLevel

	// VOI LUT Sequence items, selected by index
	LUTs []LUT

	// VOI LUT Function - how to interpret window values
	// LINEAR (default), SIGMOID, or LINEAR_EXACT
	VOILUTFunction string
}

// WindowLevel represents a single window/level preset
type WindowLevel struct {
	Center      float64 // Window center value
	Width       float64 // Window width value
	Explanation string  // Optional description (e.g., "BONE", "SOFT TISSUE")
}

// NewVOILUTModule creates an empty VOILUTModule using the linear function
func NewVOILUTModule() *VOILUTModule {
	return &VOILUTModule{VOILUTFunction: "LINEAR"}
}

// NewVOILUTModuleForCT creates presets for common CT viewing windows
func NewVOILUTModuleForCT() *VOILUTModule {
	return &VOILUTModule{
		Windows: []WindowLevel{
			{Center: 40, Width: 400, Explanation: "SOFT_TISSUE"},
			{Center: 400, Width: 2000, Explanation: "BONE"},
			{Center: -600, Width: 1500, Explanation: "LUNG"},
			{Center: 50, Width: 350, Explanation: "BRAIN"},
		},
		VOILUTFunction: "LINEAR",
	}
}

// AddWindow adds a window/level preset
func (m *VOILUTModule) AddWindow(center, width float64, explanation string) {
	m.Windows = append(m.Windows, WindowLevel{
		Center:      center,
		Width:       width,
		Explanation: explanation,
	})
}

// AddLUT appends a VOI LUT Sequence item
func (m *VOILUTModule) AddLUT(l LUT) {
	m.LUTs = append(m.LUTs, l)
}

// ToTags converts the module to DICOM tag elements
func (m *VOILUTModule) ToTags() []IODElement {
	var elements []IODElement

	if len(m.Windows) > 0 {
		centers := make([]string, len(m.Windows))
		widths := make([]string, len(m.Windows))
		explanations := make([]string, len(m.Windows))
		for i, w := range m.Windows {
			centers[i] = formatDS(w.Center)
			widths[i] = formatDS(w.Width)
			explanations[i] = w.Explanation
		}

		elements = append(elements,
			IODElement{Tag: tag.WindowCenter, Value: formatMultiValue(centers)},
			IODElement{Tag: tag.WindowWidth, Value: formatMultiValue(widths)},
		)
		if strings.Join(explanations, "") != "" {
			elements = append(elements, IODElement{Tag: tag.WindowCenterWidthExplanation, Value: formatMultiValue(explanations)})
		}
	}

	if m.VOILUTFunction != "" && m.VOILUTFunction != "LINEAR" {
		elements = append(elements, IODElement{Tag: tag.VOILUTFunction, Value: m.VOILUTFunction})
	}

	if len(m.LUTs) > 0 {
		items := make([][]IODElement, len(m.LUTs))
		for i, l := range m.LUTs {
			items[i] = l.item()
		}
		elements = append(elements, IODElement{Tag: tag.VOILUTSequence, Value: items})
	}

	return elements
}
