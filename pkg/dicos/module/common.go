package module

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

// Date represents a DICOS Date (DA VR)
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// IsZero checks if Date is uninitialized
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func NewDate(t time.Time) Date {
	return Date{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
	}
}

// Time represents a DICOS Time (TM VR)
type Time struct {
	Hour   int
	Minute int
	Second int
	Nano   int
}

func (t Time) String() string {
	// Format as HHMMSS.FFFFFF
	return fmt.Sprintf("%02d%02d%02d.%06d", t.Hour, t.Minute, t.Second, t.Nano/1000)
}

// IsZero checks if Time is uninitialized
func (t Time) IsZero() bool {
	return t.Hour == 0 && t.Minute == 0 && t.Second == 0 && t.Nano == 0
}

func NewTime(t time.Time) Time {
	return Time{
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		Nano:   t.Nanosecond(),
	}
}

// IODElement is one attribute of a module. A Value of type [][]IODElement
// is a sequence with one entry per item.
type IODElement struct {
	Tag   tag.Tag
	Value interface{}
}

// LUT is a lookup table as carried by a Modality, VOI or Presentation LUT Sequence item
type LUT struct {
	// Descriptor: number of entries (0 means 65536), first mapped value, bits per entry
	Descriptor [3]int
	// Data holds one entry per word; 8 bit entries sit in the low byte
	Data        []uint16
	Explanation string
}

// NewLUT builds a table whose descriptor matches its data
func NewLUT(first, bits int, data []uint16, explanation string) LUT {
	return LUT{
		Descriptor:  [3]int{len(data) & 0xFFFF, first, bits},
		Data:        data,
		Explanation: explanation,
	}
}

// item returns the elements of a LUT sequence item
func (l LUT) item() []IODElement {
	elements := []IODElement{
		{Tag: tag.LUTDescriptor, Value: l.Descriptor[:]},
		{Tag: tag.LUTData, Value: l.Data},
	}
	if l.Explanation != "" {
		elements = append(elements, IODElement{Tag: tag.LUTExplanation, Value: l.Explanation})
	}
	return elements
}

// Helper functions
func formatDS(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatIS(v int) string {
	return strconv.Itoa(v)
}

func formatMultiValue(values []string) string {
	return strings.Join(values, "\\")
}
