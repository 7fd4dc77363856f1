// Package dicos reads and writes the DICOM/DICOS containers that carry
// grayscale images and their lookup table attributes.
//
// It provides:
//   - Low-level parsing and writing (implicit/explicit VR, little and big endian)
//   - Nested sequence items for the Modality, VOI and Presentation LUT modules
//   - Image Pixel module accessors and native frame extraction
//   - An Attributes adapter for the lut package
//
// Basic usage:
//
//	ds, err := dicos.ReadFile("/path/to/file.dcs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sv, err := dicos.StoredValue(ds)
//	if err != nil {
//		log.Fatal(err)
//	}
//	f := lut.NewFactory(sv)
//	f.Init(dicos.Attributes(ds))
package dicos

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
	"github.com/jpfielding/dicoslut/pkg/dicos/transfer"
	"github.com/jpfielding/dicoslut/pkg/lut"
)

// Re-export commonly used types from subpackages
type (
	// TransferSyntax represents a DICOM transfer syntax
	TransferSyntax = transfer.Syntax
)

// Transfer syntax constants
const (
	ExplicitVRLittleEndian = transfer.ExplicitVRLittleEndian
	ImplicitVRLittleEndian = transfer.ImplicitVRLittleEndian
	ExplicitVRBigEndian    = transfer.ExplicitVRBigEndian
)

// SOP Class UIDs for grayscale image storage
const (
	CTImageStorageUID               = "1.2.840.10008.5.1.4.1.1.2"
	DXImageStorageUID               = "1.2.840.10008.5.1.4.1.1.1.1"
	SecondaryCaptureImageStorageUID = "1.2.840.10008.5.1.4.1.1.7"

	// DICOS-specific
	DICOSCTImageStorageUID = "1.2.840.10008.5.1.4.1.1.501.1"
	DICOSDXImageStorageUID = "1.2.840.10008.5.1.4.1.1.501.2"
)

var (
	// ErrNoPixelData reports a dataset without a Pixel Data element
	ErrNoPixelData = errors.New("no pixel data element found")
	// ErrEncapsulated reports compressed pixel data, which is not decoded here
	ErrEncapsulated = errors.New("encapsulated pixel data is not supported")
)

// ReadFile reads a DICOM/DICOS file from disk
func ReadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return ReadBuffer(data)
}

// ReadBuffer reads a DICOM/DICOS file from a byte slice
func ReadBuffer(data []byte) (*Dataset, error) {
	return Parse(bytes.NewReader(data))
}

// GetModality returns the modality string from the dataset
func GetModality(ds *Dataset) string {
	return getString(ds, tag.Modality)
}

// GetTransferSyntax returns the transfer syntax from the dataset
func GetTransferSyntax(ds *Dataset) TransferSyntax {
	if s := getString(ds, tag.TransferSyntaxUID); s != "" {
		return transfer.FromUID(s)
	}
	return ExplicitVRLittleEndian // Default
}

// IsEncapsulated returns true if the pixel data is encapsulated (compressed)
func IsEncapsulated(ds *Dataset) bool {
	return GetTransferSyntax(ds).IsEncapsulated()
}

// GetRows returns the number of rows in the image
func GetRows(ds *Dataset) int {
	return getInt(ds, tag.Rows, 0)
}

// GetColumns returns the number of columns in the image
func GetColumns(ds *Dataset) int {
	return getInt(ds, tag.Columns, 0)
}

// GetNumberOfFrames returns the number of frames in the image
func GetNumberOfFrames(ds *Dataset) int {
	return getInt(ds, tag.NumberOfFrames, 1)
}

// GetBitsAllocated returns the bits allocated per sample
func GetBitsAllocated(ds *Dataset) int {
	return getInt(ds, tag.BitsAllocated, 16)
}

// GetBitsStored returns the bits stored per sample, falling back to Bits Allocated
func GetBitsStored(ds *Dataset) int {
	return getInt(ds, tag.BitsStored, GetBitsAllocated(ds))
}

// GetPixelRepresentation returns 0 for unsigned, 1 for signed
func GetPixelRepresentation(ds *Dataset) int {
	return getInt(ds, tag.PixelRepresentation, 0)
}

// GetPhotometricInterpretation returns MONOCHROME1, MONOCHROME2, etc.
func GetPhotometricInterpretation(ds *Dataset) string {
	return getString(ds, tag.PhotometricInterpretation)
}

// StoredValue returns the stored value domain described by Bits Stored and
// Pixel Representation. Bits Stored outside 1..16 wraps lut.ErrStoredValue.
func StoredValue(ds *Dataset) (lut.StoredValue, error) {
	bits := GetBitsStored(ds)
	if bits < 1 || bits > 16 {
		return nil, fmt.Errorf("%w: bits stored %d", lut.ErrStoredValue, bits)
	}
	return lut.NewStoredValue(bits, GetPixelRepresentation(ds) == 1), nil
}

// GetRescale returns the rescale intercept and slope from the dataset,
// defaulting to 0 and 1.
func GetRescale(ds *Dataset) (intercept, slope float64) {
	intercept, slope = 0, 1
	if elem, ok := ds.Find(tag.RescaleIntercept); ok {
		if vs, ok := elem.GetFloats(); ok && len(vs) > 0 {
			intercept = vs[0]
		}
	}
	if elem, ok := ds.Find(tag.RescaleSlope); ok {
		if vs, ok := elem.GetFloats(); ok && len(vs) > 0 {
			slope = vs[0]
		}
	}
	return
}

// GetFrameBuffer returns the native samples of one frame: []byte when
// Bits Allocated is 8 or less, []uint16 otherwise.
func GetFrameBuffer(ds *Dataset, frame int) (any, error) {
	elem, ok := ds.Find(tag.PixelData)
	if !ok {
		return nil, ErrNoPixelData
	}

	pixels := GetRows(ds) * GetColumns(ds)
	if pixels == 0 {
		return nil, fmt.Errorf("invalid dimensions for pixel data: %dx%d", GetColumns(ds), GetRows(ds))
	}
	if frame < 0 || frame >= GetNumberOfFrames(ds) {
		return nil, fmt.Errorf("frame %d out of range [0,%d)", frame, GetNumberOfFrames(ds))
	}
	wide := GetBitsAllocated(ds) > 8

	switch v := elem.Value.(type) {
	case *PixelData:
		if v.IsEncapsulated {
			return nil, ErrEncapsulated
		}
		if frame >= len(v.Frames) || len(v.Frames[frame].Data) < pixels {
			return nil, fmt.Errorf("pixel data truncated at frame %d", frame)
		}
		data := v.Frames[frame].Data[:pixels]
		if wide {
			return data, nil
		}
		out := make([]byte, pixels)
		for i, s := range data {
			out[i] = byte(s)
		}
		return out, nil
	case []byte:
		if !wide {
			start := frame * pixels
			if start+pixels > len(v) {
				return nil, fmt.Errorf("pixel data truncated: need %d bytes, have %d", start+pixels, len(v))
			}
			return v[start : start+pixels], nil
		}
		start := frame * pixels * 2
		if start+pixels*2 > len(v) {
			return nil, fmt.Errorf("pixel data truncated: need %d bytes, have %d", start+pixels*2, len(v))
		}
		order := ds.ByteOrder()
		out := make([]uint16, pixels)
		for i := range out {
			out[i] = order.Uint16(v[start+i*2:])
		}
		return out, nil
	case []uint16:
		start := frame * pixels
		if start+pixels > len(v) {
			return nil, fmt.Errorf("pixel data truncated: need %d samples, have %d", start+pixels, len(v))
		}
		return v[start : start+pixels], nil
	}
	return nil, fmt.Errorf("pixel data element has unexpected type: %T", elem.Value)
}

// GetPixelData extracts native pixel data from the dataset as 16 bit frames
func (ds *Dataset) GetPixelData() (*PixelData, error) {
	elem, ok := ds.Find(tag.PixelData)
	if !ok {
		return nil, ErrNoPixelData
	}
	if pd, ok := elem.GetPixelData(); ok {
		return pd, nil
	}

	pd := &PixelData{Frames: make([]Frame, GetNumberOfFrames(ds))}
	for i := range pd.Frames {
		buf, err := GetFrameBuffer(ds, i)
		if err != nil {
			return nil, err
		}
		switch b := buf.(type) {
		case []uint16:
			pd.Frames[i].Data = append([]uint16(nil), b...)
		case []byte:
			data := make([]uint16, len(b))
			for j, s := range b {
				data[j] = uint16(s)
			}
			pd.Frames[i].Data = data
		}
	}
	return pd, nil
}

func getString(ds *Dataset, t Tag) string {
	if elem, ok := ds.Find(t); ok {
		if s, ok := elem.GetString(); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func getInt(ds *Dataset, t Tag, def int) int {
	if elem, ok := ds.Find(t); ok {
		if v, ok := elem.GetInt(); ok {
			return v
		}
	}
	return def
}
