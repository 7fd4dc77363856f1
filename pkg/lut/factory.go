package lut

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
)

// ErrUnsupportedBuffer reports a pixel buffer that is neither 8 nor 16 bit.
var ErrUnsupportedBuffer = errors.New("unsupported pixel buffer")

// Factory assembles a Pipeline from image attributes.
//
// Init reads the Modality and Presentation state once; SetVOI, SetWindowCenter,
// SetWindowWidth and AutoWindowing may be called in any order afterwards and
// the last call wins. A Factory is not safe for concurrent use.
type Factory struct {
	p Pipeline
}

// NewFactory creates a factory for images with the given stored value domain.
func NewFactory(storedValue StoredValue) *Factory {
	return &Factory{p: Pipeline{StoredValue: storedValue, RescaleSlope: 1}}
}

// Init reads rescale, Modality LUT, Presentation LUT and the inverse flag.
func (f *Factory) Init(attrs Attributes) {
	f.p.RescaleIntercept = floatOr(attrs, tag.RescaleIntercept, 0)
	f.p.RescaleSlope = floatOr(attrs, tag.RescaleSlope, 1)
	f.p.ModalityLUT = readNestedTable(f.p.StoredValue, attrs, tag.ModalityLUTSequence, 0)
	f.p.PresentationLUT = readPresentationTable(attrs)

	if shape, ok := attrs.String(tag.PresentationLUTShape); ok {
		f.p.Inverse = strings.TrimSpace(shape) == "INVERSE"
	} else {
		pi, _ := attrs.String(tag.PhotometricInterpretation)
		f.p.Inverse = strings.TrimSpace(pi) == "MONOCHROME1"
	}
	// a negative slope reverses the displayed ordering
	if f.p.RescaleSlope < 0 {
		f.p.Inverse = !f.p.Inverse
	}
}

// SetWindowCenter overrides the window center.
func (f *Factory) SetWindowCenter(center float64) {
	f.p.WindowCenter = center
}

// SetWindowWidth overrides the window width; 0 clears the window.
func (f *Factory) SetWindowWidth(width float64) {
	f.p.WindowWidth = width
}

// SetVOI selects the VOI stage from the image attributes.
//
// The table at voiLUTIndex of the VOI LUT Sequence is read first. When
// preferWindow is set, or there is no such table, the window at windowIndex
// of Window Center/Width is adopted if both are long enough and any VOI LUT
// is dropped; otherwise the table (possibly none) becomes the VOI stage.
func (f *Factory) SetVOI(img Attributes, windowIndex, voiLUTIndex int, preferWindow bool) {
	voi := readNestedTable(f.p.voiInBits(), img, tag.VOILUTSequence, voiLUTIndex)
	if preferWindow || voi == nil {
		wcs, okc := img.Floats(tag.WindowCenter)
		wws, okw := img.Floats(tag.WindowWidth)
		if okc && okw && windowIndex >= 0 && windowIndex < len(wcs) && windowIndex < len(wws) {
			f.p.WindowCenter = wcs[windowIndex]
			f.p.WindowWidth = wws[windowIndex]
			f.p.VOILUT = nil
			return
		}
	}
	f.p.VOILUT = voi
}

// CreateLUT builds the composed table for the current state.
func (f *Factory) CreateLUT(outBits int) (LUT, error) {
	return f.p.Build(outBits)
}

// Pipeline returns a snapshot of the current state.
func (f *Factory) Pipeline() Pipeline {
	return f.p
}

// AutoWindowing derives a window from the pixel value range when no Modality
// LUT, VOI LUT or window width is set. The range comes from Smallest/Largest
// Image Pixel Value or, when the largest value is absent or 0, from a scan of
// buf, which must be []byte, []int8, []uint16 or []int16.
func (f *Factory) AutoWindowing(img Attributes, buf any) (bool, error) {
	if f.p.ModalityLUT != nil || f.p.VOILUT != nil || f.p.WindowWidth != 0 {
		return false, nil
	}
	sv := f.p.StoredValue
	if err := checkStoredValue(sv); err != nil {
		return false, err
	}
	lo := sv.ValueOf(intOr(img, tag.SmallestImagePixelValue, 0))
	hi := sv.ValueOf(intOr(img, tag.LargestImagePixelValue, 0))
	if hi == 0 {
		var n int
		var err error
		lo, hi, n, err = scan(sv, buf)
		if err != nil {
			return false, err
		}
		slog.Debug("auto windowing scanned pixel data",
			slog.Int("pixels", n),
			slog.Int("min", lo),
			slog.Int("max", hi))
		if n == 0 {
			return false, nil
		}
	}
	m, b := f.p.RescaleSlope, f.p.RescaleIntercept
	f.p.WindowCenter = float64((lo+hi+1)/2)*m + b
	f.p.WindowWidth = math.Abs(float64(hi+1-lo) * m)
	return true, nil
}

func scan(sv StoredValue, buf any) (lo, hi, n int, err error) {
	lo, hi = math.MaxInt, math.MinInt
	visit := func(raw int) {
		v := sv.ValueOf(raw)
		lo = min(lo, v)
		hi = max(hi, v)
	}
	switch px := buf.(type) {
	case []byte:
		for _, p := range px {
			visit(int(p))
		}
		n = len(px)
	case []int8:
		for _, p := range px {
			visit(int(p))
		}
		n = len(px)
	case []uint16:
		for _, p := range px {
			visit(int(p))
		}
		n = len(px)
	case []int16:
		for _, p := range px {
			visit(int(p))
		}
		n = len(px)
	default:
		return 0, 0, 0, fmt.Errorf("%w: %T", ErrUnsupportedBuffer, buf)
	}
	return lo, hi, n, nil
}

// readNestedTable reads item index of sequence t; malformed or missing tables
// leave the stage absent.
func readNestedTable(inBits StoredValue, attrs Attributes, t tag.Tag, index int) LUT {
	item, ok := attrs.Nested(t, index)
	if !ok {
		return nil
	}
	l, err := ReadTable(inBits, item)
	if err != nil {
		slog.Debug("ignoring LUT", slog.String("sequence", t.String()), slog.Int("item", index), slog.Any("error", err))
		return nil
	}
	return l
}

// readPresentationTable reads the Presentation LUT, whose input domain is
// implied by its length.
func readPresentationTable(attrs Attributes) LUT {
	item, ok := attrs.Nested(tag.PresentationLUTSequence, 0)
	if !ok {
		return nil
	}
	desc, err := readDescriptor(item)
	if err == nil && desc.Length < 2 {
		err = fmt.Errorf("%w: %d entries", ErrDescriptor, desc.Length)
	}
	if err != nil {
		slog.Debug("ignoring presentation LUT", slog.Any("error", err))
		return nil
	}
	l, err := ReadTable(NewUnsigned(log2(desc.Length)), item)
	if err != nil {
		slog.Debug("ignoring presentation LUT", slog.Any("error", err))
		return nil
	}
	return l
}
