package lut

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// maxWindow bounds width/slope and center/slope before they are rounded to
// table positions.
const maxWindow = 1 << 40

// ErrOutBits reports an output bit depth outside 1..16.
var ErrOutBits = errors.New("output bits must be between 1 and 16")

// Pipeline is the complete Modality, VOI and Presentation configuration of
// one image. Build is a pure function of these fields.
type Pipeline struct {
	StoredValue      StoredValue
	RescaleSlope     float64
	RescaleIntercept float64
	ModalityLUT      LUT
	// WindowWidth of 0 means no window was specified.
	WindowCenter    float64
	WindowWidth     float64
	VOILUT          LUT
	PresentationLUT LUT
	Inverse         bool
}

// Build composes the stages into one table producing outBits values.
func (p Pipeline) Build(outBits int) (LUT, error) {
	if outBits < 1 || outBits > 16 {
		return nil, fmt.Errorf("%w: %d", ErrOutBits, outBits)
	}
	if err := checkStoredValue(p.StoredValue); err != nil {
		return nil, err
	}
	// the presentation table's input range dictates the VOI output range
	stageBits := outBits
	if p.PresentationLUT != nil {
		stageBits = log2(p.PresentationLUT.Length())
	}
	l, err := p.combineModalityVOI(stageBits)
	if err != nil {
		return nil, err
	}
	switch {
	case p.PresentationLUT != nil:
		l = l.Combine(p.PresentationLUT.AdjustOutBits(outBits))
	case p.Inverse:
		l = l.Inverse()
	}
	return l, nil
}

func (p Pipeline) combineModalityVOI(outBits int) (LUT, error) {
	if p.VOILUT != nil {
		voi := p.VOILUT.AdjustOutBits(outBits)
		if p.ModalityLUT != nil {
			return p.ModalityLUT.Combine(voi), nil
		}
		return voi, nil
	}
	if p.WindowWidth == 0 && p.ModalityLUT != nil {
		return p.ModalityLUT.AdjustOutBits(outBits), nil
	}

	inBits := p.voiInBits()
	lo, hi := inBits.MinValue(), inBits.MaxValue()
	var window LUT
	if p.WindowWidth != 0 {
		m, b := p.RescaleSlope, p.RescaleIntercept
		size := max(2, abs(round(bound(p.WindowWidth/m))))
		offset := round(bound(p.WindowCenter/m-b)) - size/2
		if size > hi-lo+1 {
			// only the part of the ramp the input domain can reach is kept
			slog.Debug("window wider than the input domain",
				slog.Float64("center", p.WindowCenter),
				slog.Float64("width", p.WindowWidth),
				slog.Int("entries", size))
			window = clippedRamp(inBits, outBits, offset, size, lo, hi)
		} else {
			var err error
			if window, err = NewRamp(inBits, outBits, offset, size); err != nil {
				return nil, err
			}
		}
	} else {
		var err error
		if window, err = NewRamp(inBits, outBits, lo, hi-lo+1); err != nil {
			return nil, err
		}
	}
	if p.ModalityLUT != nil {
		return p.ModalityLUT.Combine(window), nil
	}
	return window, nil
}

// voiInBits is the input domain of the VOI stage: the Modality LUT output
// range when there is one, the stored value domain otherwise.
func (p Pipeline) voiInBits() StoredValue {
	if p.ModalityLUT != nil {
		return NewUnsigned(p.ModalityLUT.OutBits())
	}
	return p.StoredValue
}

func (p Pipeline) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stored=%v rescale=%g/%g", p.StoredValue, p.RescaleSlope, p.RescaleIntercept)
	if p.ModalityLUT != nil {
		fmt.Fprintf(&b, " modality=%v", p.ModalityLUT)
	}
	if p.VOILUT != nil {
		fmt.Fprintf(&b, " voi=%v", p.VOILUT)
	} else {
		fmt.Fprintf(&b, " window=%g/%g", p.WindowCenter, p.WindowWidth)
	}
	if p.PresentationLUT != nil {
		fmt.Fprintf(&b, " presentation=%v", p.PresentationLUT)
	}
	fmt.Fprintf(&b, " inverse=%t", p.Inverse)
	return b.String()
}

// round rounds half up.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func bound(v float64) float64 {
	return math.Max(-maxWindow, math.Min(v, maxWindow))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
