// Package render turns a stored frame into a displayable image by applying a
// composed lookup table to every sample.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/jpfielding/dicoslut/pkg/lut"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrFormat reports an output format other than png or tiff
	ErrFormat = errors.New("unsupported output format")
	// ErrSize reports a buffer that does not hold cols*rows samples
	ErrSize = errors.New("buffer does not match image size")
)

// Image applies table to each sample of buf, a []byte, []int8, []uint16 or
// []int16 frame of cols x rows samples. Tables of 8 output bits or less give
// an *image.Gray, deeper tables an *image.Gray16. Display values are stretched
// to the full range of the image type.
func Image(table lut.LUT, buf any, cols, rows int) (image.Image, error) {
	samples, err := ints(buf)
	if err != nil {
		return nil, err
	}
	if cols <= 0 || rows <= 0 || len(samples) < cols*rows {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrSize, len(samples), cols, rows)
	}

	maxOut := (1 << table.OutBits()) - 1
	rect := image.Rect(0, 0, cols, rows)
	if table.OutBits() <= 8 {
		img := image.NewGray(rect)
		for i, s := range samples[:cols*rows] {
			img.Pix[i] = uint8(stretch(table.Apply(s), maxOut, 0xFF))
		}
		return img, nil
	}
	img := image.NewGray16(rect)
	for i, s := range samples[:cols*rows] {
		v := stretch(table.Apply(s), maxOut, 0xFFFF)
		img.Pix[i*2] = uint8(v >> 8)
		img.Pix[i*2+1] = uint8(v)
	}
	return img, nil
}

func stretch(v, maxOut, maxImg int) int {
	if maxOut == maxImg {
		return v
	}
	return (v*maxImg + maxOut/2) / maxOut
}

func ints(buf any) ([]int, error) {
	var out []int
	switch px := buf.(type) {
	case []byte:
		out = make([]int, len(px))
		for i, p := range px {
			out[i] = int(p)
		}
	case []int8:
		out = make([]int, len(px))
		for i, p := range px {
			out[i] = int(p)
		}
	case []uint16:
		out = make([]int, len(px))
		for i, p := range px {
			out[i] = int(p)
		}
	case []int16:
		out = make([]int, len(px))
		for i, p := range px {
			out[i] = int(p)
		}
	default:
		return nil, fmt.Errorf("%w: %T", lut.ErrUnsupportedBuffer, buf)
	}
	return out, nil
}

// Scale resizes img by factor with Catmull-Rom resampling. A factor of 1
// returns img unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if factor == 1 || factor <= 0 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*factor)))
	h := max(1, int(math.Round(float64(b.Dy())*factor)))
	rect := image.Rect(0, 0, w, h)

	var dst xdraw.Image
	if _, ok := img.(*image.Gray16); ok {
		dst = image.NewGray16(rect)
	} else {
		dst = image.NewGray(rect)
	}
	xdraw.CatmullRom.Scale(dst, rect, img, b, xdraw.Src, nil)
	return dst
}

// Encode writes img as png or tiff. Both keep 16 bit samples.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w: %q", ErrFormat, format)
}

// Summary describes the display values of a rendered image
type Summary struct {
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Summarize computes the range, mean and standard deviation of the gray
// values of img, on the 0..255 scale for Gray and 0..65535 for Gray16.
func Summarize(img image.Image) Summary {
	var vals []float64
	switch g := img.(type) {
	case *image.Gray:
		vals = make([]float64, 0, len(g.Pix))
		for _, p := range g.Pix {
			vals = append(vals, float64(p))
		}
	case *image.Gray16:
		vals = make([]float64, 0, len(g.Pix)/2)
		for i := 0; i+1 < len(g.Pix); i += 2 {
			vals = append(vals, float64(int(g.Pix[i])<<8|int(g.Pix[i+1])))
		}
	default:
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, _, _, _ := img.At(x, y).RGBA()
				vals = append(vals, float64(r))
			}
		}
	}
	if len(vals) == 0 {
		return Summary{}
	}

	s := Summary{Min: math.MaxInt, Max: math.MinInt}
	for _, v := range vals {
		s.Min = min(s.Min, int(v))
		s.Max = max(s.Max, int(v))
	}
	s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
	if len(vals) == 1 {
		s.StdDev = 0
	}
	return s
}
