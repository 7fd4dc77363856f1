package cmd

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/jpfielding/dicoslut/pkg/config"
	"github.com/jpfielding/dicoslut/pkg/dicos"
	"github.com/jpfielding/dicoslut/pkg/dicos/module"
	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
	"github.com/jpfielding/dicoslut/pkg/lut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeImage stores a 2x2 12 bit MONOCHROME2 image with a soft tissue window;
// opts are applied last and may replace any of its attributes
func writeImage(t *testing.T, dir string, opts ...dicos.Option) string {
	t.Helper()
	pixels := module.NewImagePixelModule(2, 2, 12, false)
	voi := module.NewVOILUTModule()
	voi.AddWindow(2048, 4096, "FULL")
	voi.AddLUT(module.NewLUT(0, 8, []uint16{0, 64, 128, 255}, "STEP"))
	ds, err := dicos.NewDataset(append([]dicos.Option{
		dicos.WithFileMeta(dicos.SecondaryCaptureImageStorageUID, dicos.GenerateUID(), string(dicos.ExplicitVRLittleEndian)),
		dicos.WithModule(pixels.ToTags()),
		dicos.WithModule(voi.ToTags()),
		dicos.WithPixelData(2, 2, pixels.BitsAllocated, []uint16{0, 1, 2, 4095}),
	}, opts...)...)
	require.NoError(t, err)

	path := filepath.Join(dir, "image.dcs")
	_, err = dicos.WriteFile(path, ds)
	require.NoError(t, err)
	return path
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestRender_Window(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir)
	out := filepath.Join(dir, "window.png")

	root := NewRoot(context.Background(), "test")
	root.SetArgs([]string{"render", "--file", in, "--out", out})
	require.NoError(t, root.Execute())

	img := readPNG(t, out)
	g, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, []uint8{0, 0, 0, 255}, g.Pix)
}

func TestRender_VOITableFromConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir)
	out := filepath.Join(dir, "table.png")

	cfg := config.DefaultRender()
	cfg.PreferWindow = false
	cfgPath := filepath.Join(dir, "render.yaml")
	require.NoError(t, config.SaveRender(cfg, cfgPath))

	root := NewRoot(context.Background(), "test")
	root.SetArgs([]string{"render", in, "--config", cfgPath, "--out", out})
	require.NoError(t, root.Execute())

	g := readPNG(t, out).(*image.Gray)
	assert.Equal(t, []uint8{0, 64, 128, 255}, g.Pix)
}

func TestRender_SixteenBitTIFF(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir)
	out := filepath.Join(dir, "deep.tiff")

	root := NewRoot(context.Background(), "test")
	root.SetArgs([]string{"render", "--file", in, "--out", out, "--bits", "16", "--format", "tiff", "--width", "100", "--center", "50"})
	require.NoError(t, root.Execute())

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRender_BadFlags(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir)

	root := NewRoot(context.Background(), "test")
	root.SetArgs([]string{"render", "--file", in, "--bits", "20"})
	assert.Error(t, root.Execute())

	root = NewRoot(context.Background(), "test")
	root.SetArgs([]string{"render"})
	assert.Error(t, root.Execute())

	root = NewRoot(context.Background(), "test")
	root.SetArgs([]string{"render", "--file", in, "--center", "50"})
	assert.ErrorContains(t, root.Execute(), "without a width")
}

func TestRender_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir)
	saved := filepath.Join(dir, "presets", "render.yaml")

	root := NewRoot(context.Background(), "test")
	root.SetArgs([]string{"render", "--file", in, "--out", filepath.Join(dir, "a.png"),
		"--prefer-window=false", "--save-config", saved})
	require.NoError(t, root.Execute())

	cfg, err := config.LoadRender(saved)
	require.NoError(t, err)
	assert.False(t, cfg.PreferWindow)
	assert.Equal(t, 8, cfg.OutBits)

	// the saved presets reproduce the render
	out := filepath.Join(dir, "b.png")
	root = NewRoot(context.Background(), "test")
	root.SetArgs([]string{"render", "--file", in, "--config", saved, "--out", out})
	require.NoError(t, root.Execute())
	assert.Equal(t, []uint8{0, 64, 128, 255}, readPNG(t, out).(*image.Gray).Pix)
}

func TestRender_InvalidBitsStored(t *testing.T) {
	cases := []struct {
		name string
		opts []dicos.Option
	}{
		{"zero unsigned", []dicos.Option{dicos.WithElement(tag.BitsStored, uint16(0))}},
		{"zero signed", []dicos.Option{
			dicos.WithElement(tag.BitsStored, uint16(0)),
			dicos.WithElement(tag.PixelRepresentation, uint16(1)),
		}},
		{"wider than 16", []dicos.Option{dicos.WithElement(tag.BitsStored, uint16(32))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			in := writeImage(t, dir, tc.opts...)

			root := NewRoot(context.Background(), "test")
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs([]string{"render", "--file", in, "--out", filepath.Join(dir, "bad.png")})
			assert.ErrorIs(t, root.Execute(), lut.ErrStoredValue)

			var out bytes.Buffer
			root = NewRoot(context.Background(), "test")
			root.SetOut(&out)
			root.SetArgs([]string{"analyze", "--file", in})
			require.NoError(t, root.Execute())
			assert.Contains(t, out.String(), "No pipeline:")
		})
	}
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir)

	var out bytes.Buffer
	root := NewRoot(context.Background(), "test")
	root.SetOut(&out)
	root.SetArgs([]string{"analyze", "--file", in})
	require.NoError(t, root.Execute())

	text := out.String()
	assert.Contains(t, text, "StoredValue: unsigned(12)")
	assert.Contains(t, text, "VOI LUT[0]: descriptor=[4 0 8] explanation=\"STEP\" (ok)")
	assert.Contains(t, text, "Valid: true")
	assert.Contains(t, text, "window=2048/4096")
}

func TestDecode_Text(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir)

	var out bytes.Buffer
	root := NewRoot(context.Background(), "test")
	root.SetOut(&out)
	root.SetArgs([]string{"decode", "--uri", "file://" + in, "--format", "text"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "> item 0")
}
