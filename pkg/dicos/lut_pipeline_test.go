package dicos_test

import (
	"bytes"
	"testing"

	"github.com/jpfielding/dicoslut/pkg/dicos"
	"github.com/jpfielding/dicoslut/pkg/dicos/module"
	"github.com/jpfielding/dicoslut/pkg/dicos/transfer"
	"github.com/jpfielding/dicoslut/pkg/lut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAndRead(t *testing.T, ts transfer.Syntax, opts ...dicos.Option) *dicos.Dataset {
	t.Helper()
	opts = append([]dicos.Option{dicos.WithFileMeta(dicos.SecondaryCaptureImageStorageUID, dicos.GenerateUID(), string(ts))}, opts...)
	ds, err := dicos.NewDataset(opts...)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = dicos.Write(&buf, ds)
	require.NoError(t, err)
	got, err := dicos.Parse(&buf)
	require.NoError(t, err)
	return got
}

func storedValue(t *testing.T, ds *dicos.Dataset) lut.StoredValue {
	t.Helper()
	sv, err := dicos.StoredValue(ds)
	require.NoError(t, err)
	return sv
}

func TestPipeline_VOITableAndWindow(t *testing.T) {
	pixels := module.NewImagePixelModule(2, 2, 12, false)
	voi := module.NewVOILUTModule()
	voi.AddWindow(2048, 4096, "")
	voi.AddLUT(module.NewLUT(0, 8, []uint16{0, 64, 128, 255}, ""))

	for _, ts := range []transfer.Syntax{transfer.ExplicitVRLittleEndian, transfer.ExplicitVRBigEndian} {
		t.Run(ts.Name(), func(t *testing.T) {
			ds := writeAndRead(t, ts,
				dicos.WithModule(pixels.ToTags()),
				dicos.WithModule(voi.ToTags()),
				dicos.WithPixelData(2, 2, pixels.BitsAllocated, []uint16{0, 1, 2, 3}),
			)
			attrs := dicos.Attributes(ds)

			f := lut.NewFactory(storedValue(t, ds))
			f.Init(attrs)
			f.SetVOI(attrs, 0, 0, false)
			table, err := f.CreateLUT(8)
			require.NoError(t, err)
			assert.Equal(t, 0, table.Apply(0))
			assert.Equal(t, 64, table.Apply(1))
			assert.Equal(t, 255, table.Apply(3))
			assert.Equal(t, 255, table.Apply(100))

			f.SetVOI(attrs, 0, 0, true)
			table, err = f.CreateLUT(8)
			require.NoError(t, err)
			assert.Equal(t, 0, table.Apply(0))
			assert.Equal(t, 255, table.Apply(4095))
		})
	}
}

func TestPipeline_ModalityTable(t *testing.T) {
	pixels := module.NewImagePixelModule(1, 4, 8, false)
	modality := module.NewModalityTableModule(module.NewLUT(0, 8, []uint16{255, 170, 85, 0}, ""), "")

	ds := writeAndRead(t, transfer.ImplicitVRLittleEndian,
		dicos.WithModule(pixels.ToTags()),
		dicos.WithModule(modality.ToTags()),
		dicos.WithPixelData(1, 4, pixels.BitsAllocated, []uint16{0, 1, 2, 3}),
	)
	f := lut.NewFactory(storedValue(t, ds))
	f.Init(dicos.Attributes(ds))
	require.NotNil(t, f.Pipeline().ModalityLUT)

	table, err := f.CreateLUT(8)
	require.NoError(t, err)
	assert.Equal(t, []int{255, 170, 85, 0}, table.Entries())
}

func TestPipeline_AutoWindowing(t *testing.T) {
	pixels := module.NewImagePixelModule(2, 2, 12, false)
	ds := writeAndRead(t, transfer.ExplicitVRLittleEndian,
		dicos.WithModule(pixels.ToTags()),
		dicos.WithPixelData(2, 2, pixels.BitsAllocated, []uint16{0, 1000, 2000, 4095}),
	)
	attrs := dicos.Attributes(ds)
	buf, err := dicos.GetFrameBuffer(ds, 0)
	require.NoError(t, err)

	f := lut.NewFactory(storedValue(t, ds))
	f.Init(attrs)
	f.SetVOI(attrs, 0, 0, false)
	ok, err := f.AutoWindowing(attrs, buf)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2048.0, f.Pipeline().WindowCenter)
	assert.Equal(t, 4096.0, f.Pipeline().WindowWidth)
}

func TestPipeline_PresentationInverse(t *testing.T) {
	pixels := module.NewImagePixelModule(1, 2, 8, false)
	shape := &module.PresentationLUTModule{Shape: module.ShapeInverse}
	ds := writeAndRead(t, transfer.ExplicitVRLittleEndian,
		dicos.WithModule(pixels.ToTags()),
		dicos.WithModule(shape.ToTags()),
		dicos.WithPixelData(1, 2, pixels.BitsAllocated, []uint16{0, 255}),
	)
	f := lut.NewFactory(storedValue(t, ds))
	f.Init(dicos.Attributes(ds))
	table, err := f.CreateLUT(8)
	require.NoError(t, err)
	assert.Equal(t, 255, table.Apply(0))
	assert.Equal(t, 0, table.Apply(255))
}
