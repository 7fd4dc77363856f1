package dicos

import (
	"bytes"
	"testing"

	"github.com/jpfielding/dicoslut/pkg/dicos/module"
	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
	"github.com/jpfielding/dicoslut/pkg/dicos/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lutImage(t *testing.T, ts transfer.Syntax) *Dataset {
	t.Helper()
	pixels := module.NewImagePixelModule(2, 2, 12, false)
	voi := module.NewVOILUTModule()
	voi.AddWindow(2048, 4096, "FULL")
	voi.AddLUT(module.NewLUT(0, 8, []uint16{0, 64, 128, 255}, "STEP"))
	modality := module.NewModalityTableModule(module.NewLUT(0, 12, []uint16{10, 20, 30, 4095}, ""), "OD")

	ds, err := NewDataset(
		WithFileMeta(SecondaryCaptureImageStorageUID, "1.2.3.4", string(ts)),
		WithModule(pixels.ToTags()),
		WithModule(voi.ToTags()),
		WithModule(modality.ToTags()),
		WithPixelData(2, 2, pixels.BitsAllocated, []uint16{0, 1000, 2000, 4095}),
	)
	require.NoError(t, err)
	return ds
}

func roundTrip(t *testing.T, ds *Dataset) *Dataset {
	t.Helper()
	var buf bytes.Buffer
	n, err := Write(&buf, ds)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	got, err := Parse(&buf)
	require.NoError(t, err)
	return got
}

func TestRoundTrip_TransferSyntaxes(t *testing.T) {
	for _, ts := range []transfer.Syntax{
		transfer.ExplicitVRLittleEndian,
		transfer.ImplicitVRLittleEndian,
		transfer.ExplicitVRBigEndian,
	} {
		t.Run(ts.Name(), func(t *testing.T) {
			got := roundTrip(t, lutImage(t, ts))

			assert.Equal(t, ts, GetTransferSyntax(got))
			assert.Equal(t, !ts.IsLittleEndian(), got.BigEndian)
			assert.Equal(t, 2, GetRows(got))
			assert.Equal(t, 2, GetColumns(got))
			assert.Equal(t, 16, GetBitsAllocated(got))
			assert.Equal(t, 12, GetBitsStored(got))

			centers, ok := got.Elements[tag.WindowCenter].GetFloats()
			require.True(t, ok)
			assert.Equal(t, []float64{2048}, centers)

			buf, err := GetFrameBuffer(got, 0)
			require.NoError(t, err)
			assert.Equal(t, []uint16{0, 1000, 2000, 4095}, buf)

			items := GetSequenceItems(got, tag.VOILUTSequence)
			require.Len(t, items, 1)
			assert.Equal(t, got.BigEndian, items[0].BigEndian)
			desc, ok := items[0].Elements[tag.LUTDescriptor].GetInts()
			require.True(t, ok)
			assert.Equal(t, []int{4, 0, 8}, desc)

			modality := GetSequenceItems(got, tag.ModalityLUTSequence)
			require.Len(t, modality, 1)
			lutType, _ := modality[0].Elements[tag.ModalityLUTType].GetString()
			assert.Equal(t, "OD", lutType)
		})
	}
}

func TestRoundTrip_EightBitPixels(t *testing.T) {
	pixels := module.NewImagePixelModule(1, 3, 8, false)
	ds, err := NewDataset(
		WithFileMeta(SecondaryCaptureImageStorageUID, "1.2.3.5", string(transfer.ExplicitVRLittleEndian)),
		WithModule(pixels.ToTags()),
		WithPixelData(1, 3, pixels.BitsAllocated, []uint16{1, 2, 3}),
	)
	require.NoError(t, err)

	got := roundTrip(t, ds)
	buf, err := GetFrameBuffer(got, 0)
	require.NoError(t, err)
	// odd length OB is padded on write, the frame only takes what it needs
	assert.Equal(t, []byte{1, 2, 3}, buf)
}

func TestRoundTrip_NoFileMeta(t *testing.T) {
	ds, err := NewDataset(
		WithElement(tag.Rows, uint16(4)),
		WithElement(tag.WindowCenter, "40\\400"),
	)
	require.NoError(t, err)

	got := roundTrip(t, ds)
	assert.Equal(t, 4, GetRows(got))
	assert.False(t, got.BigEndian)
	centers, ok := got.Elements[tag.WindowCenter].GetFloats()
	require.True(t, ok)
	assert.Equal(t, []float64{40, 400}, centers)
}

func TestParse_UndefinedLengthItem(t *testing.T) {
	var body bytes.Buffer
	body.Write(make([]byte, 128))
	body.WriteString("DICM")
	// (0002,0010) UI "1.2.840.10008.1.2.1\x00"
	body.Write([]byte{0x02, 0x00, 0x10, 0x00, 'U', 'I', 20, 0})
	body.WriteString("1.2.840.10008.1.2.1\x00")
	// (0028,3010) SQ, reserved, length 26
	body.Write([]byte{0x28, 0x00, 0x10, 0x30, 'S', 'Q', 0, 0, 26, 0, 0, 0})
	// item of undefined length
	body.Write([]byte{0xFE, 0xFF, 0x00, 0xE0, 0xFF, 0xFF, 0xFF, 0xFF})
	// (0028,3003) LO "AB"
	body.Write([]byte{0x28, 0x00, 0x03, 0x30, 'L', 'O', 2, 0, 'A', 'B'})
	// item delimitation
	body.Write([]byte{0xFE, 0xFF, 0x0D, 0xE0, 0, 0, 0, 0})
	// (0028,0010) US 7
	body.Write([]byte{0x28, 0x00, 0x10, 0x00, 'U', 'S', 2, 0, 7, 0})

	ds, err := Parse(&body)
	require.NoError(t, err)
	assert.Equal(t, 7, GetRows(ds))

	items := GetSequenceItems(ds, tag.VOILUTSequence)
	require.Len(t, items, 1)
	explanation, _ := items[0].Elements[tag.LUTExplanation].GetString()
	assert.Equal(t, "AB", explanation)
}

func TestParse_MissingMagic(t *testing.T) {
	_, err := Parse(bytes.NewReader(make([]byte, 200)))
	assert.Error(t, err)
}

func TestWrite_ShortVRTooLong(t *testing.T) {
	ds, err := NewDataset(
		WithFileMeta(SecondaryCaptureImageStorageUID, "1.2.3.6", string(transfer.ExplicitVRLittleEndian)),
		WithElement(tag.LUTDescriptor, make([]int, 40000)),
	)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = Write(&buf, ds)
	assert.Error(t, err)
}
