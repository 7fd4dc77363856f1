package dicos

import (
	"testing"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
	"github.com/jpfielding/dicoslut/pkg/lut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageDataset(rows, cols, bitsAllocated int, frames int, value interface{}) *Dataset {
	ds := &Dataset{Elements: map[Tag]*Element{
		tag.Rows:          {Tag: tag.Rows, VR: "US", Value: uint16(rows)},
		tag.Columns:       {Tag: tag.Columns, VR: "US", Value: uint16(cols)},
		tag.BitsAllocated: {Tag: tag.BitsAllocated, VR: "US", Value: uint16(bitsAllocated)},
		tag.PixelData:     {Tag: tag.PixelData, VR: "OW", Value: value},
	}}
	if frames > 1 {
		ds.Elements[tag.NumberOfFrames] = &Element{Tag: tag.NumberOfFrames, VR: "IS", Value: "2"}
	}
	return ds
}

func TestGetFrameBuffer_Frames(t *testing.T) {
	ds := imageDataset(1, 2, 16, 2, &PixelData{Frames: []Frame{
		{Data: []uint16{1, 2}},
		{Data: []uint16{3, 4}},
	}})

	buf, err := GetFrameBuffer(ds, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint16{3, 4}, buf)

	_, err = GetFrameBuffer(ds, 2)
	assert.Error(t, err)
	_, err = GetFrameBuffer(ds, -1)
	assert.Error(t, err)
}

func TestGetFrameBuffer_RawWords(t *testing.T) {
	le := imageDataset(1, 2, 16, 1, []byte{0x01, 0x02, 0x03, 0x04})
	buf, err := GetFrameBuffer(le, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0201, 0x0403}, buf)

	be := imageDataset(1, 2, 16, 1, []byte{0x01, 0x02, 0x03, 0x04})
	be.BigEndian = true
	buf, err = GetFrameBuffer(be, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0102, 0x0304}, buf)
}

func TestGetFrameBuffer_Bytes(t *testing.T) {
	ds := imageDataset(2, 2, 8, 2, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	buf, err := GetFrameBuffer(ds, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 6, 7, 8}, buf)

	short := imageDataset(2, 2, 8, 2, []byte{1, 2, 3, 4, 5})
	_, err = GetFrameBuffer(short, 1)
	assert.Error(t, err)
}

func TestGetFrameBuffer_Errors(t *testing.T) {
	_, err := GetFrameBuffer(&Dataset{Elements: map[Tag]*Element{}}, 0)
	assert.ErrorIs(t, err, ErrNoPixelData)

	enc := imageDataset(1, 1, 16, 1, &PixelData{
		IsEncapsulated: true,
		Frames:         []Frame{{CompressedData: []byte{0xFF, 0xD8}}},
	})
	_, err = GetFrameBuffer(enc, 0)
	assert.ErrorIs(t, err, ErrEncapsulated)

	noDims := imageDataset(0, 0, 16, 1, []uint16{1})
	_, err = GetFrameBuffer(noDims, 0)
	assert.Error(t, err)
}

func TestDataset_GetPixelData(t *testing.T) {
	ds := imageDataset(1, 2, 8, 1, []byte{7, 9})
	pd, err := ds.GetPixelData()
	require.NoError(t, err)
	require.Len(t, pd.Frames, 1)
	assert.Equal(t, []uint16{7, 9}, pd.Frames[0].Data)
}

func TestStoredValue(t *testing.T) {
	ds := imageDataset(1, 1, 16, 1, []uint16{0})
	ds.Elements[tag.BitsStored] = &Element{Tag: tag.BitsStored, VR: "US", Value: uint16(12)}
	sv, err := StoredValue(ds)
	require.NoError(t, err)
	assert.Equal(t, lut.NewUnsigned(12), sv)

	ds.Elements[tag.PixelRepresentation] = &Element{Tag: tag.PixelRepresentation, VR: "US", Value: uint16(1)}
	sv, err = StoredValue(ds)
	require.NoError(t, err)
	assert.Equal(t, -2048, sv.MinValue())

	for _, bits := range []uint16{0, 17, 32} {
		ds.Elements[tag.BitsStored] = &Element{Tag: tag.BitsStored, VR: "US", Value: bits}
		sv, err = StoredValue(ds)
		assert.ErrorIs(t, err, lut.ErrStoredValue, "bits stored %d", bits)
		assert.Nil(t, sv)
	}
}
