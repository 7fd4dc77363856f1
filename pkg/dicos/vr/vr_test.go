package vr

import (
	"testing"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
	"github.com/stretchr/testify/assert"
)

func TestForTag(t *testing.T) {
	assert.Equal(t, UL, ForTag(tag.FileMetaInformationGroupLength))
	assert.Equal(t, OB, ForTag(tag.FileMetaInformationVersion))
	assert.Equal(t, UI, ForTag(tag.TransferSyntaxUID))
	assert.Equal(t, SH, ForTag(tag.ImplementationVersionName))

	assert.Equal(t, US, ForTag(tag.LUTDescriptor))
	assert.Equal(t, OW, ForTag(tag.LUTData))
	assert.Equal(t, SQ, ForTag(tag.VOILUTSequence))
	assert.Equal(t, DS, ForTag(tag.WindowCenter))
	assert.Equal(t, UN, ForTag(tag.Tag{Group: 0x0009, Element: 0x1001}))
}

func TestVR_Properties(t *testing.T) {
	assert.True(t, OW.IsLongLength())
	assert.True(t, SQ.IsLongLength())
	assert.False(t, US.IsLongLength())

	assert.True(t, DS.IsString())
	assert.False(t, OB.IsString())

	assert.Equal(t, byte(' '), LO.Padding())
	assert.Equal(t, byte(0), UI.Padding())
	assert.Equal(t, byte(0), OB.Padding())

	assert.Equal(t, 2, US.ValueSize())
	assert.Equal(t, 8, FD.ValueSize())
	assert.Equal(t, 0, DS.ValueSize())
}
