package lut

import (
	"testing"

	"github.com/jpfielding/dicoslut/pkg/dicos/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor([]int{4, 0xFF9C, 12})
	require.NoError(t, err)
	assert.Equal(t, Descriptor{Length: 4, First: -100, Bits: 12}, d, "first value wraps to a signed short")

	d, err = ParseDescriptor([]int{0, 0, 16})
	require.NoError(t, err)
	assert.Equal(t, 65536, d.Length, "0 entries means 65536")

	_, err = ParseDescriptor([]int{4, 0})
	assert.ErrorIs(t, err, ErrDescriptor)

	_, err = ParseDescriptor([]int{4, 0, 17})
	assert.ErrorIs(t, err, ErrTableBits)
}

func TestFromTable_Words(t *testing.T) {
	desc := Descriptor{Length: 4, First: -100, Bits: 12}

	t.Run("little endian", func(t *testing.T) {
		payload := []byte{0x00, 0x00, 0xE8, 0x03, 0xD0, 0x07, 0xFF, 0x0F}
		l, err := FromTable(NewSigned(16), desc, payload, false)
		require.NoError(t, err)
		require.IsType(t, &ShortLUT{}, l)
		assert.Equal(t, 4, l.Length())
		assert.Equal(t, -100, l.Offset())
		assert.Equal(t, 12, l.OutBits())
		assert.Equal(t, []int{0, 1000, 2000, 4095}, l.Entries())
		assert.Equal(t, 0, l.Apply(-100))
		assert.Equal(t, 2000, l.Apply(-98))
		assert.Equal(t, 4095, l.Apply(5000))
		for _, e := range l.Entries() {
			assert.LessOrEqual(t, e, 4095)
		}
	})

	t.Run("big endian", func(t *testing.T) {
		payload := []byte{0x00, 0x00, 0x03, 0xE8, 0x07, 0xD0, 0x0F, 0xFF}
		l, err := FromTable(NewSigned(16), desc, payload, true)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1000, 2000, 4095}, l.Entries())
	})

	t.Run("entries clamp to the declared depth", func(t *testing.T) {
		payload := []byte{0xFF, 0xFF, 0x00, 0x10, 0x00, 0x00, 0x01, 0x00}
		l, err := FromTable(NewSigned(16), desc, payload, false)
		require.NoError(t, err)
		assert.Equal(t, []int{4095, 4095, 0, 1}, l.Entries())
	})

	t.Run("truncated payload", func(t *testing.T) {
		l, err := FromTable(NewSigned(16), desc, make([]byte, 7), false)
		assert.ErrorIs(t, err, ErrTableData)
		assert.Nil(t, l)
	})
}

func TestFromTable_PaddedBytes(t *testing.T) {
	desc := Descriptor{Length: 2, First: 0, Bits: 8}

	// the value sits in the low byte of each word
	l, err := FromTable(NewUnsigned(8), desc, []byte{0x7F, 0x00, 0xFF, 0x00}, false)
	require.NoError(t, err)
	require.IsType(t, &ByteLUT{}, l)
	assert.Equal(t, []int{0x7F, 0xFF}, l.Entries())

	// big endian words keep the value in the second byte of each pair
	l, err = FromTable(NewUnsigned(8), desc, []byte{0x00, 0x7F, 0x00, 0xFF}, true)
	require.NoError(t, err)
	assert.Equal(t, []int{0x7F, 0xFF}, l.Entries())
}

func TestFromTable_Bytes(t *testing.T) {
	l, err := FromTable(NewUnsigned(8), Descriptor{Length: 3, First: 10, Bits: 8}, []byte{1, 2, 3}, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, l.Entries())
	assert.Equal(t, 2, l.Apply(11))

	_, err = FromTable(NewUnsigned(8), Descriptor{Length: 3, First: 0, Bits: 10}, []byte{1, 2, 3}, false)
	assert.ErrorIs(t, err, ErrTableBits, "byte payloads hold at most 8 bits")

	_, err = FromTable(NewUnsigned(8), Descriptor{Length: 3, First: 0, Bits: 8}, []byte{1, 2, 3, 4, 5}, false)
	assert.ErrorIs(t, err, ErrTableData)
}

func TestHalfLength(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	assert.Equal(t, []byte{1, 3, 5}, halfLength(data, 0))
	assert.Equal(t, []byte{2, 4, 6}, halfLength(data, 1))
}

func TestReadTable(t *testing.T) {
	l, err := ReadTable(NewUnsigned(12), lutItem([]int{3, 0, 16}, 0, 30000, 65535))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 30000, 65535}, l.Entries())

	l, err = ReadTable(NewUnsigned(12), nil)
	assert.NoError(t, err)
	assert.Nil(t, l)

	_, err = ReadTable(NewUnsigned(12), newAttrs(tag.LUTData, []byte{1, 2}))
	assert.ErrorIs(t, err, ErrDescriptor)

	_, err = ReadTable(NewUnsigned(12), newAttrs(tag.LUTDescriptor, []int{2, 0, 8}))
	assert.ErrorIs(t, err, ErrTableData)
}
