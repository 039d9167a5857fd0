package der

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTagAndLengthShortForm(t *testing.T) {
	// SEQUENCE { INTEGER 1 } = 30 03 02 01 01
	buf := []byte{0x30, 0x03, 0x02, 0x01, 0x01}
	c := NewCursor(buf)
	tagByte, off, n, tlv, err := ReadTagAndLength(c, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x30), tagByte)
	assert.Equal(t, 2, off)
	assert.Equal(t, 3, n)
	assert.Equal(t, 5, tlv)
}

func TestReadTagAndLengthLongForm(t *testing.T) {
	content := make([]byte, 200)
	buf := append([]byte{0x04, 0x81, 0xC8}, content...)
	tagByte, off, n, tlv, err := ReadTagAndLength(NewCursor(buf), 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), tagByte)
	assert.Equal(t, 3, off)
	assert.Equal(t, 200, n)
	assert.Equal(t, 203, tlv)
}

func TestReadTagAndLengthRejectsTooManyLengthOctets(t *testing.T) {
	buf := []byte{0x30, 0x85, 1, 2, 3, 4, 5}
	_, _, _, _, err := ReadTagAndLength(NewCursor(buf), 0)
	assert.ErrorIs(t, err, ErrLengthOverflow)
}

func TestWalkBindRequestLikeFields(t *testing.T) {
	// version INTEGER 3, name OCTET STRING "cn=admin", raw ANY [0] "secret"
	buf := []byte{
		0x02, 0x01, 0x03,
		0x04, 0x08, 'c', 'n', '=', 'a', 'd', 'm', 'i', 'n',
		0x80, 0x06, 's', 'e', 'c', 'r', 'e', 't',
	}
	prog := Program{
		{ExpectTag: tag(0x02), Store: StoreContent},
		{ExpectTag: tag(0x04), Store: StoreContent},
		{Store: StoreContent},
	}
	out := make([]Cursor, len(prog))
	require.NoError(t, Walk(NewCursor(buf), prog, out))
	assert.Equal(t, []byte{0x03}, out[0].Bytes())
	assert.Equal(t, "cn=admin", string(out[1].Bytes()))
	assert.Equal(t, "secret", string(out[2].Bytes()))
}

func TestWalkOptionalFieldMissingIsNull(t *testing.T) {
	buf := []byte{0x02, 0x01, 0x05}
	prog := Program{
		{ExpectTag: tag(0x02), Store: StoreContent},
		{ExpectTag: tag(0xA0), Store: StoreRaw, Optional: true},
	}
	out := make([]Cursor, len(prog))
	require.NoError(t, Walk(NewCursor(buf), prog, out))
	assert.True(t, out[1].IsNull())
}

func TestWalkMandatoryFieldMissingErrors(t *testing.T) {
	buf := []byte{}
	prog := Program{{ExpectTag: tag(0x02), Store: StoreContent}}
	out := make([]Cursor, len(prog))
	err := Walk(NewCursor(buf), prog, out)
	assert.Error(t, err)
}

func TestDecodeUint31MasksSignBit(t *testing.T) {
	v, err := DecodeUint31(NewCursor([]byte{0xFF, 0xFF, 0xFF, 0xFF}))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x7FFFFFFF), v)
}

func TestEncodeDecodeIntRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 32767, 32768, 1 << 24, 0x7FFFFFFF} {
		enc := EncodeMinimalInt(nil, v)
		assert.Equal(t, MinimalIntLen(v), len(enc))
		got, err := DecodeUint31(NewCursor(enc))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestAppendLengthShortAndLongForm(t *testing.T) {
	assert.Equal(t, []byte{0x05}, AppendLength(nil, 5))
	assert.Equal(t, 1, LengthPrefixLen(5))

	long := AppendLength(nil, 300)
	assert.Equal(t, []byte{0x82, 0x01, 0x2C}, long)
	assert.Equal(t, 3, LengthPrefixLen(300))
}

func TestEnterSequence(t *testing.T) {
	buf := []byte{0x30, 0x03, 0x02, 0x01, 0x01}
	inner, err := EnterSequence(NewCursor(buf))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01, 0x01}, inner.Bytes())
}
