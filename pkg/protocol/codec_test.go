package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := NewMessage(OpCOAO)
	require.NoError(t, m.Encode("bdls", uint8(1), uint16(500), uint32(99999), "pid500"))

	m.Seek(0)
	var b uint8
	var d uint16
	var l uint32
	var s string
	require.NoError(t, m.Decode("bdls", &b, &d, &l, &s))

	assert.Equal(t, uint8(1), b)
	assert.Equal(t, uint16(500), d)
	assert.Equal(t, uint32(99999), l)
	assert.Equal(t, "pid500", s)
}

func TestDecodeWrongPointerTypeIsBadFormat(t *testing.T) {
	m := NewMessage(OpCOAO)
	require.NoError(t, m.Encode("d", uint16(1)))
	m.Seek(0)

	var wrong uint32
	err := m.Decode("d", &wrong)
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestDecodeShortMessageIsShortRead(t *testing.T) {
	m := NewMessage(OpCOAO)
	require.NoError(t, m.Encode("b", uint8(1)))
	m.Seek(0)

	var b uint8
	var d uint16
	err := m.Decode("bd", &b, &d)
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestEncodeUnknownFormatChar(t *testing.T) {
	m := NewMessage(OpCOAO)
	err := m.Encode("z", uint8(1))
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestRERRResponseShape(t *testing.T) {
	m := NewRERR(RERRNotFound, "no such service")
	assert.Equal(t, OpRERR, m.Opcode)

	m.Seek(0)
	var code uint8
	var text string
	require.NoError(t, m.Decode("bs", &code, &text))
	assert.Equal(t, uint8(RERRNotFound), code)
	assert.Equal(t, "no such service", text)
}

func TestNewRERRFromAbort(t *testing.T) {
	abort := NewAbort(RERRNotAuthorised)
	m := NewRERRFromAbort(abort)

	m.Seek(0)
	var code uint8
	var text string
	require.NoError(t, m.Decode("bs", &code, &text))
	assert.Equal(t, uint8(RERRNotAuthorised), code)
	assert.Equal(t, "not authorised", text)
}

func TestOpcodeRequiresAuthPartition(t *testing.T) {
	assert.False(t, OpINFO.RequiresAuth())
	assert.False(t, OpAUTH.RequiresAuth())
	assert.True(t, OpCSPS.RequiresAuth())
	assert.True(t, OpCOAO.RequiresAuth())
}
