package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	out := NewMessage(OpCSPS)
	require.NoError(t, out.PutString("dvb-t"))
	require.NoError(t, out.PutByte(3))

	var buf bytes.Buffer
	require.NoError(t, Send(&buf, out))

	in, err := Recv(&buf)
	require.NoError(t, err)
	assert.Equal(t, OpCSPS, in.Opcode)

	name, err := in.GetString()
	require.NoError(t, err)
	assert.Equal(t, "dvb-t", name)

	adapter, err := in.GetByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(3), adapter)
}

func TestRecvShortHeaderIsError(t *testing.T) {
	buf := bytes.NewReader([]byte{0x00, 0x01})
	_, err := Recv(buf)
	assert.Error(t, err)
}

func TestRecvTruncatedPayloadIsError(t *testing.T) {
	var hdr [4]byte
	hdr[2], hdr[3] = 0x00, 0x10
	buf := bytes.NewReader(append(hdr[:], []byte{0x01, 0x02}...))
	_, err := Recv(buf)
	assert.Error(t, err)
}

func TestStringBoundsRejectsOversize(t *testing.T) {
	m := NewMessage(OpINFO)
	long := make([]byte, 256)
	err := m.PutString(string(long))
	assert.ErrorIs(t, err, ErrStringTooLong)
}

func TestStringBoundsAcceptsMax(t *testing.T) {
	m := NewMessage(OpINFO)
	max := make([]byte, 255)
	for i := range max {
		max[i] = 'x'
	}
	require.NoError(t, m.PutString(string(max)))
	m.Seek(0)
	got, err := m.GetString()
	require.NoError(t, err)
	assert.Equal(t, string(max), got)
}

func TestBackPatchedCount(t *testing.T) {
	m := NewMessage(OpSOLP)
	countPos := m.Cursor()
	require.NoError(t, m.PutUint16(0))

	names := []string{"first", "second", "third"}
	for _, n := range names {
		require.NoError(t, m.PutString(n))
	}

	end := m.Cursor()
	require.NoError(t, m.Seek(countPos))
	require.NoError(t, m.PutUint16(uint16(len(names))))
	require.NoError(t, m.Seek(end))

	m.Seek(0)
	count, err := m.GetUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(3), count)

	for _, want := range names {
		got, err := m.GetString()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestResetReusesBackingArray(t *testing.T) {
	m := NewMessage(OpAUTH)
	require.NoError(t, m.PutString("hunter2"))
	assert.Equal(t, 8, m.Len())

	m.Reset(OpQUOT)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, m.Cursor())
	assert.Equal(t, OpQUOT, m.Opcode)
}

func TestPayloadTooBigRejected(t *testing.T) {
	m := NewMessage(OpINFO)
	huge := make([]byte, MaxPayload)
	m.cursor = MaxPayload - 1
	m.length = MaxPayload - 1
	err := m.PutString(string(huge[:10]))
	assert.Error(t, err)
}
