package carousel

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	stored map[uint16][]byte
}

func newFakeSink() *fakeSink {
	return &fakeSink{stored: make(map[uint16][]byte)}
}

func (f *fakeSink) Store(carouselID uint32, moduleID uint16, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.stored[moduleID] = cp
	return nil
}

func newTestAssembler() (*Assembler, *fakeSink) {
	sink := newFakeSink()
	return NewAssembler(sink, nil, nil), sink
}

// TestDSIBootstrapsCarousel covers the gateway-first bootstrap path: a DSI
// with carousel id 0 (host hasn't resolved a PID to an id yet) adopts the
// id carried in its own IOR and queues a subscription request.
func TestDSIBootstrapsCarousel(t *testing.T) {
	a, _ := newTestAssembler()

	section := buildDSISection(0, iorBytes(0x4242, 0, 0x0010))
	ok := a.ProcessSection(section)
	require.True(t, ok)

	car := a.registry.FindByID(0x4242)
	require.NotNil(t, car)
	assert.NotNil(t, car.Gateway)
	assert.Equal(t, 1, a.subscription.Len())
}

// TestDIIThenDDBsInReverseOrder is scenario S4: a DII announces a module,
// then its blocks arrive out of order and the module still assembles
// byte-correctly.
func TestDIIThenDDBsInReverseOrder(t *testing.T) {
	a, sink := newTestAssembler()

	require.True(t, a.ProcessSection(buildDSISection(0x10, iorBytes(0x10, 0, 0x01))))

	info := moduleInfoBytes(0x02, nil)
	entry := diiModuleEntry(7, 6, 1, info)
	require.True(t, a.ProcessSection(buildDIISection(0x10, 3, entry, 1)))

	block0 := []byte{'a', 'b', 'c'}
	block1 := []byte{'d', 'e', 'f'}

	require.True(t, a.ProcessSection(buildDDBSection(0x10, 7, 1, 1, block1)))
	assert.Empty(t, sink.stored[7], "module must not be cached before every block arrives")

	require.True(t, a.ProcessSection(buildDDBSection(0x10, 7, 1, 0, block0)))
	require.Equal(t, []byte("abcdef"), sink.stored[7])
}

// TestDuplicateDDBIsIdempotent is scenario S5: a repeated block must not
// double-count toward completion or corrupt the assembled buffer.
func TestDuplicateDDBIsIdempotent(t *testing.T) {
	a, sink := newTestAssembler()

	require.True(t, a.ProcessSection(buildDSISection(0x20, iorBytes(0x20, 0, 0x01))))
	info := moduleInfoBytes(0x02, nil)
	entry := diiModuleEntry(9, 4, 1, info)
	require.True(t, a.ProcessSection(buildDIISection(0x20, 4, entry, 1)))

	payload := []byte{'w', 'x', 'y', 'z'}
	require.True(t, a.ProcessSection(buildDDBSection(0x20, 9, 1, 0, payload)))
	require.True(t, a.ProcessSection(buildDDBSection(0x20, 9, 1, 0, payload)))

	assert.Equal(t, []byte("wxyz"), sink.stored[9])
}

// TestVersionChangeSupersedesModule is testable property #8: a DII that
// bumps a module's version drops the stale in-progress record.
func TestVersionChangeSupersedesModule(t *testing.T) {
	a, sink := newTestAssembler()

	require.True(t, a.ProcessSection(buildDSISection(0x30, iorBytes(0x30, 0, 0x01))))
	info := moduleInfoBytes(0x02, nil)

	entryV1 := diiModuleEntry(1, 8, 1, info)
	require.True(t, a.ProcessSection(buildDIISection(0x30, 4, entryV1, 1)))
	require.True(t, a.ProcessSection(buildDDBSection(0x30, 1, 1, 0, []byte{1, 2, 3, 4})))

	entryV2 := diiModuleEntry(1, 4, 2, info)
	require.True(t, a.ProcessSection(buildDIISection(0x30, 4, entryV2, 1)))

	// The stale v1 block for a module now at v2 must be rejected.
	require.True(t, a.ProcessSection(buildDDBSection(0x30, 1, 1, 1, []byte{5, 6, 7, 8})))
	assert.Empty(t, sink.stored[1])

	require.True(t, a.ProcessSection(buildDDBSection(0x30, 1, 2, 0, []byte{9, 9, 9, 9})))
	assert.Equal(t, []byte{9, 9, 9, 9}, sink.stored[1])
}

// TestCorruptedCRCIsDropped is scenario S6 / testable property #9.
func TestCorruptedCRCIsDropped(t *testing.T) {
	a, _ := newTestAssembler()

	section := buildDSISection(0x40, iorBytes(0x40, 0, 0x01))
	section[len(section)-1] ^= 0xFF // flip a trailer bit

	ok := a.ProcessSection(section)
	assert.False(t, ok)
	assert.Nil(t, a.registry.FindByID(0x40))
}

// TestShortSectionIsDropped covers the length-mismatch guard ahead of CRC
// validation.
func TestShortSectionIsDropped(t *testing.T) {
	a, _ := newTestAssembler()
	assert.False(t, a.ProcessSection([]byte{0x3B, 0x00, 0x05, 0x00}))
}

// TestSubscriptionDedup is testable property #10: the same (carousel,
// tag) pair queued twice only appears once.
func TestSubscriptionDedup(t *testing.T) {
	s := NewSubscription(nil)
	s.Add(1, 2)
	s.Add(1, 2)
	s.Add(1, 3)
	assert.Equal(t, 2, s.Len())

	drained := s.Drain()
	assert.Len(t, drained, 2)
	assert.Equal(t, 0, s.Len())
}

// TestCompressedModuleIsInflated exercises the decompression path a
// compression descriptor (tag 0x09) triggers on completion.
func TestCompressedModuleIsInflated(t *testing.T) {
	a, sink := newTestAssembler()

	original := []byte("the quick brown fox jumps over the lazy dog")
	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	_, err := w.Write(original)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	desc := compressionDescriptorBytes(uint32(len(original)))
	info := moduleInfoBytes(0x05, [][]byte{desc})
	entry := diiModuleEntry(3, uint32(compressed.Len()), 1, info)

	require.True(t, a.ProcessSection(buildDSISection(0x50, iorBytes(0x50, 0, 0x01))))
	require.True(t, a.ProcessSection(buildDIISection(0x50, uint16(compressed.Len()), entry, 1)))
	require.True(t, a.ProcessSection(buildDDBSection(0x50, 3, 1, 0, compressed.Bytes())))

	assert.Equal(t, original, sink.stored[3])
}

// TestDDBForUnknownModuleIsDropped guards against a block referencing a
// module_id the carousel has never announced via DII.
func TestDDBForUnknownModuleIsDropped(t *testing.T) {
	a, sink := newTestAssembler()

	require.True(t, a.ProcessSection(buildDSISection(0x60, iorBytes(0x60, 0, 0x01))))
	ok := a.ProcessSection(buildDDBSection(0x60, 99, 1, 0, []byte{1}))
	assert.False(t, ok)
	assert.Empty(t, sink.stored)
}
