package memstore

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvbstreamer/control/pkg/protocol"
)

func abortCode(t *testing.T, err error) protocol.RERRCode {
	t.Helper()
	a, ok := err.(*protocol.Abort)
	require.True(t, ok, "expected *protocol.Abort, got %T", err)
	return a.Code
}

func TestOutputsAddDuplicateRejected(t *testing.T) {
	o := NewOutputs()
	require.NoError(t, o.Add("out1", "udp://239.1.1.1:1234"))
	err := o.Add("out1", "udp://239.1.1.1:5678")
	require.Error(t, err)
	assert.Equal(t, protocol.RERRExists, abortCode(t, err))
}

func TestOutputsMissingOperationsReturnNotFound(t *testing.T) {
	o := NewOutputs()
	_, err := o.PIDs("nope")
	assert.Equal(t, protocol.RERRNotFound, abortCode(t, err))
	assert.Equal(t, protocol.RERRNotFound, abortCode(t, o.Remove("nope")))
	assert.Equal(t, protocol.RERRNotFound, abortCode(t, o.SetDestination("nope", "udp://x")))
	assert.Equal(t, protocol.RERRNotFound, abortCode(t, o.SetService("nope", "BBC ONE")))
}

func TestOutputsPIDLifecycle(t *testing.T) {
	o := NewOutputs()
	require.NoError(t, o.Add("out1", "udp://239.1.1.1:1234"))

	require.NoError(t, o.AddPIDs("out1", []uint16{100, 101, 102}))
	count, err := o.PIDCount("out1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, o.RemovePIDs("out1", []uint16{101}))
	pids, err := o.PIDs("out1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint16{100, 102}, pids)
}

func TestOutputsSetDestinationAndList(t *testing.T) {
	o := NewOutputs()
	require.NoError(t, o.Add("out1", "udp://239.1.1.1:1234"))
	require.NoError(t, o.SetDestination("out1", "udp://239.1.1.1:9999"))
	require.NoError(t, o.SetService("out1", "BBC ONE"))

	list, err := o.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "out1", list[0].Name)
	assert.Equal(t, "udp://239.1.1.1:9999", list[0].MRL)
	assert.Equal(t, "BBC ONE", list[0].Service)
}

func TestOutputsRemoveDeletesEntry(t *testing.T) {
	o := NewOutputs()
	require.NoError(t, o.Add("out1", "udp://239.1.1.1:1234"))
	require.NoError(t, o.Remove("out1"))
	_, err := o.PacketCount("out1")
	assert.Equal(t, protocol.RERRNotFound, abortCode(t, err))
}

func TestMultiplexFilterLifecycle(t *testing.T) {
	m := NewMultiplex()
	require.NoError(t, m.AddFilter("sf1", "udp://239.2.2.2:1234"))
	err := m.AddFilter("sf1", "udp://239.2.2.2:5678")
	assert.Equal(t, protocol.RERRExists, abortCode(t, err))

	require.NoError(t, m.SetFilter("sf1", "BBC ONE"))
	require.NoError(t, m.SetDestination("sf1", "udp://239.2.2.2:9999"))

	list, err := m.ListFilters()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sf1", list[0].Name)
	assert.Equal(t, "BBC ONE", list[0].Service)
	assert.Equal(t, "udp://239.2.2.2:9999", list[0].MRL)

	require.NoError(t, m.RemoveFilter("sf1"))
	_, err = m.ListFilters()
	require.NoError(t, err)
}

func TestMultiplexOperationsOnUnknownFilterAreNotFound(t *testing.T) {
	m := NewMultiplex()
	assert.Equal(t, protocol.RERRNotFound, abortCode(t, m.SetFilter("nope", "BBC ONE")))
	assert.Equal(t, protocol.RERRNotFound, abortCode(t, m.SetDestination("nope", "udp://x")))
	assert.Equal(t, protocol.RERRNotFound, abortCode(t, m.RemoveFilter("nope")))
}

func TestServicesSelectAndCurrent(t *testing.T) {
	s := NewServices()
	s.AddService("BBC ONE", []uint16{100, 101}, true)
	s.AddService("BBC NEWS", []uint16{200, 201}, false)

	_, err := s.Current()
	assert.Equal(t, protocol.RERRNotFound, abortCode(t, err))

	require.NoError(t, s.Select("BBC ONE"))
	current, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, "BBC ONE", current)

	err = s.Select("UNKNOWN")
	assert.Equal(t, protocol.RERRNotFound, abortCode(t, err))
}

func TestServicesListingsAreSortedAndFiltered(t *testing.T) {
	s := NewServices()
	s.AddService("BBC TWO", []uint16{102}, true)
	s.AddService("BBC ONE", []uint16{100}, true)
	s.AddService("ITV", []uint16{300}, false)

	all, err := s.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"BBC ONE", "BBC TWO", "ITV"}, all)

	multiplex, err := s.ListMultiplex()
	require.NoError(t, err)
	assert.Equal(t, []string{"BBC ONE", "BBC TWO"}, multiplex)

	found, err := s.FindName("ITV")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.FindName("CHANNEL 4")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCommandsExecuteHelpAndUnknown(t *testing.T) {
	c := NewCommands()
	var lines []string
	sink := sinkFunc(func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})

	require.NoError(t, c.Execute("help", sink))
	assert.NotEmpty(t, lines)

	err := c.Execute("nonexistent", sink)
	assert.Error(t, err)
}

func TestFrontEndReportsLastSetValues(t *testing.T) {
	f := NewFrontEnd()
	f.SetSignalStats(1, 2, 3, 4, 5)
	f.SetStatus(true, 123456, 27500, 8000)

	ber, snr, strength, uncorrected, corrected := f.SignalStats()
	assert.Equal(t, uint32(1), ber)
	assert.Equal(t, uint32(2), snr)
	assert.Equal(t, uint32(3), strength)
	assert.Equal(t, uint32(4), uncorrected)
	assert.Equal(t, uint32(5), corrected)

	locked, frequency, symbolRate, bandwidth := f.Status()
	assert.True(t, locked)
	assert.Equal(t, uint32(123456), frequency)
	assert.Equal(t, uint16(27500), symbolRate)
	assert.Equal(t, uint16(8000), bandwidth)
}

func TestFileCacheWritesModuleToDisk(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewFileCache(filepath.Join(dir, "cache"), nil)
	require.NoError(t, err)

	require.NoError(t, cache.Store(0x1234, 0x5678, []byte("module bytes")))

	path := filepath.Join(dir, "cache", "00001234", "5678.bin")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "module bytes", string(data))
}

// sinkFunc adapts a plain function into a server.PrintSink for tests.
type sinkFunc func(format string, args ...interface{})

func (f sinkFunc) Printf(format string, args ...interface{}) { f(format, args...) }
