package memstore

import (
	"fmt"
	"sync"

	"github.com/dvbstreamer/control/pkg/protocol"
	"github.com/dvbstreamer/control/pkg/server"
)

type filterEntry struct {
	mrl     string
	service string
}

// Multiplex is an in-memory server.MultiplexStore tracking named section
// filters, mirroring Outputs' shape.
type Multiplex struct {
	mu     sync.Mutex
	byName map[string]*filterEntry
}

// NewMultiplex returns an empty filter store.
func NewMultiplex() *Multiplex {
	return &Multiplex{byName: make(map[string]*filterEntry)}
}

func (m *Multiplex) AddFilter(name, mrl string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[name]; ok {
		return abort(protocol.RERRExists, fmt.Sprintf("filter %q already exists", name))
	}
	m.byName[name] = &filterEntry{mrl: mrl}
	return nil
}

func (m *Multiplex) RemoveFilter(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[name]; !ok {
		return abort(protocol.RERRNotFound, fmt.Sprintf("filter %q not found", name))
	}
	delete(m.byName, name)
	return nil
}

func (m *Multiplex) SetFilter(name, service string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byName[name]
	if !ok {
		return abort(protocol.RERRNotFound, fmt.Sprintf("filter %q not found", name))
	}
	e.service = service
	return nil
}

func (m *Multiplex) SetDestination(name, mrl string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byName[name]
	if !ok {
		return abort(protocol.RERRNotFound, fmt.Sprintf("filter %q not found", name))
	}
	e.mrl = mrl
	return nil
}

func (m *Multiplex) ListFilters() ([]server.FilterInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]server.FilterInfo, 0, len(m.byName))
	for name, e := range m.byName {
		out = append(out, server.FilterInfo{Name: name, MRL: e.mrl, Service: e.service})
	}
	return out, nil
}
