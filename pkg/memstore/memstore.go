// Package memstore provides default, in-memory implementations of the
// external collaborator interfaces pkg/server and pkg/carousel depend on
// (output delivery, service/multiplex bookkeeping, section filters, the
// object-cache sink), grounded on the teacher's map-backed ObjectDictionary
// (od_interface.go's entries map[uint16]*Entry). A real deployment behind a
// DVB front-end would replace these with implementations backed by the
// actual filter/delivery hardware; memstore keeps dvbctld runnable and
// testable without one.
package memstore

import (
	"fmt"
	"sync"

	"github.com/dvbstreamer/control/pkg/protocol"
	"github.com/dvbstreamer/control/pkg/server"
)

// Outputs is an in-memory server.OutputStore.
type Outputs struct {
	mu     sync.Mutex
	byName map[string]*outputEntry
}

type outputEntry struct {
	mrl     string
	service string
	pids    map[uint16]bool
	packets uint32
}

// NewOutputs returns an empty output store.
func NewOutputs() *Outputs {
	return &Outputs{byName: make(map[string]*outputEntry)}
}

// abort builds an *protocol.Abort carrying a caller-supplied message
// instead of the RERR code's generic default text.
func abort(code protocol.RERRCode, text string) *protocol.Abort {
	return &protocol.Abort{Code: code, Text: text}
}

func (o *Outputs) Add(name, mrl string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.byName[name]; ok {
		return abort(protocol.RERRExists, fmt.Sprintf("output %q already exists", name))
	}
	o.byName[name] = &outputEntry{mrl: mrl, pids: make(map[uint16]bool)}
	return nil
}

func (o *Outputs) Remove(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.byName[name]; !ok {
		return abort(protocol.RERRNotFound, fmt.Sprintf("output %q not found", name))
	}
	delete(o.byName, name)
	return nil
}

func (o *Outputs) SetService(output, service string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.byName[output]
	if !ok {
		return abort(protocol.RERRNotFound, fmt.Sprintf("output %q not found", output))
	}
	e.service = service
	return nil
}

func (o *Outputs) SetDestination(output, mrl string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.byName[output]
	if !ok {
		return abort(protocol.RERRNotFound, fmt.Sprintf("output %q not found", output))
	}
	e.mrl = mrl
	return nil
}

func (o *Outputs) AddPIDs(output string, pids []uint16) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.byName[output]
	if !ok {
		return abort(protocol.RERRNotFound, fmt.Sprintf("output %q not found", output))
	}
	for _, p := range pids {
		e.pids[p] = true
	}
	return nil
}

func (o *Outputs) RemovePIDs(output string, pids []uint16) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.byName[output]
	if !ok {
		return abort(protocol.RERRNotFound, fmt.Sprintf("output %q not found", output))
	}
	for _, p := range pids {
		delete(e.pids, p)
	}
	return nil
}

func (o *Outputs) PIDCount(output string) (int, error) {
	pids, err := o.PIDs(output)
	if err != nil {
		return 0, err
	}
	return len(pids), nil
}

func (o *Outputs) PIDs(output string) ([]uint16, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.byName[output]
	if !ok {
		return nil, abort(protocol.RERRNotFound, fmt.Sprintf("output %q not found", output))
	}
	out := make([]uint16, 0, len(e.pids))
	for p := range e.pids {
		out = append(out, p)
	}
	return out, nil
}

func (o *Outputs) PacketCount(output string) (uint32, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.byName[output]
	if !ok {
		return 0, abort(protocol.RERRNotFound, fmt.Sprintf("output %q not found", output))
	}
	return e.packets, nil
}

func (o *Outputs) List() ([]server.OutputInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]server.OutputInfo, 0, len(o.byName))
	for name, e := range o.byName {
		out = append(out, server.OutputInfo{Name: name, MRL: e.mrl, Service: e.service})
	}
	return out, nil
}
