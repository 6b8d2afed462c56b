package memstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dvbstreamer/control/pkg/protocol"
)

type serviceEntry struct {
	pids      []uint16
	multiplex bool
}

// Services is an in-memory server.ServiceStore. Every service added via
// AddService is tracked as either a plain service or part of the current
// multiplex listing, selected with Select.
type Services struct {
	mu      sync.Mutex
	byName  map[string]*serviceEntry
	current string
}

// NewServices returns an empty service store.
func NewServices() *Services {
	return &Services{byName: make(map[string]*serviceEntry)}
}

// AddService registers a service with its PID list, for wiring tests and
// static configuration; not part of server.ServiceStore itself.
func (s *Services) AddService(name string, pids []uint16, multiplex bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[name] = &serviceEntry{pids: pids, multiplex: multiplex}
}

func (s *Services) Select(service string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[service]; !ok {
		return abort(protocol.RERRNotFound, fmt.Sprintf("service %q not found", service))
	}
	s.current = service
	return nil
}

func (s *Services) Current() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == "" {
		return "", abort(protocol.RERRNotFound, "no service currently selected")
	}
	return s.current, nil
}

func (s *Services) PIDs(service string) ([]uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byName[service]
	if !ok {
		return nil, abort(protocol.RERRNotFound, fmt.Sprintf("service %q not found", service))
	}
	return e.pids, nil
}

func (s *Services) ListAll() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Services) ListMultiplex() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for name, e := range s.byName {
		if e.multiplex {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Services) FindName(service string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byName[service]
	return ok, nil
}
