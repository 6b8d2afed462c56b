// Package server implements BinaryControl: the length-prefixed TCP
// control protocol's listen socket, bounded worker pool and per-opcode
// command dispatch, grounded on the teacher's HTTPGatewayServer routes
// map and SDOServer per-connection state machine.
package server

import (
	"fmt"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dvbstreamer/control/pkg/config"
	"github.com/dvbstreamer/control/pkg/protocol"
)

// Connection is per-client state, owned exclusively by the worker that
// serves it.
type Connection struct {
	Peer          string
	conn          net.Conn
	Authenticated bool
	Connected     bool
	msg           *protocol.Message
	slot          int
}

// Collaborators groups the external stand-ins BinaryControl dispatches
// into: output/service/multiplex stores, the command interpreter for the
// quote channel, and anything else spec §1 calls out of scope. They are
// interfaces so dvbctld can supply real implementations while tests supply
// fakes.
type Collaborators struct {
	Outputs   OutputStore
	Services  ServiceStore
	Multiplex MultiplexStore
	Commands  CommandInterpreter
	FrontEnd  FrontEndStatus
}

// State is the control subsystem's global, process-wide context: the
// listening socket, the fixed slot table, credentials, streamer name and
// start time — grouped into one explicit struct per the teacher's pattern
// of passing a server context into handlers instead of relying on package
// globals.
type State struct {
	cfg           *config.Config
	collaborators Collaborators
	log           log.FieldLogger

	listener net.Listener

	mu       sync.Mutex
	slots    []*Connection
	active   int
	shutdown bool

	startedAt time.Time

	metrics Metrics

	// workers tracks every spawned per-connection goroutine so Wait can
	// block until they have all drained after Shutdown, following the
	// teacher's lifecycle split of a cancellable loop plus a join point
	// (here via golang.org/x/sync/errgroup rather than a raw WaitGroup).
	workers *errgroup.Group
}

// Metrics is the subset of pkg/metrics.Collector the server touches. It is
// an interface so tests don't need a real prometheus registry.
type Metrics interface {
	SetActiveConnections(n int)
	IncConnectionsRejected()
	IncRequestsHandled(opcode string)
}

type noopMetrics struct{}

func (noopMetrics) SetActiveConnections(int) {}
func (noopMetrics) IncConnectionsRejected()  {}
func (noopMetrics) IncRequestsHandled(string) {}

// NewState builds server state bound to cfg and the given collaborators. A
// nil logger defaults to logrus.StandardLogger(), exactly as the teacher's
// NewSDOServer defaults a nil FieldLogger argument.
func NewState(cfg *config.Config, collaborators Collaborators, logger log.FieldLogger) *State {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &State{
		cfg:           cfg,
		collaborators: collaborators,
		log:           logger,
		slots:         make([]*Connection, cfg.MaxConnections),
		startedAt:     time.Now(),
		metrics:       noopMetrics{},
		workers:       &errgroup.Group{},
	}
}

// Wait blocks until every worker goroutine spawned by acceptConn has
// returned. Callers invoke it after Shutdown to know the drain is
// complete before exiting the process.
func (s *State) Wait() error {
	return s.workers.Wait()
}

// SetMetrics wires an optional metrics sink; called once during startup.
func (s *State) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// UptimeSeconds is used by the INFO/UPSECS subfield.
func (s *State) UptimeSeconds() int64 {
	return int64(time.Since(s.startedAt).Seconds())
}

// UptimeString reproduces the original daemon's "%d Days %d Hours %d
// Minutes %d seconds" format exactly, used by INFO/UPTIME.
func (s *State) UptimeString() string {
	total := int64(time.Since(s.startedAt).Seconds())
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d Days %d Hours %d Minutes %d seconds", days, hours, minutes, seconds)
}

// ActiveCount reports the number of occupied slots.
func (s *State) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
