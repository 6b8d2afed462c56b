package server

import (
	"errors"
	"net"
	"time"

	"github.com/dvbstreamer/control/pkg/protocol"
)

// Listen opens the BinaryControl listen socket on cfg.Port(), leaving the
// State ready to Serve. Splitting Listen from Serve mirrors the teacher's
// Init/Start separation (NewSDOServer vs Handle loop) and lets dvbctld bind
// the port before logging "ready".
func (s *State) Listen() error {
	addr := &net.TCPAddr{Port: s.cfg.Port()}
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = l
	s.log.Infof("[SERVER] listening on %s", l.Addr())
	return nil
}

// Serve runs the acceptor loop until Shutdown is called. It polls Accept
// with a 200ms deadline (§5's "acceptor polls the listen socket with a
// 200ms timeout") so shutdown is observed promptly instead of blocking
// forever inside Accept.
func (s *State) Serve() error {
	tl, ok := s.listener.(*net.TCPListener)
	if !ok {
		return errors.New("server: listener is not a *net.TCPListener")
	}
	for {
		s.mu.Lock()
		down := s.shutdown
		s.mu.Unlock()
		if down {
			return nil
		}

		tl.SetDeadline(time.Now().Add(200 * time.Millisecond))
		conn, err := tl.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			s.mu.Lock()
			down := s.shutdown
			s.mu.Unlock()
			if down {
				return nil
			}
			s.log.Warnf("[SERVER] accept error: %v", err)
			continue
		}
		s.acceptConn(conn)
	}
}

// acceptConn implements §4.2's accept algorithm: lock, check capacity,
// claim the first free slot, unlock, then start the worker.
func (s *State) acceptConn(conn net.Conn) {
	s.mu.Lock()
	if s.active >= s.cfg.MaxConnections {
		s.mu.Unlock()
		s.log.Warnf("[SERVER] rejecting %s: at capacity (%d/%d)", conn.RemoteAddr(), s.active, s.cfg.MaxConnections)
		s.metrics.IncConnectionsRejected()
		conn.Close()
		return
	}

	slotIdx := -1
	for i, c := range s.slots {
		if c == nil {
			slotIdx = i
			break
		}
	}
	if slotIdx == -1 {
		// active < MaxConnections guarantees a free slot exists.
		s.mu.Unlock()
		conn.Close()
		return
	}

	c := &Connection{
		Peer:      conn.RemoteAddr().String(),
		conn:      conn,
		Connected: true,
		msg:       protocol.NewMessage(0),
		slot:      slotIdx,
	}
	s.slots[slotIdx] = c
	s.active++
	s.metrics.SetActiveConnections(s.active)
	s.mu.Unlock()

	s.log.Infof("[SERVER] accepted %s (slot %d, %d/%d active)", c.Peer, slotIdx, s.active, s.cfg.MaxConnections)
	s.workers.Go(func() error {
		s.worker(c)
		return nil
	})
}

// worker implements §4.2's worker loop: recv, dispatch, send, repeat;
// exits on disconnect or shutdown, then releases the slot.
func (s *State) worker(c *Connection) {
	defer s.releaseSlot(c)

	for c.Connected {
		s.mu.Lock()
		down := s.shutdown
		s.mu.Unlock()
		if down {
			return
		}

		req, err := protocol.Recv(c.conn)
		if err != nil {
			s.log.Debugf("[SERVER][RX] %s disconnected: %v", c.Peer, err)
			return
		}

		s.log.WithFields(map[string]interface{}{
			"peer":   c.Peer,
			"opcode": req.Opcode.String(),
			"length": req.Len(),
		}).Debug("[SERVER][RX] dispatching")

		resp := s.Dispatch(c, req)
		s.metrics.IncRequestsHandled(req.Opcode.String())
		if !c.Connected {
			// Malformed input policy (§4.3): no partial reply is sent.
			return
		}

		if err := protocol.Send(c.conn, resp); err != nil {
			s.log.Debugf("[SERVER][TX] %s disconnected: %v", c.Peer, err)
			return
		}
	}
}

func (s *State) releaseSlot(c *Connection) {
	c.conn.Close()
	s.mu.Lock()
	s.slots[c.slot] = nil
	s.active--
	s.metrics.SetActiveConnections(s.active)
	s.mu.Unlock()
	s.log.Infof("[SERVER] closed %s (slot %d)", c.Peer, c.slot)
}

// Shutdown closes the listen socket and every active connection's socket;
// workers observe the failing I/O (or the shutdown flag between frames)
// and exit on their own.
func (s *State) Shutdown() {
	s.mu.Lock()
	s.shutdown = true
	for _, c := range s.slots {
		if c != nil {
			c.conn.Close()
		}
	}
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
}
