package server

import (
	"fmt"

	"github.com/dvbstreamer/control/pkg/protocol"
)

// handlerFunc is one routine per protocol opcode (§4.3's "one handler per
// opcode"), following the teacher's routes map[string]HTTPRequestHandler
// dispatch-table pattern generalized from string commands to Opcode keys.
// A handler returns either a response message or an *protocol.Abort to be
// turned into an RERR reply; any other error marks the connection dead
// with no reply, per the malformed-input policy.
type handlerFunc func(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error)

var routes = map[protocol.Opcode]handlerFunc{
	protocol.OpINFO: handleINFO,
	protocol.OpAUTH: handleAUTH,
	protocol.OpQUOT: handleQUOT,

	protocol.OpCSPS: handleCSPS,
	protocol.OpCSSA: handleCSSA,
	protocol.OpCSSS: handleCSSS,
	protocol.OpCSSR: handleCSSR,
	protocol.OpCSSD: handleCSSD,

	protocol.OpCOAO: handleCOAO,
	protocol.OpCORO: handleCORO,
	protocol.OpCOAP: handleCOAPorCORP,
	protocol.OpCORP: handleCOAPorCORP,
	protocol.OpCOSD: handleCOSD,

	protocol.OpSSPS: handleSSPS,
	protocol.OpSSFL: handleSSFL,
	protocol.OpSSPC: handleSSPCorSOPC,

	protocol.OpSOLO: handleSOLO,
	protocol.OpSOLP: handleSOLPorSSPL,
	protocol.OpSOPC: handleSSPCorSOPC,

	protocol.OpSTSS: handleSTSS,
	protocol.OpSFES: handleSFES,
	protocol.OpSSLA: handleSSLAorSSLM,
	protocol.OpSSLM: handleSSLAorSSLM,
	protocol.OpSSPL: handleSOLPorSSPL,
}

// Dispatch authorizes and routes one request to its handler, translating
// its outcome into a reply message. It never panics on malformed input:
// short reads set c.Connected = false and return nil, which the worker
// loop treats as "no reply, drop the connection".
func (s *State) Dispatch(c *Connection, req *protocol.Message) *protocol.Message {
	handler, ok := routes[req.Opcode]
	if !ok {
		return protocol.NewRERR(protocol.RERRGeneric, "Unknown message type!")
	}

	if req.Opcode.RequiresAuth() && !c.Authenticated {
		return protocol.NewRERR(protocol.RERRNotAuthorised, "Not authorised!")
	}

	resp, err := handler(s, c, req)
	if err != nil {
		if abort, ok := err.(*protocol.Abort); ok {
			return protocol.NewRERRFromAbort(abort)
		}
		// Any non-Abort error means the request was malformed: §4.3's
		// policy is to drop the connection with no reply.
		s.log.Warnf("[SERVER][RX] %s malformed %s request: %v", c.Peer, req.Opcode, err)
		c.Connected = false
		return nil
	}
	return resp
}

func handleINFO(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var selector uint8
	if err := req.Decode("b", &selector); err != nil {
		return nil, err
	}

	switch selector {
	case 0x00:
		return protocol.NewRERR(protocol.RERROK, s.cfg.StreamerName), nil
	case 0x01:
		return protocol.NewRERR(protocol.RERROK, "Not implemented!"), nil
	case 0x02:
		if c.Authenticated {
			return protocol.NewRERR(protocol.RERROK, "Authenticated"), nil
		}
		return protocol.NewRERR(protocol.RERROK, "Not authenticated"), nil
	case 0xFE:
		return protocol.NewRERR(protocol.RERROK, fmt.Sprintf("%d", s.UptimeSeconds())), nil
	case 0xFF:
		return protocol.NewRERR(protocol.RERROK, s.UptimeString()), nil
	default:
		return nil, protocol.NewAbort(protocol.RERRGeneric)
	}
}

func handleAUTH(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var user, pass string
	if err := req.Decode("ss", &user, &pass); err != nil {
		return nil, err
	}

	c.Authenticated = user == s.cfg.Username && pass == s.cfg.Password
	if !c.Authenticated {
		return protocol.NewRERR(protocol.RERRNotAuthorised, "Not authorised!"), nil
	}
	return protocol.NewRERR(protocol.RERROK, ""), nil
}

func handleQUOT(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var command string
	if err := req.Decode("s", &command); err != nil {
		return nil, err
	}

	resp := protocol.NewMessage(protocol.OpRTXT)
	sink := &messageSink{msg: resp}

	if s.collaborators.Commands == nil {
		return protocol.NewRERR(protocol.RERRGeneric, "Unknown command"), nil
	}
	if err := s.collaborators.Commands.Execute(command, sink); err != nil {
		return protocol.NewRERR(protocol.RERRGeneric, "Unknown command"), nil
	}
	return resp, nil
}

// messageSink adapts a *protocol.Message into a PrintSink, appending
// formatted text up to the message's remaining capacity, per §4.3's
// "temporary print sink" design.
type messageSink struct {
	msg *protocol.Message
}

func (m *messageSink) Printf(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	for _, b := range []byte(text) {
		if m.msg.PutByte(b) != nil {
			return
		}
	}
}
