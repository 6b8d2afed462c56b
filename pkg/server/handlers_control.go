package server

import (
	"github.com/dvbstreamer/control/pkg/protocol"
)

// handleCSPS implements MSGCODE_CSPS: select the primary service.
func handleCSPS(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var service string
	if err := req.Decode("s", &service); err != nil {
		return nil, err
	}
	if err := s.collaborators.Services.Select(service); err != nil {
		return abortFor(err), nil
	}
	return protocol.NewRERR(protocol.RERROK, ""), nil
}

// handleCSSA implements MSGCODE_CSSA: add a secondary service filter,
// identified by name, following service changes automatically (§4.3's
// "Service" family manages filters; the "Output" family below manages
// manually PID-listed destinations).
func handleCSSA(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var name, mrl string
	if err := req.Decode("ss", &name, &mrl); err != nil {
		return nil, err
	}
	if err := s.collaborators.Multiplex.AddFilter(name, mrl); err != nil {
		return abortFor(err), nil
	}
	return protocol.NewRERR(protocol.RERROK, ""), nil
}

// handleCOAO implements MSGCODE_COAO: add a manual output destination.
func handleCOAO(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var name, mrl string
	if err := req.Decode("ss", &name, &mrl); err != nil {
		return nil, err
	}
	if err := s.collaborators.Outputs.Add(name, mrl); err != nil {
		return abortFor(err), nil
	}
	return protocol.NewRERR(protocol.RERROK, ""), nil
}

// handleCSSS implements MSGCODE_CSSS: point a named service filter at a
// different service.
func handleCSSS(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var name, service string
	if err := req.Decode("ss", &name, &service); err != nil {
		return nil, err
	}
	if err := s.collaborators.Multiplex.SetFilter(name, service); err != nil {
		return abortFor(err), nil
	}
	return protocol.NewRERR(protocol.RERROK, ""), nil
}

// handleCSSR implements MSGCODE_CSSR: remove a named service filter.
func handleCSSR(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var name string
	if err := req.Decode("s", &name); err != nil {
		return nil, err
	}
	if err := s.collaborators.Multiplex.RemoveFilter(name); err != nil {
		return abortFor(err), nil
	}
	return protocol.NewRERR(protocol.RERROK, ""), nil
}

// handleCORO implements MSGCODE_CORO: remove a named output destination.
func handleCORO(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var name string
	if err := req.Decode("s", &name); err != nil {
		return nil, err
	}
	if err := s.collaborators.Outputs.Remove(name); err != nil {
		return abortFor(err), nil
	}
	return protocol.NewRERR(protocol.RERROK, ""), nil
}

// handleCSSD implements MSGCODE_CSSD: set the MRL a named service filter
// delivers to.
func handleCSSD(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var name, mrl string
	if err := req.Decode("ss", &name, &mrl); err != nil {
		return nil, err
	}
	if err := s.collaborators.Multiplex.SetDestination(name, mrl); err != nil {
		return abortFor(err), nil
	}
	return protocol.NewRERR(protocol.RERROK, ""), nil
}

// handleCOSD implements MSGCODE_COSD: set the MRL a named manual output
// delivers to.
func handleCOSD(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var name, mrl string
	if err := req.Decode("ss", &name, &mrl); err != nil {
		return nil, err
	}
	if err := s.collaborators.Outputs.SetDestination(name, mrl); err != nil {
		return abortFor(err), nil
	}
	return protocol.NewRERR(protocol.RERROK, ""), nil
}

// handleCOAPorCORP implements MSGCODE_COAP/MSGCODE_CORP: add or remove a
// list of PIDs from a manual output. Payload is `s,d` (output, pid count)
// followed by `d` per PID. Service filters derive their PIDs from the
// service they follow and have no equivalent opcode.
func handleCOAPorCORP(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var output string
	var count uint16
	if err := req.Decode("sd", &output, &count); err != nil {
		return nil, err
	}

	pids := make([]uint16, 0, count)
	for i := uint16(0); i < count; i++ {
		var pid uint16
		if err := req.Decode("d", &pid); err != nil {
			return nil, err
		}
		pids = append(pids, pid)
	}

	var err error
	if req.Opcode == protocol.OpCOAP {
		err = s.collaborators.Outputs.AddPIDs(output, pids)
	} else {
		err = s.collaborators.Outputs.RemovePIDs(output, pids)
	}
	if err != nil {
		return abortFor(err), nil
	}
	return protocol.NewRERR(protocol.RERROK, ""), nil
}

// abortFor maps a collaborator error into an RERR reply. Collaborators may
// return *protocol.Abort directly to pick a specific code (NOT_FOUND,
// EXISTS, STREAMING); any other error becomes RERR/GENERIC with its text.
func abortFor(err error) *protocol.Message {
	if abort, ok := err.(*protocol.Abort); ok {
		return protocol.NewRERRFromAbort(abort)
	}
	return protocol.NewRERR(protocol.RERRGeneric, err.Error())
}
