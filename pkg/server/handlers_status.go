package server

import (
	"github.com/dvbstreamer/control/pkg/protocol"
)

// handleSSPS implements MSGCODE_SSPS: current primary service name,
// reported as RERR(OK, name) per §8 scenario S1's reply shape for
// info-like opcodes.
func handleSSPS(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	name, err := s.collaborators.Services.Current()
	if err != nil {
		return abortFor(err), nil
	}
	return protocol.NewRERR(protocol.RERROK, name), nil
}

// handleSSFL implements MSGCODE_SSFL: list named service filters as
// RSSL(b count, (s name, s mrl, s service) x n), back-patching the count
// per §4.3's list-building procedure.
func handleSSFL(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	filters, err := s.collaborators.Multiplex.ListFilters()
	if err != nil {
		return abortFor(err), nil
	}

	resp := protocol.NewMessage(protocol.OpRSSL)
	countPos := resp.Cursor()
	if err := resp.PutByte(0); err != nil {
		return abortFor(err), nil
	}

	n := 0
	for _, f := range filters {
		if err := resp.Encode("sss", f.Name, f.MRL, f.Service); err != nil {
			break
		}
		n++
	}
	end := resp.Cursor()
	resp.Seek(countPos)
	resp.PutByte(uint8(n))
	resp.Seek(end)
	return resp, nil
}

// handleSSPCorSOPC implements MSGCODE_SSPC/MSGCODE_SOPC: packet count for
// a named output, reported as ROPC(l).
func handleSSPCorSOPC(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var name string
	if err := req.Decode("s", &name); err != nil {
		return nil, err
	}
	count, err := s.collaborators.Outputs.PacketCount(name)
	if err != nil {
		return abortFor(err), nil
	}
	resp := protocol.NewMessage(protocol.OpROPC)
	if err := resp.PutUint32(count); err != nil {
		return abortFor(err), nil
	}
	return resp, nil
}

// handleSOLO implements MSGCODE_SOLO: list all outputs as ROLO(b count,
// (s name, s mrl) x n).
func handleSOLO(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	outputs, err := s.collaborators.Outputs.List()
	if err != nil {
		return abortFor(err), nil
	}

	resp := protocol.NewMessage(protocol.OpROLO)
	countPos := resp.Cursor()
	if err := resp.PutByte(0); err != nil {
		return abortFor(err), nil
	}

	n := 0
	for _, o := range outputs {
		if err := resp.Encode("ss", o.Name, o.MRL); err != nil {
			break
		}
		n++
	}
	end := resp.Cursor()
	resp.Seek(countPos)
	resp.PutByte(uint8(n))
	resp.Seek(end)
	return resp, nil
}

// handleSOLPorSSPL implements MSGCODE_SOLP (output PIDs) and
// MSGCODE_SSPL (service PIDs), both replying RLP(d count, d x n pids).
func handleSOLPorSSPL(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var name string
	if err := req.Decode("s", &name); err != nil {
		return nil, err
	}

	var pids []uint16
	var err error
	if req.Opcode == protocol.OpSOLP {
		pids, err = s.collaborators.Outputs.PIDs(name)
	} else {
		found, ferr := s.collaborators.Services.FindName(name)
		if ferr != nil {
			return abortFor(ferr), nil
		}
		if !found {
			return protocol.NewRERR(protocol.RERRNotFound, "Not found!"), nil
		}
		pids, err = s.collaborators.Services.PIDs(name)
	}
	if err != nil {
		return abortFor(err), nil
	}

	resp := protocol.NewMessage(protocol.OpRLP)
	// §13's Open Question resolution: always send RLP with the true count,
	// even when it is zero, never omitting the reply.
	if err := resp.PutUint16(uint16(len(pids))); err != nil {
		return abortFor(err), nil
	}
	for _, pid := range pids {
		if err := resp.PutUint16(pid); err != nil {
			break
		}
	}
	return resp, nil
}

// handleSTSS implements MSGCODE_STSS: transport-stream signal stats as
// RTSS(l x 5).
func handleSTSS(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	if s.collaborators.FrontEnd == nil {
		return protocol.NewRERR(protocol.RERRGeneric, "No front end"), nil
	}
	ber, snr, strength, uncorrected, corrected := s.collaborators.FrontEnd.SignalStats()
	resp := protocol.NewMessage(protocol.OpRTSS)
	if err := resp.Encode("lllll", ber, snr, strength, uncorrected, corrected); err != nil {
		return abortFor(err), nil
	}
	return resp, nil
}

// handleSFES implements MSGCODE_SFES: front-end lock status as
// RFES(b locked, l frequency, d symbolRate, d bandwidth).
func handleSFES(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	if s.collaborators.FrontEnd == nil {
		return protocol.NewRERR(protocol.RERRGeneric, "No front end"), nil
	}
	locked, frequency, symbolRate, bandwidth := s.collaborators.FrontEnd.Status()
	var lockedByte uint8
	if locked {
		lockedByte = 1
	}
	resp := protocol.NewMessage(protocol.OpRFES)
	if err := resp.Encode("bldd", lockedByte, frequency, symbolRate, bandwidth); err != nil {
		return abortFor(err), nil
	}
	return resp, nil
}

// handleSSLAorSSLM implements MSGCODE_SSLA (all services) and
// MSGCODE_SSLM (current multiplex only), both replying RLS(d count, s x n).
func handleSSLAorSSLM(s *State, c *Connection, req *protocol.Message) (*protocol.Message, error) {
	var names []string
	var err error
	if req.Opcode == protocol.OpSSLA {
		names, err = s.collaborators.Services.ListAll()
	} else {
		names, err = s.collaborators.Services.ListMultiplex()
	}
	if err != nil {
		return abortFor(err), nil
	}

	resp := protocol.NewMessage(protocol.OpRLS)
	countPos := resp.Cursor()
	if err := resp.PutUint16(0); err != nil {
		return abortFor(err), nil
	}

	n := 0
	for _, name := range names {
		if err := resp.PutString(name); err != nil {
			break
		}
		n++
	}
	end := resp.Cursor()
	resp.Seek(countPos)
	resp.PutUint16(uint16(n))
	resp.Seek(end)
	return resp, nil
}
