package main

import (
	"fmt"
	"net"
	"time"

	"github.com/dvbstreamer/control/pkg/protocol"
)

// client is a thin BinaryControl client: dial, authenticate, then send one
// request per call and decode its reply. It mirrors the teacher's
// sdo_client example's "dial, build a request, block for the reply" shape
// rather than keeping a persistent session object.
type client struct {
	conn net.Conn
}

func dial(addr string, timeout time.Duration) (*client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dvbctl: dialing %s: %w", addr, err)
	}
	return &client{conn: conn}, nil
}

func (c *client) Close() error {
	return c.conn.Close()
}

// authenticate sends AUTH(user, pass) and returns an error unless the
// daemon replies RERR(OK).
func (c *client) authenticate(user, pass string) error {
	req := protocol.NewMessage(protocol.OpAUTH)
	if err := req.Encode("ss", user, pass); err != nil {
		return err
	}
	resp, err := c.roundTrip(req)
	if err != nil {
		return err
	}
	return rerrError(resp)
}

// roundTrip sends req and returns the daemon's reply frame, unparsed.
func (c *client) roundTrip(req *protocol.Message) (*protocol.Message, error) {
	if err := protocol.Send(c.conn, req); err != nil {
		return nil, fmt.Errorf("dvbctl: sending request: %w", err)
	}
	resp, err := protocol.Recv(c.conn)
	if err != nil {
		return nil, fmt.Errorf("dvbctl: reading reply: %w", err)
	}
	return resp, nil
}

// rerrError decodes an RERR(code, text) reply into a Go error, or nil if
// the code is RERROK.
func rerrError(resp *protocol.Message) error {
	if resp.Opcode != protocol.OpRERR {
		return nil
	}
	var code uint8
	var text string
	if err := resp.Decode("bs", &code, &text); err != nil {
		return fmt.Errorf("dvbctl: malformed RERR reply: %w", err)
	}
	rc := protocol.RERRCode(code)
	if rc == protocol.RERROK {
		return nil
	}
	return &protocol.Abort{Code: rc, Text: text}
}

// rerrText decodes an RERR(code, text) reply expected to carry a string
// payload on success (e.g. INFO, SSPS), returning the text.
func rerrText(resp *protocol.Message) (string, error) {
	var code uint8
	var text string
	if err := resp.Decode("bs", &code, &text); err != nil {
		return "", fmt.Errorf("dvbctl: malformed reply: %w", err)
	}
	if protocol.RERRCode(code) != protocol.RERROK {
		return "", &protocol.Abort{Code: protocol.RERRCode(code), Text: text}
	}
	return text, nil
}
