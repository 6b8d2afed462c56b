package protocol

import "fmt"

// RERRCode is the single byte carried in an RERR response body. It mirrors
// the teacher's CANopenError convention of a small integer type backed by a
// descriptive map, rather than a bare errors.New per failure.
type RERRCode uint8

const (
	RERROK            RERRCode = 0x00
	RERRNotAuthorised RERRCode = 0x01
	RERRExists        RERRCode = 0x02
	RERRNotFound      RERRCode = 0x03
	RERRStreaming     RERRCode = 0x04
	RERRGeneric       RERRCode = 0xFF
)

var rerrDescriptions = map[RERRCode]string{
	RERROK:            "ok",
	RERRNotAuthorised: "not authorised",
	RERRExists:        "already exists",
	RERRNotFound:      "not found",
	RERRStreaming:     "already streaming",
	RERRGeneric:       "generic error",
}

func (c RERRCode) String() string {
	if d, ok := rerrDescriptions[c]; ok {
		return d
	}
	return fmt.Sprintf("rerr code 0x%02x", uint8(c))
}

// Abort is returned by command handlers that want the dispatcher to reply
// with RERR(Code, Text) instead of a normal response payload.
type Abort struct {
	Code RERRCode
	Text string
}

func (a *Abort) Error() string {
	if a.Text != "" {
		return fmt.Sprintf("%s: %s", a.Code, a.Text)
	}
	return a.Code.String()
}

// NewAbort builds an Abort using the code's default description as text.
func NewAbort(code RERRCode) *Abort {
	return &Abort{Code: code, Text: code.String()}
}

// Sentinel errors for the codec's own failure modes: malformed frames never
// panic, they surface as one of these so callers can log and drop the
// connection instead of crashing the server.
var (
	ErrShortRead     = fmt.Errorf("protocol: short read decoding field")
	ErrStringTooLong = fmt.Errorf("protocol: string exceeds 255 bytes")
	ErrPayloadTooBig = fmt.Errorf("protocol: payload exceeds 65535 bytes")
	ErrBadFormat     = fmt.Errorf("protocol: unknown format character")
	ErrCursorBounds  = fmt.Errorf("protocol: seek out of bounds")
)
