package carousel

import "errors"

// Sentinel errors for the carousel core, declared once per package
// following the teacher's errors.go convention. None of these ever
// propagate past SectionDispatcher: every section-level failure is logged
// and the section dropped, per the carousel surface's "logs and drops"
// error policy.
var (
	ErrShortSection       = errors.New("carousel: section too short to contain a header")
	ErrSectionInvalid     = errors.New("carousel: section_syntax_indicator clear or private_indicator set")
	ErrBadCRC             = errors.New("carousel: CRC32 residue nonzero")
	ErrBadProtocol        = errors.New("carousel: message header protocol byte is not 0x11")
	ErrBadType            = errors.New("carousel: message header type byte is not 0x03")
	ErrMessageTooLong     = errors.New("carousel: message_len exceeds 4076")
	ErrUnknownCarousel    = errors.New("carousel: no carousel matches this id")
	ErrUnknownModule      = errors.New("carousel: no module record for this module_id")
	ErrRegistryFull       = errors.New("carousel: registry has no free carousel slots")
	ErrUnknownMessageID   = errors.New("carousel: unrecognised DSM-CC message_id")
	ErrDecompressionFailed = errors.New("carousel: module decompression failed")
)
