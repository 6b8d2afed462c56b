package protocol

// Opcode identifies a BinaryControl wire message. The header carries the
// opcode as a big-endian uint16; the legacy one-byte form used by an earlier
// revision of this protocol is not accepted (spec §4.1 canonicalizes on the
// two-byte form because opcodes exceed 0xFF).
type Opcode uint16

// Request opcodes.
const (
	OpINFO Opcode = 0x0000
	OpAUTH Opcode = 0x0001
	OpQUOT Opcode = 0x0002

	OpCSPS Opcode = 0x1101
	OpCSSA Opcode = 0x1102
	OpCSSS Opcode = 0x1103
	OpCSSR Opcode = 0x1104
	OpCSSD Opcode = 0x1105

	OpCOAO Opcode = 0x1201
	OpCORO Opcode = 0x1202
	OpCOAP Opcode = 0x1203
	OpCORP Opcode = 0x1204
	OpCOSD Opcode = 0x1205

	OpSSPS Opcode = 0x2101
	OpSSFL Opcode = 0x2102
	OpSSPC Opcode = 0x2103

	OpSOLO Opcode = 0x2201
	OpSOLP Opcode = 0x2202
	OpSOPC Opcode = 0x2203

	OpSTSS Opcode = 0x2F01
	OpSFES Opcode = 0x2F02
	OpSSLA Opcode = 0x2F03
	OpSSLM Opcode = 0x2F04
	OpSSPL Opcode = 0x2F05
)

// Response opcodes.
const (
	OpRSSL Opcode = 0xF001
	OpROLO Opcode = 0xF002
	OpRLP  Opcode = 0xF003
	OpROPC Opcode = 0xF004
	OpRTSS Opcode = 0xF005
	OpRFES Opcode = 0xF006
	OpRLS  Opcode = 0xF007
	OpRTXT Opcode = 0xF008
	OpRERR Opcode = 0xFFFF
)

var opcodeNames = map[Opcode]string{
	OpINFO: "INFO", OpAUTH: "AUTH", OpQUOT: "QUOT",
	OpCSPS: "CSPS", OpCSSA: "CSSA", OpCSSS: "CSSS", OpCSSR: "CSSR", OpCSSD: "CSSD",
	OpCOAO: "COAO", OpCORO: "CORO", OpCOAP: "COAP", OpCORP: "CORP", OpCOSD: "COSD",
	OpSSPS: "SSPS", OpSSFL: "SSFL", OpSSPC: "SSPC",
	OpSOLO: "SOLO", OpSOLP: "SOLP", OpSOPC: "SOPC",
	OpSTSS: "STSS", OpSFES: "SFES", OpSSLA: "SSLA", OpSSLM: "SSLM", OpSSPL: "SSPL",
	OpRSSL: "RSSL", OpROLO: "ROLO", OpRLP: "RLP", OpROPC: "ROPC", OpRTSS: "RTSS",
	OpRFES: "RFES", OpRLS: "RLS", OpRTXT: "RTXT", OpRERR: "RERR",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// openOpcodes never require authentication.
var openOpcodes = map[Opcode]bool{
	OpINFO: true, OpAUTH: true,
	OpSSPS: true, OpSSFL: true, OpSSPC: true,
	OpSOLO: true, OpSOLP: true, OpSOPC: true,
	OpSTSS: true, OpSFES: true, OpSSLA: true, OpSSLM: true, OpSSPL: true,
}

// RequiresAuth reports whether opcode o is a control opcode gated by §4.3.
func (o Opcode) RequiresAuth() bool {
	return !openOpcodes[o]
}
