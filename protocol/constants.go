package protocol

// LR11xx command and timing constants (platform independent). Higher layers
// depend on this file rather than on literals.
const (
	// Opcodes are two bytes, most significant byte first.
	OpcodeSize = 2

	// NOP is clocked out while the device shifts a reply back. The first
	// byte of every reply is the stat1 byte and carries no payload.
	NOP            = 0x00
	StatusByteSize = 1

	// System opcodes used by this module and its tools.
	OpGetVersion = 0x0101
	OpGetTemp    = 0x011A
	OpSetSleep   = 0x011B

	// Reply sizes (payload only, status byte excluded).
	VersionReplySize = 4
	TempReplySize    = 2

	// Settle and reset timing (microseconds).
	SleepSettleMicros = 500
	ResetPulseMicros  = 200
	ResetPollMillis   = 1
)

// Opcode is the leading pair of bytes of a command.
type Opcode [OpcodeSize]byte

// DefaultSleepOpcode is the LR1110 SetSleep opcode. A device revision that
// moves it must inject its own value through the radio configuration.
var DefaultSleepOpcode = OpcodeOf(OpSetSleep)

// OpcodeOf splits a 16-bit opcode into its wire bytes.
func OpcodeOf(op uint16) Opcode {
	return Opcode{byte(op >> 8), byte(op)}
}

// Command builds a command buffer from an opcode and its parameters.
func Command(op uint16, params ...byte) []byte {
	cmd := make([]byte, 0, OpcodeSize+len(params))
	cmd = append(cmd, byte(op>>8), byte(op))
	return append(cmd, params...)
}
