package protocol

import "bytes"

// A buffer is absent when it is nil. A non-nil buffer of length zero is a
// mismatch: the caller claimed a buffer and supplied nothing.
func checkPresence(buf []byte) error {
	if buf != nil && len(buf) == 0 {
		return ErrLengthMismatch
	}
	return nil
}

// ValidateWrite checks the arguments of a write exchange. Each buffer must be
// consistent on its own and at least one of them must carry bytes.
func ValidateWrite(command, data []byte) error {
	if err := checkPresence(command); err != nil {
		return err
	}
	if err := checkPresence(data); err != nil {
		return err
	}
	if len(command) == 0 && len(data) == 0 {
		return ErrEmptyExchange
	}
	return nil
}

// ValidateRead checks the arguments of a command/response exchange. The
// command is mandatory, the reply buffer is optional.
func ValidateRead(command, data []byte) error {
	if len(command) == 0 {
		return ErrMissingCommand
	}
	return checkPresence(data)
}

// ValidateDirectRead checks the arguments of a command-less read.
func ValidateDirectRead(data []byte) error {
	if len(data) == 0 {
		return ErrMissingData
	}
	return nil
}

// WriteBuffer concatenates command and data into one outgoing buffer.
func WriteBuffer(command, data []byte) []byte {
	out := make([]byte, len(command)+len(data))
	copy(out, command)
	copy(out[len(command):], data)
	return out
}

// ReadPadding returns the filler clocked out during the reply phase of a
// read: one NOP per payload byte plus one for the leading status byte.
func ReadPadding(payloadLen int) []byte {
	return bytes.Repeat([]byte{NOP}, StatusByteSize+payloadLen)
}

// IsCommand reports whether command starts with op.
func IsCommand(command []byte, op Opcode) bool {
	return len(command) >= OpcodeSize && command[0] == op[0] && command[1] == op[1]
}
