package protocol

import "fmt"

// Typed field accessors. Each Put appends at the cursor and advances it;
// each Get reads from the cursor and advances it. These are the primitives
// the format-string driven Encode/Decode below are built from, and they are
// also exported directly for handlers that prefer not to spell out a format
// string for a single field.

// PutByte appends a single byte (format character 'b').
func (m *Message) PutByte(v uint8) error {
	if err := m.ensure(1); err != nil {
		return err
	}
	m.buf[m.cursor] = v
	m.cursor++
	if m.cursor > m.length {
		m.length = m.cursor
	}
	return nil
}

// GetByte reads a single byte.
func (m *Message) GetByte() (uint8, error) {
	if m.cursor+1 > m.length {
		return 0, ErrShortRead
	}
	v := m.buf[m.cursor]
	m.cursor++
	return v, nil
}

// PutUint16 appends a big-endian uint16 (format character 'd').
func (m *Message) PutUint16(v uint16) error {
	if err := m.ensure(2); err != nil {
		return err
	}
	m.buf[m.cursor] = byte(v >> 8)
	m.buf[m.cursor+1] = byte(v)
	m.cursor += 2
	if m.cursor > m.length {
		m.length = m.cursor
	}
	return nil
}

// GetUint16 reads a big-endian uint16.
func (m *Message) GetUint16() (uint16, error) {
	if m.cursor+2 > m.length {
		return 0, ErrShortRead
	}
	v := uint16(m.buf[m.cursor])<<8 | uint16(m.buf[m.cursor+1])
	m.cursor += 2
	return v, nil
}

// PutUint32 appends a big-endian uint32 (format character 'l').
func (m *Message) PutUint32(v uint32) error {
	if err := m.ensure(4); err != nil {
		return err
	}
	m.buf[m.cursor] = byte(v >> 24)
	m.buf[m.cursor+1] = byte(v >> 16)
	m.buf[m.cursor+2] = byte(v >> 8)
	m.buf[m.cursor+3] = byte(v)
	m.cursor += 4
	if m.cursor > m.length {
		m.length = m.cursor
	}
	return nil
}

// GetUint32 reads a big-endian uint32.
func (m *Message) GetUint32() (uint32, error) {
	if m.cursor+4 > m.length {
		return 0, ErrShortRead
	}
	v := uint32(m.buf[m.cursor])<<24 | uint32(m.buf[m.cursor+1])<<16 |
		uint32(m.buf[m.cursor+2])<<8 | uint32(m.buf[m.cursor+3])
	m.cursor += 4
	return v, nil
}

// PutString appends a length-prefixed string (format character 's'): one
// byte length followed by that many raw bytes, never NUL-terminated. Strings
// longer than 255 bytes are rejected rather than silently truncated.
func (m *Message) PutString(s string) error {
	if len(s) > 255 {
		return ErrStringTooLong
	}
	if err := m.ensure(1 + len(s)); err != nil {
		return err
	}
	m.buf[m.cursor] = byte(len(s))
	copy(m.buf[m.cursor+1:], s)
	m.cursor += 1 + len(s)
	if m.cursor > m.length {
		m.length = m.cursor
	}
	return nil
}

// GetString reads a length-prefixed string.
func (m *Message) GetString() (string, error) {
	if m.cursor+1 > m.length {
		return "", ErrShortRead
	}
	n := int(m.buf[m.cursor])
	if m.cursor+1+n > m.length {
		return "", ErrShortRead
	}
	s := string(m.buf[m.cursor+1 : m.cursor+1+n])
	m.cursor += 1 + n
	return s, nil
}

// Encode writes a sequence of values according to a format string made of
// 'b' (uint8), 'd' (uint16), 'l' (uint32) and 's' (string) characters, one
// per argument, mirroring the teacher's format-string-driven field codec.
// Format characters are case-insensitive.
func (m *Message) Encode(format string, args ...interface{}) error {
	if len(format) != len(args) {
		return fmt.Errorf("protocol: encode format/args length mismatch: %d format chars, %d args", len(format), len(args))
	}
	for i, f := range format {
		switch f {
		case 'b', 'B':
			v, ok := args[i].(uint8)
			if !ok {
				return ErrBadFormat
			}
			if err := m.PutByte(v); err != nil {
				return err
			}
		case 'd', 'D':
			v, ok := args[i].(uint16)
			if !ok {
				return ErrBadFormat
			}
			if err := m.PutUint16(v); err != nil {
				return err
			}
		case 'l', 'L':
			v, ok := args[i].(uint32)
			if !ok {
				return ErrBadFormat
			}
			if err := m.PutUint32(v); err != nil {
				return err
			}
		case 's', 'S':
			v, ok := args[i].(string)
			if !ok {
				return ErrBadFormat
			}
			if err := m.PutString(v); err != nil {
				return err
			}
		default:
			return ErrBadFormat
		}
	}
	return nil
}

// Decode reads a sequence of values according to the same format mini
// language as Encode, storing each into the pointer passed in args. Pointer
// types must match the format character: *uint8, *uint16, *uint32, *string.
func (m *Message) Decode(format string, args ...interface{}) error {
	if len(format) != len(args) {
		return fmt.Errorf("protocol: decode format/args length mismatch: %d format chars, %d args", len(format), len(args))
	}
	for i, f := range format {
		switch f {
		case 'b', 'B':
			p, ok := args[i].(*uint8)
			if !ok {
				return ErrBadFormat
			}
			v, err := m.GetByte()
			if err != nil {
				return fmt.Errorf("protocol: decoding field %d (%c): %w", i, f, err)
			}
			*p = v
		case 'd', 'D':
			p, ok := args[i].(*uint16)
			if !ok {
				return ErrBadFormat
			}
			v, err := m.GetUint16()
			if err != nil {
				return fmt.Errorf("protocol: decoding field %d (%c): %w", i, f, err)
			}
			*p = v
		case 'l', 'L':
			p, ok := args[i].(*uint32)
			if !ok {
				return ErrBadFormat
			}
			v, err := m.GetUint32()
			if err != nil {
				return fmt.Errorf("protocol: decoding field %d (%c): %w", i, f, err)
			}
			*p = v
		case 's', 'S':
			p, ok := args[i].(*string)
			if !ok {
				return ErrBadFormat
			}
			v, err := m.GetString()
			if err != nil {
				return fmt.Errorf("protocol: decoding field %d (%c): %w", i, f, err)
			}
			*p = v
		default:
			return ErrBadFormat
		}
	}
	return nil
}
