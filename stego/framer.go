package stego

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	BitsInByte = 8

	maxCodePoint = 0xFF
)

// Bitstream is an ordered sequence of 0/1 values, one per element.
type Bitstream []uint8

// String renders the bitstream as a run of '0' and '1' characters.
func (bs Bitstream) String() string {
	var sb strings.Builder
	sb.Grow(len(bs))
	for _, bit := range bs {
		sb.WriteByte('0' + bit&1)
	}
	return sb.String()
}

// Frame converts a message to its terminated bitstream: eight bits per
// character, most significant bit first, followed by eight zero bits.
func Frame(message string) (Bitstream, error) {
	bits := make(Bitstream, 0, FramedLength(message))
	for i, char := range message {
		if char > maxCodePoint {
			return nil, fmt.Errorf("%w: %q (U+%04X) at byte %d", ErrEncodingRange, char, char, i)
		}
		bits = appendByteBits(bits, byte(char))
	}

	// terminator
	return append(bits, make(Bitstream, BitsInByte)...), nil
}

// FramedLength returns the number of bits Frame produces for message.
func FramedLength(message string) int {
	return (utf8.RuneCountInString(message) + 1) * BitsInByte
}

// Unframe strips the terminator and regroups the remaining bits into
// characters. It panics if bits is not a whole number of bytes or lacks room
// for the terminator.
func Unframe(bits Bitstream) string {
	if len(bits) < BitsInByte || len(bits)%BitsInByte != 0 {
		panic(fmt.Sprintf("stego: unframe of %d bits, want a positive multiple of %d", len(bits), BitsInByte))
	}

	payload := bits[:len(bits)-BitsInByte]
	runes := make([]rune, 0, len(payload)/BitsInByte)
	for i := 0; i < len(payload); i += BitsInByte {
		var b byte
		for j := 0; j < BitsInByte; j++ {
			b = (b << 1) | (payload[i+j] & 1)
		}
		runes = append(runes, rune(b))
	}
	return string(runes)
}

// IsFinished reports whether bits ends with a byte-aligned terminator.
//
// A zero byte carried as message content is indistinguishable from the
// terminator; decoding stops at the first byte-aligned one.
func IsFinished(bits Bitstream) bool {
	if len(bits) == 0 || len(bits)%BitsInByte != 0 {
		return false
	}
	for _, bit := range bits[len(bits)-BitsInByte:] {
		if bit != 0 {
			return false
		}
	}
	return true
}

func appendByteBits(bits Bitstream, b byte) Bitstream {
	for i := BitsInByte - 1; i >= 0; i-- {
		bits = append(bits, (b>>i)&1)
	}
	return bits
}
