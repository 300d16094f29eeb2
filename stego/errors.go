package stego

import "errors"

var (
	// ErrEncodingRange is returned when a message character does not fit in one byte.
	ErrEncodingRange = errors.New("character outside the 0-255 range")

	// ErrMessageTooLarge is returned when the framed message exceeds the canvas capacity
	// regardless of the offset.
	ErrMessageTooLarge = errors.New("message will never fit in the image")

	ErrOffsetOutOfRange  = errors.New("offset exceeds image length")
	ErrInsufficientSpace = errors.New("message will not fit in the image at this offset")

	// ErrNoTerminator is returned when a decode scan exhausts the canvas without
	// meeting the end-of-message marker.
	ErrNoTerminator = errors.New("no message terminator found")
)
