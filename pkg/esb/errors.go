package esb

import "errors"

var (
	// ErrNotConnected indicates a send was attempted while the link is down.
	ErrNotConnected = errors.New("not connected")
	// ErrDeviceUnavailable indicates the serial endpoint is missing or not ready.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrPayloadTooLarge indicates the frame would exceed the radio payload limit.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrBusy indicates the transmit lock was not acquired within the timeout.
	ErrBusy = errors.New("transmit busy")
	// ErrInvalidInput indicates the report source returned no usable data.
	ErrInvalidInput = errors.New("invalid input")
)
