// Package esb implements the serial protocol spoken with the BLESB radio
// co-processor.
package esb

// The peer owns the radio-level ESB protocol; this package only covers the
// byte-oriented serial channel between the keyboard controller and the peer.
//
// Two protocols share the channel. Inbound bytes form newline-terminated
// ASCII control lines used for link-mode negotiation and coordinated reset.
// Outbound HID reports are wrapped in length-prefixed binary frames, at most
// 32 bytes each to fit the peer's radio payload limit.
//
// There is no acknowledgement or retransmission. A send that fails simply
// drops that report; retry policy, if any, belongs to the caller.
