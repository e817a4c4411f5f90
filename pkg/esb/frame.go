package esb

import "io"

// ReportType identifies the kind of HID report carried by a frame.
type ReportType byte

// HID report kinds on the wire.
const (
	ReportKeyboard ReportType = 1
	ReportConsumer ReportType = 2
	ReportMouse    ReportType = 3
)

// IsValid checks if it's a known report type.
func (t ReportType) IsValid() bool {
	return t >= ReportKeyboard && t <= ReportMouse
}

func (t ReportType) String() string {
	switch t {
	case ReportKeyboard:
		return "keyboard"
	case ReportConsumer:
		return "consumer"
	case ReportMouse:
		return "mouse"
	}
	return "unknown"
}

const (
	headerSize = 2
	// MaxFrameSize is the largest frame the peer radio can carry,
	// header included.
	MaxFrameSize = 32
	// MaxReportSize is the largest report body a frame can carry.
	MaxReportSize = MaxFrameSize - headerSize
)

// Frame is one outbound HID packet: a 2-byte header (type, length)
// followed by the raw report body.
type Frame struct {
	Type    ReportType
	Payload []byte
}

// NewFrame builds a frame and validates it fits the radio payload limit.
// Oversize payloads are rejected, never truncated.
func NewFrame(t ReportType, payload []byte) (*Frame, error) {
	if headerSize+len(payload) > MaxFrameSize {
		return nil, ErrPayloadTooLarge
	}
	return &Frame{Type: t, Payload: payload}, nil
}

// Size returns the encoded size in bytes.
func (f *Frame) Size() int {
	return headerSize + len(f.Payload)
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() []byte {
	b := make([]byte, f.Size())
	b[0], b[1] = byte(f.Type), byte(len(f.Payload))
	copy(b[headerSize:], f.Payload)
	return b
}

// WriteTo writes the encoded frame as one sequence.
func (f *Frame) WriteTo(w io.Writer) (int, error) {
	return w.Write(f.Bytes())
}

// ReadFrame decodes one frame, the way the peer sees it. Used by the
// receiving side of the link and by tests.
func ReadFrame(r io.Reader) (*Frame, error) {
	var head [headerSize]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, err
	}
	f := &Frame{Type: ReportType(head[0])}
	if int(head[1]) > MaxReportSize {
		return nil, ErrPayloadTooLarge
	}
	if head[1] > 0 {
		f.Payload = make([]byte, head[1])
		if _, err := io.ReadFull(r, f.Payload); err != nil {
			return nil, err
		}
	}
	return f, nil
}
