package esb

import "fmt"

// ReportSource supplies the raw bytes of the current HID reports on
// demand. The local HID stack owns report layout; bytes pass through
// untouched.
type ReportSource interface {
	KeyboardReport() ([]byte, error)
	ConsumerReport() ([]byte, error)
	MouseReport() ([]byte, error)
}

// HID sends the current HID reports over the link, one frame per report.
type HID struct {
	Link   *Link
	Source ReportSource
	// Pointing enables the mouse report path.
	Pointing bool
}

// NewHID creates a HID sender over the link.
func NewHID(link *Link, source ReportSource) *HID {
	return &HID{Link: link, Source: source}
}

// IsReady reports whether a send would not be discarded: the link is
// connected and the endpoint is available. Callers use it to avoid
// building a report for nothing.
func (h *HID) IsReady() bool {
	return h.Link.IsConnected() && h.Link.Ready()
}

// SendKeyboardReport sends the current keyboard report.
func (h *HID) SendKeyboardReport() error {
	return h.send(ReportKeyboard, h.Source.KeyboardReport)
}

// SendConsumerReport sends the current consumer report.
func (h *HID) SendConsumerReport() error {
	return h.send(ReportConsumer, h.Source.ConsumerReport)
}

// SendMouseReport sends the current mouse report. Fails with
// ErrInvalidInput unless pointing support is enabled.
func (h *HID) SendMouseReport() error {
	if !h.Pointing {
		return fmt.Errorf("%w: pointing not enabled", ErrInvalidInput)
	}
	return h.send(ReportMouse, h.Source.MouseReport)
}

func (h *HID) send(t ReportType, report func() ([]byte, error)) error {
	body, err := report()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: empty %s report", ErrInvalidInput, t)
	}
	return h.Link.SendFrame(t, body)
}
