package esb

// lineCap bounds the control line buffer. The peer never sends longer
// lines; extra bytes before the terminator are dropped.
const lineCap = 32

// LineResult is the outcome of one parsing step.
type LineResult struct {
	// Line is the completed control line, without the terminator.
	Line string
	// Complete is true when this byte terminated a line.
	Complete bool
	// Truncated is true when bytes were dropped because the buffer
	// filled up before the terminator.
	Truncated bool
}

// LineParser accumulates inbound bytes into newline-terminated control
// lines. It is a pure state machine with no I/O, so it is safe to call
// byte by byte from the receive path.
type LineParser struct {
	buf      [lineCap]byte
	n        int
	overflow bool
}

// Parse consumes one byte. The completed line, if any, is returned with
// Complete set; the buffer is reset for the next line. An overflowed line
// is still delivered truncated at the terminator.
func (p *LineParser) Parse(b byte) (lr LineResult) {
	if b != '\n' {
		if p.n < len(p.buf) {
			p.buf[p.n] = b
			p.n++
		} else {
			p.overflow = true
		}
		return
	}
	lr.Line = string(p.buf[:p.n])
	lr.Complete = true
	lr.Truncated = p.overflow
	p.Reset()
	return
}

// Reset discards any partially accumulated line.
func (p *LineParser) Reset() {
	p.n, p.overflow = 0, false
}
