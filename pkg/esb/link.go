package esb

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"
)

// Control lines exchanged with the peer.
const (
	lineESB = "ESB"
	lineRST = "RST"
)

// ConnectStrategy selects what drives the disconnected-to-connected
// transition.
type ConnectStrategy int

const (
	// ConnectOnHandshake marks the link connected only when the peer
	// confirms link mode with an "ESB" line.
	ConnectOnHandshake ConnectStrategy = iota
	// ConnectOnFirstSend optimistically marks the link connected after
	// the first successful frame transmission. The connected gate on
	// sends is skipped in this mode.
	ConnectOnFirstSend
)

// Rebooter performs the coordinated cold restart of the local device.
type Rebooter interface {
	// Reboot restarts the local device. It does not return.
	Reboot()
}

// RebootFunc is func type of Rebooter.
type RebootFunc func()

// Reboot implements Rebooter.
func (f RebootFunc) Reboot() { f() }

// ReadyChecker is implemented by endpoints that can report availability.
type ReadyChecker interface {
	Ready() bool
}

// Default timing parameters.
const (
	// DefaultLockTimeout bounds the wait for the transmit lock.
	DefaultLockTimeout = 10 * time.Millisecond
	// DefaultResetGrace lets the reset acknowledgement flush before the
	// local device restarts.
	DefaultResetGrace = 50 * time.Millisecond
)

// Link owns the serial channel to the peer. It runs the control-line
// protocol on the receive path and serializes outbound HID frames on the
// send path. Both paths update the shared connection state.
type Link struct {
	ReadWriter  io.ReadWriter
	Notifier    ConnNotifier
	Rebooter    Rebooter
	Strategy    ConnectStrategy
	LockTimeout time.Duration
	ResetGrace  time.Duration

	conn   connState
	parser LineParser

	// capacity-1 slot implementing the transmit lock; a bounded wait
	// needs a channel, sync.Mutex has no timed acquire.
	sendSlot chan struct{}
}

// NewLink creates a Link over the byte endpoint.
func NewLink(rw io.ReadWriter) *Link {
	l := &Link{
		ReadWriter:  rw,
		LockTimeout: DefaultLockTimeout,
		ResetGrace:  DefaultResetGrace,
		sendSlot:    make(chan struct{}, 1),
	}
	l.sendSlot <- struct{}{}
	return l
}

// IsConnected reports whether the peer has the radio link up. It never
// blocks.
func (l *Link) IsConnected() bool {
	return l.conn.get()
}

// Ready reports whether the serial endpoint can accept writes.
func (l *Link) Ready() bool {
	if l.ReadWriter == nil {
		return false
	}
	if rc, ok := l.ReadWriter.(ReadyChecker); ok {
		return rc.Ready()
	}
	return true
}

// Run processes inbound bytes until the context is canceled or the
// endpoint fails. It first queries the peer for link mode; the reply
// arrives asynchronously through the same loop.
func (l *Link) Run(ctx context.Context) error {
	if !l.Ready() {
		return ErrDeviceUnavailable
	}
	glog.V(1).Info("querying peer for link mode")
	if err := l.SendLine(lineESB); err != nil {
		glog.Warningf("link mode query failed: %v", err)
	}

	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case b := <-byteCh:
			if lr := l.parser.Parse(b); lr.Complete {
				l.handleLine(ctx, lr)
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Link) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			n, err := l.ReadWriter.Read(buf)
			if err != nil {
				errCh <- err
				return
			}
			if n > 0 {
				byteCh <- buf[0]
			}
		}
	}
}

func (l *Link) handleLine(ctx context.Context, lr LineResult) {
	if lr.Truncated {
		glog.V(2).Infof("control line truncated at %d bytes", lineCap)
	}
	switch lr.Line {
	case lineESB:
		glog.Info("peer confirmed link mode")
		l.setConnected(ctx, true)
	case lineRST:
		l.reset()
	default:
		glog.Warningf("unknown control line %q", lr.Line)
	}
}

// reset acknowledges a peer reset request and restarts the local device.
// Terminal: Reboot does not return.
func (l *Link) reset() {
	glog.Info("peer requested reset, rebooting")
	if err := l.SendLine(lineRST); err != nil {
		// The restart is the overriding goal; a lost ack only costs
		// the peer a timeout.
		glog.Warningf("reset ack failed: %v", err)
	}
	time.Sleep(l.ResetGrace)
	if l.Rebooter != nil {
		l.Rebooter.Reboot()
	}
}

func (l *Link) setConnected(ctx context.Context, connected bool) {
	if !l.conn.set(connected) {
		return
	}
	glog.Infof("link connection: %v", connected)
	if n := l.Notifier; n != nil {
		n.ConnStateChanged(ctx, connected)
	}
}

// SendFrame encodes one HID frame and writes it to the endpoint as a
// single uninterrupted sequence. No retry on any failure.
func (l *Link) SendFrame(t ReportType, payload []byte) error {
	if l.Strategy != ConnectOnFirstSend && !l.conn.get() {
		return ErrNotConnected
	}
	if !l.Ready() {
		return ErrDeviceUnavailable
	}
	f, err := NewFrame(t, payload)
	if err != nil {
		return err
	}
	if err := l.acquire(); err != nil {
		return err
	}
	_, err = f.WriteTo(l.ReadWriter)
	l.release()
	if err != nil {
		return err
	}
	glog.V(3).Infof("sent %s frame, %d bytes", t, f.Size())
	if l.Strategy == ConnectOnFirstSend {
		l.setConnected(context.Background(), true)
	}
	return nil
}

// SendLine writes one control line, terminator included, under the
// transmit lock.
func (l *Link) SendLine(line string) error {
	if !l.Ready() {
		return ErrDeviceUnavailable
	}
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()
	_, err := io.WriteString(l.ReadWriter, line+"\n")
	return err
}

// Query re-sends the link mode query to the peer.
func (l *Link) Query() error {
	return l.SendLine(lineESB)
}

// RequestReset asks the peer for a coordinated reset. The peer replies
// with its own "RST" line, which ends up in reset.
func (l *Link) RequestReset() error {
	return l.SendLine(lineRST)
}

func (l *Link) acquire() error {
	select {
	case <-l.sendSlot:
		return nil
	default:
	}
	timer := time.NewTimer(l.LockTimeout)
	defer timer.Stop()
	select {
	case <-l.sendSlot:
		return nil
	case <-timer.C:
		return ErrBusy
	}
}

func (l *Link) release() {
	l.sendSlot <- struct{}{}
}
