package esb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testStream struct {
	byteCh  chan byte
	writeCh chan byte
	ready   bool
}

func newTestStream() *testStream {
	return &testStream{
		byteCh:  make(chan byte, 64),
		writeCh: make(chan byte, 256),
		ready:   true,
	}
}

func (s *testStream) Read(p []byte) (int, error) {
	p[0] = <-s.byteCh
	return 1, nil
}

func (s *testStream) Write(p []byte) (int, error) {
	for _, b := range p {
		s.writeCh <- b
	}
	return len(p), nil
}

func (s *testStream) Ready() bool {
	return s.ready
}

func (s *testStream) inject(p []byte) {
	for _, b := range p {
		s.byteCh <- b
	}
}

type linkTestCtx struct {
	t        *testing.T
	stream   *testStream
	link     *Link
	notifyCh chan bool
	rebootCh chan struct{}
	cancel   func()

	lock     sync.Mutex
	notified []bool
}

func newLinkTestCtx(t *testing.T) *linkTestCtx {
	tctx := &linkTestCtx{
		t:        t,
		stream:   newTestStream(),
		notifyCh: make(chan bool, 4),
		rebootCh: make(chan struct{}, 1),
	}
	tctx.link = NewLink(tctx.stream)
	tctx.link.ResetGrace = time.Millisecond
	tctx.link.Notifier = ConnStateChangedFunc(func(ctx context.Context, connected bool) {
		tctx.lock.Lock()
		tctx.notified = append(tctx.notified, connected)
		tctx.lock.Unlock()
		tctx.notifyCh <- connected
	})
	tctx.link.Rebooter = RebootFunc(func() {
		tctx.rebootCh <- struct{}{}
	})
	return tctx
}

func (c *linkTestCtx) start() *linkTestCtx {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.t.Cleanup(cancel)
	go c.link.Run(ctx)
	// the startup link mode query
	return c.expectWritten([]byte("ESB\n"))
}

func (c *linkTestCtx) expectWritten(expected []byte) *linkTestCtx {
	for i := range expected {
		select {
		case b := <-c.stream.writeCh:
			require.Equalf(c.t, expected[i], b, "written[%d] mismatch", i)
		case <-time.After(500 * time.Millisecond):
			c.t.Fatalf("written[%d] timeout", i)
		}
	}
	return c
}

func (c *linkTestCtx) expectNoWrite() *linkTestCtx {
	select {
	case b := <-c.stream.writeCh:
		c.t.Fatalf("unexpected write 0x%02x", b)
	default:
	}
	return c
}

func (c *linkTestCtx) waitNotify() *linkTestCtx {
	select {
	case <-c.notifyCh:
	case <-time.After(500 * time.Millisecond):
		c.t.Fatal("notification timeout")
	}
	return c
}

func (c *linkTestCtx) notifications() []bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]bool(nil), c.notified...)
}

func TestLinkHandshakeConnects(t *testing.T) {
	tctx := newLinkTestCtx(t).start()
	require.False(t, tctx.link.IsConnected())

	tctx.stream.inject([]byte("ESB\n"))
	tctx.waitNotify()
	require.True(t, tctx.link.IsConnected())
	require.Equal(t, []bool{true}, tctx.notifications())
}

func TestLinkRepeatedHandshakeNotifiesOnce(t *testing.T) {
	tctx := newLinkTestCtx(t).start()
	tctx.stream.inject([]byte("ESB\nESB\nESB\n"))
	tctx.waitNotify()
	require.Equal(t, []bool{true}, tctx.notifications())
}

func TestLinkIgnoresUnknownLines(t *testing.T) {
	tctx := newLinkTestCtx(t).start()
	tctx.stream.inject([]byte("esb\nESB \nBOGUS\n\n"))
	// a real handshake still works afterwards, proving nothing above
	// changed the state
	tctx.stream.inject([]byte("ESB\n"))
	tctx.waitNotify()
	require.Equal(t, []bool{true}, tctx.notifications())
}

func TestLinkOverflowedLineRecovers(t *testing.T) {
	tctx := newLinkTestCtx(t).start()
	junk := make([]byte, lineCap*3)
	for i := range junk {
		junk[i] = 'z'
	}
	tctx.stream.inject(junk)
	tctx.stream.inject([]byte("\nESB\n"))
	tctx.waitNotify()
	require.True(t, tctx.link.IsConnected())
}

func TestLinkResetCoordination(t *testing.T) {
	tctx := newLinkTestCtx(t).start()
	tctx.stream.inject([]byte("RST\n"))
	tctx.expectWritten([]byte("RST\n"))
	select {
	case <-tctx.rebootCh:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("reboot timeout")
	}
}

func TestSendFrameNotConnected(t *testing.T) {
	tctx := newLinkTestCtx(t)
	err := tctx.link.SendFrame(ReportKeyboard, []byte{1, 2, 3})
	require.Equal(t, ErrNotConnected, err)
	tctx.expectNoWrite()
}

func TestSendFrameConnected(t *testing.T) {
	tctx := newLinkTestCtx(t)
	tctx.link.setConnected(context.Background(), true)
	err := tctx.link.SendFrame(ReportKeyboard, []byte{0, 0, 4, 5, 6, 0, 0, 0})
	require.NoError(t, err)
	tctx.expectWritten([]byte{1, 8, 0, 0, 4, 5, 6, 0, 0, 0})
}

func TestSendFrameOversize(t *testing.T) {
	tctx := newLinkTestCtx(t)
	tctx.link.setConnected(context.Background(), true)
	err := tctx.link.SendFrame(ReportConsumer, make([]byte, MaxFrameSize))
	require.Equal(t, ErrPayloadTooLarge, err)
	tctx.expectNoWrite()
}

func TestSendFrameDeviceUnavailable(t *testing.T) {
	link := NewLink(nil)
	link.setConnected(context.Background(), true)
	require.Equal(t, ErrDeviceUnavailable, link.SendFrame(ReportKeyboard, []byte{1}))

	tctx := newLinkTestCtx(t)
	tctx.stream.ready = false
	tctx.link.setConnected(context.Background(), true)
	require.Equal(t, ErrDeviceUnavailable, tctx.link.SendFrame(ReportKeyboard, []byte{1}))
}

func TestSendFrameOptimisticStrategy(t *testing.T) {
	tctx := newLinkTestCtx(t)
	tctx.link.Strategy = ConnectOnFirstSend
	require.False(t, tctx.link.IsConnected())

	require.NoError(t, tctx.link.SendFrame(ReportKeyboard, []byte{9}))
	tctx.expectWritten([]byte{1, 1, 9}).waitNotify()
	require.True(t, tctx.link.IsConnected())

	require.NoError(t, tctx.link.SendFrame(ReportKeyboard, []byte{8}))
	tctx.expectWritten([]byte{1, 1, 8})
	require.Equal(t, []bool{true}, tctx.notifications())
}

type blockedStream struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blockedStream) Read(p []byte) (int, error) {
	<-s.release
	return 0, errors.New("closed")
}

func (s *blockedStream) Write(p []byte) (int, error) {
	s.entered <- struct{}{}
	<-s.release
	return len(p), nil
}

func TestSendFrameBusy(t *testing.T) {
	stream := &blockedStream{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	link := NewLink(stream)
	link.LockTimeout = 5 * time.Millisecond
	link.setConnected(context.Background(), true)

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- link.SendFrame(ReportKeyboard, []byte{1})
	}()
	<-stream.entered

	require.Equal(t, ErrBusy, link.SendFrame(ReportKeyboard, []byte{2}))

	close(stream.release)
	require.NoError(t, <-doneCh)
}

func TestSendLineAndQueries(t *testing.T) {
	tctx := newLinkTestCtx(t)
	require.NoError(t, tctx.link.Query())
	tctx.expectWritten([]byte("ESB\n"))
	require.NoError(t, tctx.link.RequestReset())
	tctx.expectWritten([]byte("RST\n"))
}
