// Package cli provides an interactive console speaking the transport wire
// protocol directly over a serial port, for bring-up and debugging.
package cli

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/esb"
	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/uart"
)

// Shell provides an ishell backed interactive console.
type Shell struct {
	Interactive bool

	Shell *ishell.Shell

	port   uart.Port
	link   *esb.Link
	cancel func()
}

const (
	shellKey     = "$shell"
	closedPrompt = "[none] > "
)

var (
	// flags

	evalOnly bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&StatusCmd,
		&QueryCmd,
		&ResetCmd,
		&KeyboardCmd,
		&ConsumerCmd,
		&MouseCmd,
		&LineCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Link gets the link of the open port, nil when closed.
func (s *Shell) Link() *esb.Link {
	return s.link
}

// Open opens the serial device and starts the link over it. Inbound
// control traffic is reported on the console.
func (s *Shell) Open(conf *uart.Config) error {
	s.Close()
	port, err := conf.Open()
	if err != nil {
		return err
	}
	s.port = port
	s.link = esb.NewConfig().NewLink(port)
	s.link.Notifier = esb.ConnStateChangedFunc(func(_ context.Context, connected bool) {
		s.Shell.Printf("link connection: %v\n", connected)
	})
	s.link.Rebooter = esb.RebootFunc(func() {
		// the console only observes; the bridge device is what reboots
		s.Shell.Println("peer requested coordinated reset")
	})
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		if err := s.link.Run(ctx); err != nil && err != context.Canceled {
			s.Shell.Printf("link stopped: %v\n", err)
		}
	}()
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", conf.Device))
	return nil
}

// Close stops the link and closes the port.
func (s *Shell) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.port != nil {
		s.port.Close()
		s.port = nil
	}
	s.link = nil
	s.Shell.SetPrompt(closedPrompt)
}

// MustBeOpen wraps a command func that requires an open port.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).link == nil {
			c.Err(fmt.Errorf("no port open"))
			return
		}
		fn(c)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Close()
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is the entry for the console command.
func Main() {
	flag.Parse()
	New().Run(flag.Args()...)
}
