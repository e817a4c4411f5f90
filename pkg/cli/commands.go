package cli

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/esb"
	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/uart"
)

var (
	// OpenCmd opens a serial device.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[DEVICE [BAUD]]",
		Func: func(c *ishell.Context) {
			conf := uart.NewConfig()
			if len(c.Args) > 0 {
				conf.Device = c.Args[0]
			}
			if len(c.Args) > 1 {
				baud, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(fmt.Errorf("bad baud rate %q", c.Args[1]))
					return
				}
				conf.Baud = baud
			}
			if err := ShellFrom(c).Open(conf); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the current port.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// StatusCmd prints the link state.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: MustBeOpen(func(c *ishell.Context) {
			if ShellFrom(c).Link().IsConnected() {
				c.Println("connected")
			} else {
				c.Println("disconnected")
			}
		}),
	}

	// QueryCmd re-sends the link mode query.
	QueryCmd = ishell.Cmd{
		Name:    "query",
		Aliases: []string{"q"},
		Help:    "",
		Func: MustBeOpen(func(c *ishell.Context) {
			if err := ShellFrom(c).Link().Query(); err != nil {
				c.Err(err)
			}
		}),
	}

	// ResetCmd requests a coordinated reset from the peer.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "",
		Func: MustBeOpen(func(c *ishell.Context) {
			if err := ShellFrom(c).Link().RequestReset(); err != nil {
				c.Err(err)
			}
		}),
	}

	// KeyboardCmd sends a keyboard report frame.
	KeyboardCmd = ishell.Cmd{
		Name:    "kbd",
		Aliases: []string{"k"},
		Help:    "HEXBYTES...",
		Func:    sendCmd(esb.ReportKeyboard),
	}

	// ConsumerCmd sends a consumer report frame.
	ConsumerCmd = ishell.Cmd{
		Name: "consumer",
		Help: "HEXBYTES...",
		Func: sendCmd(esb.ReportConsumer),
	}

	// MouseCmd sends a mouse report frame.
	MouseCmd = ishell.Cmd{
		Name: "mouse",
		Help: "HEXBYTES...",
		Func: sendCmd(esb.ReportMouse),
	}

	// LineCmd sends a raw control line.
	LineCmd = ishell.Cmd{
		Name: "line",
		Help: "TEXT",
		Func: MustBeOpen(func(c *ishell.Context) {
			if err := ShellFrom(c).Link().SendLine(strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
			}
		}),
	}
)

func sendCmd(t esb.ReportType) func(c *ishell.Context) {
	return MustBeOpen(func(c *ishell.Context) {
		payload, err := parseHex(c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		if err := ShellFrom(c).Link().SendFrame(t, payload); err != nil {
			c.Err(err)
		}
	})
}

func parseHex(args []string) ([]byte, error) {
	s := strings.Join(args, "")
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad hex payload: %v", err)
	}
	return b, nil
}
