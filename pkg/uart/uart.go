// Package uart provides the serial byte endpoint the transport runs over.
package uart

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is a byte-oriented serial endpoint.
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input.
	Flush() error
	// Ready reports whether the port can accept I/O.
	Ready() bool
}

// Config defines the configurations for the serial port.
type Config struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

var defaultConfig = Config{
	Device: "/dev/ttyACM0",
	Baud:   115200,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Serial device path.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout,
		"Serial read timeout, 0 for blocking reads.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Open opens the serial port using the config.
func (c *Config) Open() (Port, error) {
	p, err := serial.OpenPort(&serial.Config{
		Name:        c.Device,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Device, err)
	}
	return &port{Port: p}, nil
}

type port struct {
	*serial.Port
}

func (p *port) Ready() bool {
	return p.Port != nil
}
