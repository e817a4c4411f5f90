package esb

import (
	"flag"
	"io"
	"time"
)

// Config defines the configurations for the link.
type Config struct {
	// Strategy is "handshake" or "first-send".
	Strategy    string
	LockTimeout time.Duration
	ResetGrace  time.Duration
	Pointing    bool
}

var defaultConfig = Config{
	Strategy:    "handshake",
	LockTimeout: DefaultLockTimeout,
	ResetGrace:  DefaultResetGrace,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Strategy, "connect-strategy", defaultConfig.Strategy,
		"Connection strategy: handshake or first-send.")
	flag.DurationVar(&defaultConfig.LockTimeout, "lock-timeout", defaultConfig.LockTimeout,
		"Transmit lock acquisition timeout.")
	flag.DurationVar(&defaultConfig.ResetGrace, "reset-grace", defaultConfig.ResetGrace,
		"Delay between reset acknowledgement and reboot.")
	flag.BoolVar(&defaultConfig.Pointing, "pointing", defaultConfig.Pointing,
		"Enable the mouse report path.")
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

// ConnectStrategy maps the configured name to a strategy. Unknown names
// fall back to handshake.
func (c *Config) ConnectStrategy() ConnectStrategy {
	if c.Strategy == "first-send" {
		return ConnectOnFirstSend
	}
	return ConnectOnHandshake
}

// NewLink creates a link over rw using the config.
func (c *Config) NewLink(rw io.ReadWriter) *Link {
	l := NewLink(rw)
	l.Strategy = c.ConnectStrategy()
	if c.LockTimeout > 0 {
		l.LockTimeout = c.LockTimeout
	}
	if c.ResetGrace > 0 {
		l.ResetGrace = c.ResetGrace
	}
	return l
}

// NewHID creates a HID sender using the config.
func (c *Config) NewHID(link *Link, source ReportSource) *HID {
	h := NewHID(link, source)
	h.Pointing = c.Pointing
	return h
}
