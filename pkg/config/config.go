// Package config loads dvbctld's daemon configuration from an INI file,
// generalizing the teacher's EDS object-dictionary parsing idiom
// (od_parser.go's use of gopkg.in/ini.v1) to plain daemon settings.
package config

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"
)

// defaultPortBase and defaultMaxConnections reproduce the original daemon's
// historical constants (BinaryCommsInit's 54197 + adapter, MAX_CONNECTIONS).
const (
	defaultPortBase       = 54197
	defaultMaxConnections = 2
	defaultAcceptPoll     = 200 * time.Millisecond
)

// Config holds everything dvbctld needs to start serving.
type Config struct {
	Adapter        int
	PortBase       int
	MaxConnections int
	AcceptPoll     time.Duration

	StreamerName string
	Username     string
	Password     string

	MetricsAddr string // empty disables the /metrics HTTP surface
}

// Default returns the historical defaults used when no config file is
// supplied, and by tests that don't care about configuration at all.
func Default() *Config {
	return &Config{
		Adapter:        0,
		PortBase:       defaultPortBase,
		MaxConnections: defaultMaxConnections,
		AcceptPoll:     defaultAcceptPoll,
		StreamerName:   "dvbstreamer",
		MetricsAddr:    "",
	}
}

// Port is the TCP port BinaryControl listens on for this adapter, mirroring
// BinaryCommsInit's port = BINARY_COMMS_PORT + adapter.
func (c *Config) Port() int {
	return c.PortBase + c.Adapter
}

// Load reads an INI file into a Config seeded with Default(), so a config
// file only needs to specify the settings it wants to override.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}

	section := f.Section("daemon")
	cfg.Adapter = section.Key("adapter").MustInt(cfg.Adapter)
	cfg.PortBase = section.Key("port_base").MustInt(cfg.PortBase)
	cfg.MaxConnections = section.Key("max_connections").MustInt(cfg.MaxConnections)
	cfg.StreamerName = section.Key("streamer_name").MustString(cfg.StreamerName)

	pollMillis := section.Key("accept_poll_ms").MustInt(int(cfg.AcceptPoll / time.Millisecond))
	cfg.AcceptPoll = time.Duration(pollMillis) * time.Millisecond

	auth := f.Section("auth")
	cfg.Username = auth.Key("username").MustString("")
	cfg.Password = auth.Key("password").MustString("")

	metrics := f.Section("metrics")
	cfg.MetricsAddr = metrics.Key("listen_addr").MustString("")

	if cfg.MaxConnections <= 0 {
		return nil, fmt.Errorf("config: max_connections must be positive, got %d", cfg.MaxConnections)
	}

	return cfg, nil
}
