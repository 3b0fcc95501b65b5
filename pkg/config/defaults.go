package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultExtension        = "log"
	DefaultListenFor        = "LISTEN_FOR_EVERYTHING"
	DefaultReconnectDelay   = 1 * time.Second
	DefaultRotationInterval = 10 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultMirrorTimeout    = 5 * time.Second
	DefaultRedisStream      = "wslogger"
)

// ApplyDefaults fills every unset optional field.
func (c *Config) ApplyDefaults() {
	if len(c.Folders) == 0 {
		c.Folders = []string{""}
	}
	if len(c.Prefixes) == 0 {
		c.Prefixes = []string{""}
	}
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if len(c.ListenFor) == 0 {
		c.ListenFor = []string{DefaultListenFor}
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.RotationInterval == 0 {
		c.RotationInterval = DefaultRotationInterval
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	if m := c.Mirrors.Http; m != nil && m.Timeout == 0 {
		m.Timeout = DefaultMirrorTimeout
	}
	if m := c.Mirrors.Redis; m != nil {
		if m.Timeout == 0 {
			m.Timeout = DefaultMirrorTimeout
		}
		if m.Stream == "" {
			m.Stream = DefaultRedisStream
		}
	}
	if m := c.Mirrors.Kafka; m != nil && m.Timeout == 0 {
		m.Timeout = DefaultMirrorTimeout
	}
	if m := c.Mirrors.Mqtt; m != nil && m.Timeout == 0 {
		m.Timeout = DefaultMirrorTimeout
	}
}
