// Package config holds the collector configuration: which endpoints to
// follow, where their messages are written and what is echoed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Targets are the websocket URLs to follow.
	Targets []string `yaml:"targets"`
	// Folders and Prefixes hold either one entry shared by every target or
	// one entry per target.
	Folders   []string `yaml:"folders"`
	Prefixes  []string `yaml:"prefixes"`
	Extension string   `yaml:"extension"`
	// ListenFor lists the message types to persist. Empty or
	// LISTEN_FOR_EVERYTHING persists every message.
	ListenFor   []string `yaml:"listen_for"`
	PrintAll    bool     `yaml:"print_all"`
	PrintLogged bool     `yaml:"print_logged"`
	// Shared lets targets that resolve to the same folder and prefix write
	// into one file.
	Shared bool `yaml:"shared"`

	ReconnectDelay   time.Duration `yaml:"reconnect_delay"`
	RotationInterval time.Duration `yaml:"rotation_interval"`
	// ReadTimeout recycles connections that stay silent this long. Zero
	// disables it.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	Log     LogConfig     `yaml:"log"`
	Mirrors MirrorsConfig `yaml:"mirrors"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MirrorsConfig lists optional destinations that receive a copy of every
// persisted line. A nil entry is disabled.
type MirrorsConfig struct {
	Http  *HttpConfig  `yaml:"http,omitempty"`
	Redis *RedisConfig `yaml:"redis,omitempty"`
	Kafka *KafkaConfig `yaml:"kafka,omitempty"`
	Mqtt  *MqttConfig  `yaml:"mqtt,omitempty"`
}

type HttpConfig struct {
	URL         string        `yaml:"url"`
	Method      string        `yaml:"method"`
	ContentType string        `yaml:"content_type"`
	Timeout     time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Stream   string        `yaml:"stream"`
	MaxLen   int64         `yaml:"max_len"`
	Timeout  time.Duration `yaml:"timeout"`
}

type KafkaConfig struct {
	Brokers []string      `yaml:"brokers"`
	Topic   string        `yaml:"topic"`
	Timeout time.Duration `yaml:"timeout"`
}

type MqttConfig struct {
	Broker   string        `yaml:"broker"`
	ClientID string        `yaml:"client_id"`
	Topic    string        `yaml:"topic"`
	QoS      byte          `yaml:"qos"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Endpoint is one target with its resolved output location.
type Endpoint struct {
	URL    string
	Folder string
	Prefix string
}

// FileKey identifies the output file family of e: endpoints with equal keys
// write to the same files.
func (e Endpoint) FileKey() string {
	return filepath.Clean(e.Folder) + "\x00" + e.Prefix
}

// Endpoints pairs every target with its folder and prefix. A single folder
// or prefix applies to all targets.
func (c *Config) Endpoints() []Endpoint {
	eps := make([]Endpoint, len(c.Targets))
	for i, url := range c.Targets {
		eps[i] = Endpoint{
			URL:    url,
			Folder: pick(c.Folders, i, len(c.Targets)),
			Prefix: pick(c.Prefixes, i, len(c.Targets)),
		}
	}
	return eps
}

func pick(values []string, i, n int) string {
	switch {
	case len(values) == n:
		return values[i]
	case len(values) > 0:
		return values[0]
	default:
		return ""
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
