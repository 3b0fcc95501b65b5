package config

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrCountMismatch is returned when folder or prefix counts fit neither
	// one-for-all nor one-per-target.
	ErrCountMismatch = errors.New("target/folder/prefix count mismatch")
	// ErrOverlap is returned when two targets would write the same file
	// without sharing being enabled.
	ErrOverlap = errors.New("targets share an output file")
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return errors.New("at least one target is required")
	}
	for _, t := range c.Targets {
		u, err := url.Parse(t)
		if err != nil {
			return fmt.Errorf("target %q: %w", t, err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("target %q: scheme must be ws or wss", t)
		}
	}

	n := len(c.Targets)
	if n > 1 && (!countFits(len(c.Folders), n) || !countFits(len(c.Prefixes), n)) {
		return fmt.Errorf("%w: give one folder and one prefix for all targets or one per target; "+
			"you provided %d targets, %d folders and %d prefixes",
			ErrCountMismatch, n, len(c.Folders), len(c.Prefixes))
	}

	if !c.Shared {
		seen := make(map[string]string, n)
		for _, ep := range c.Endpoints() {
			key := ep.FileKey()
			if other, ok := seen[key]; ok {
				return fmt.Errorf("%w: %s and %s both write to folder %q with prefix %q; "+
					"give distinct folders or prefixes, or enable shared",
					ErrOverlap, other, ep.URL, ep.Folder, ep.Prefix)
			}
			seen[key] = ep.URL
		}
	}

	if c.ReconnectDelay < 0 {
		return errors.New("reconnect_delay must be >= 0")
	}
	if c.RotationInterval < 0 {
		return errors.New("rotation_interval must be >= 0")
	}
	if c.ReadTimeout < 0 {
		return errors.New("read_timeout must be >= 0")
	}

	return c.Mirrors.validate()
}

func countFits(count, targets int) bool {
	return count == 1 || count == targets
}

func (m *MirrorsConfig) validate() error {
	if m.Http != nil && m.Http.URL == "" {
		return errors.New("mirrors.http.url is required")
	}
	if m.Redis != nil && m.Redis.Addr == "" {
		return errors.New("mirrors.redis.addr is required")
	}
	if m.Kafka != nil {
		if len(m.Kafka.Brokers) == 0 {
			return errors.New("mirrors.kafka.brokers is required")
		}
		if m.Kafka.Topic == "" {
			return errors.New("mirrors.kafka.topic is required")
		}
	}
	if m.Mqtt != nil {
		if m.Mqtt.Broker == "" {
			return errors.New("mirrors.mqtt.broker is required")
		}
		if m.Mqtt.Topic == "" {
			return errors.New("mirrors.mqtt.topic is required")
		}
		if m.Mqtt.QoS > 2 {
			return fmt.Errorf("mirrors.mqtt.qos must be 0, 1 or 2, got %d", m.Mqtt.QoS)
		}
	}
	return nil
}
