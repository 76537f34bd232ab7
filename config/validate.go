package config

import (
	"errors"
	"fmt"
	"strings"
)

// channelKinds the ws.channels list may name.
var channelKinds = map[string]bool{
	"markets_summary":  true,
	"bbo":              true,
	"trades":           true,
	"order_book":       true,
	"order_book_deltas": true,
	"funding_data":     true,
	"orders":           true,
	"fills":            true,
	"positions":        true,
	"account":          true,
	"balance_events":   true,
	"funding_payments": true,
}

// privateKinds require credentials.
var privateKinds = map[string]bool{
	"orders":           true,
	"fills":            true,
	"positions":        true,
	"account":          true,
	"balance_events":   true,
	"funding_payments": true,
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Environment != EnvProd && c.Environment != EnvTestnet {
		return fmt.Errorf("environment must be %q or %q, got %q", EnvProd, EnvTestnet, c.Environment)
	}

	if !strings.HasPrefix(c.API.RestURL, "http") {
		return fmt.Errorf("api.rest_url must be an http(s) URL, got %q", c.API.RestURL)
	}
	if !strings.HasPrefix(c.API.WSURL, "ws") {
		return fmt.Errorf("api.ws_url must be a ws(s) URL, got %q", c.API.WSURL)
	}

	if c.Credentials.Account != "" && c.Credentials.PrivateKey == "" && c.Credentials.PrivateKeyPath == "" {
		return errors.New("credentials.account set without private_key or private_key_path")
	}
	if c.Credentials.PrivateKey != "" && c.Credentials.PrivateKeyPath != "" {
		return errors.New("credentials.private_key and private_key_path are mutually exclusive")
	}

	if c.WS.ReconnectBaseDelay > c.WS.ReconnectMaxDelay {
		return errors.New("ws.reconnect_base_delay must not exceed ws.reconnect_max_delay")
	}
	if c.WS.DispatchBuffer < 1 {
		return errors.New("ws.dispatch_buffer must be >= 1")
	}

	for _, kind := range c.WS.Channels {
		if !channelKinds[kind] {
			return fmt.Errorf("ws.channels: unknown channel kind %q", kind)
		}
		if privateKinds[kind] && !c.Credentials.Configured() {
			return fmt.Errorf("ws.channels: %q requires credentials", kind)
		}
	}

	if c.Recorder.Enabled {
		if err := c.Recorder.Timescale.validate("recorder.timescale"); err != nil {
			return err
		}
		if c.Recorder.BatchSize < 1 {
			return errors.New("recorder.batch_size must be >= 1")
		}
		if c.Recorder.BufferSize < 1 {
			return errors.New("recorder.buffer_size must be >= 1")
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns must not exceed max_conns", prefix)
	}
	return nil
}
