package config

import "time"

// Environment names.
const (
	EnvProd    = "prod"
	EnvTestnet = "testnet"
)

// Per-environment endpoint defaults.
const (
	ProdRestURL    = "https://api.prod.paradex.trade"
	ProdWSURL      = "wss://ws.api.prod.paradex.trade/v1"
	ProdChainID    = "PRIVATE_SN_PARACLEAR_MAINNET"
	TestnetRestURL = "https://api.testnet.paradex.trade"
	TestnetWSURL   = "wss://ws.api.testnet.paradex.trade/v1"
	TestnetChainID = "PRIVATE_SN_POTC_SEPOLIA"
)

// Default values for optional configuration fields.
const (
	DefaultAPITimeout         = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultReconnectBaseDelay = 500 * time.Millisecond
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultDispatchBuffer     = 1024
	DefaultPingTimeout        = 60 * time.Second
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
	DefaultBatchSize          = 1000
	DefaultFlushInterval      = 1 * time.Second
	DefaultBufferSize         = 10000
)

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvTestnet
	}

	// Endpoint defaults track the environment.
	switch c.Environment {
	case EnvProd:
		if c.API.RestURL == "" {
			c.API.RestURL = ProdRestURL
		}
		if c.API.WSURL == "" {
			c.API.WSURL = ProdWSURL
		}
		if c.API.ChainID == "" {
			c.API.ChainID = ProdChainID
		}
	case EnvTestnet:
		if c.API.RestURL == "" {
			c.API.RestURL = TestnetRestURL
		}
		if c.API.WSURL == "" {
			c.API.WSURL = TestnetWSURL
		}
		if c.API.ChainID == "" {
			c.API.ChainID = TestnetChainID
		}
	}

	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	if c.WS.ReconnectBaseDelay == 0 {
		c.WS.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.WS.ReconnectMaxDelay == 0 {
		c.WS.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.WS.DispatchBuffer == 0 {
		c.WS.DispatchBuffer = DefaultDispatchBuffer
	}
	if c.WS.PingTimeout == 0 {
		c.WS.PingTimeout = DefaultPingTimeout
	}

	if c.Recorder.Enabled {
		applyDBDefaults(&c.Recorder.Timescale)
		if c.Recorder.BatchSize == 0 {
			c.Recorder.BatchSize = DefaultBatchSize
		}
		if c.Recorder.FlushInterval == 0 {
			c.Recorder.FlushInterval = DefaultFlushInterval
		}
		if c.Recorder.BufferSize == 0 {
			c.Recorder.BufferSize = DefaultBufferSize
		}
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
