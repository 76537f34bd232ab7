package config

import "time"

// Config is the root configuration for a market-feed instance.
type Config struct {
	Environment string            `yaml:"environment"` // "prod" or "testnet"
	API         APIConfig         `yaml:"api"`
	Credentials CredentialsConfig `yaml:"credentials"`
	WS          WSConfig          `yaml:"ws"`
	Recorder    RecorderConfig    `yaml:"recorder"`
}

// APIConfig holds venue endpoint settings. Empty URLs are filled from
// the environment's defaults.
type APIConfig struct {
	RestURL    string        `yaml:"rest_url"`
	WSURL      string        `yaml:"ws_url"`
	ChainID    string        `yaml:"chain_id"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// CredentialsConfig holds the trading account identity. All fields
// empty means a public-data-only instance.
type CredentialsConfig struct {
	Account        string `yaml:"account"`          // 0x account contract address
	PrivateKey     string `yaml:"private_key"`      // hex Stark key, usually ${PARADEX_PRIVATE_KEY}
	PrivateKeyPath string `yaml:"private_key_path"` // or a file holding it
}

// Configured reports whether account credentials are present.
func (c CredentialsConfig) Configured() bool {
	return c.Account != "" && (c.PrivateKey != "" || c.PrivateKeyPath != "")
}

// WSConfig holds subscription manager settings.
type WSConfig struct {
	ReconnectBaseDelay   time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay    time.Duration `yaml:"reconnect_max_delay"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	DispatchBuffer       int           `yaml:"dispatch_buffer"`
	PingTimeout          time.Duration `yaml:"ping_timeout"`

	// Markets and Channels select the feed: every named channel kind
	// is subscribed for every market.
	Markets  []string `yaml:"markets"`
	Channels []string `yaml:"channels"`
}

// RecorderConfig holds the optional time-series recorder settings.
type RecorderConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Timescale     DBConfig      `yaml:"timescale"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}
