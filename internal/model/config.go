package model

import "time"

// FetchMode selects the policy applied when every gateway fails.
type FetchMode string

const (
	// FetchModeStrict surfaces an aggregate error listing every gateway's
	// failure reason. Production deployments should use this.
	FetchModeStrict FetchMode = "strict"

	// FetchModeBestEffort returns a locally synthesized substitute payload
	// instead of failing. Intended for testing and demo paths only.
	FetchModeBestEffort FetchMode = "best-effort"
)

// Config is the complete pipeline configuration.
// Hierarchy (highest to lowest priority): CLI flags, VERITRAIL_* environment
// variables, ~/.veritrail/config.yaml, defaults.
type Config struct {
	Ledger      LedgerConfig      `yaml:"ledger" mapstructure:"ledger"`
	Gateway     GatewayConfig     `yaml:"gateway" mapstructure:"gateway"`
	Oracle      OracleConfig      `yaml:"oracle" mapstructure:"oracle"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Planner     PlannerConfig     `yaml:"planner" mapstructure:"planner"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// LedgerConfig configures the mirror-index watcher.
type LedgerConfig struct {
	MirrorBaseURL string        `yaml:"mirror_base_url" mapstructure:"mirror_base_url"`
	AccountID     string        `yaml:"account_id" mapstructure:"account_id"`
	PollInterval  time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	PageLimit     int           `yaml:"page_limit" mapstructure:"page_limit"`
}

// GatewayConfig configures the content-gateway fetch cascade.
type GatewayConfig struct {
	// URLs are gateway base URL templates in priority order; the content
	// identifier is appended to each.
	URLs []string `yaml:"urls" mapstructure:"urls"`

	AttemptTimeout time.Duration `yaml:"attempt_timeout" mapstructure:"attempt_timeout"`
	MaxGateways    int           `yaml:"max_gateways" mapstructure:"max_gateways"`
	Mode           FetchMode     `yaml:"mode" mapstructure:"mode"`

	// RetryAttempts bounds full cascade passes; 1 means no retry.
	RetryAttempts int `yaml:"retry_attempts" mapstructure:"retry_attempts"`

	// RequestsPerSecond rate-limits attempts per gateway host.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`

	// RespectRobots enables a fail-open robots.txt check per gateway host.
	RespectRobots bool `yaml:"respect_robots" mapstructure:"respect_robots"`

	// CacheTTL controls the payload cache; 0 disables caching.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	CacheDir string        `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// OracleConfig configures the optional semantic-similarity oracle.
type OracleConfig struct {
	// Provider is "openai", "ollama" or "" (disabled).
	Provider string `yaml:"provider" mapstructure:"provider"`
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"-" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"` // seconds
}

// StoreConfig selects the processed-claim store backend.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend" mapstructure:"backend"`
	Path    string `yaml:"path" mapstructure:"path"` // sqlite only
}

// PlannerConfig configures evidence-plan priority scoring.
type PlannerConfig struct {
	// HighFeeThreshold marks a ledger transaction fee as anomalous.
	HighFeeThreshold int64 `yaml:"high_fee_threshold" mapstructure:"high_fee_threshold"`
}

// ConcurrencyConfig bounds parallel work.
type ConcurrencyConfig struct {
	// ProcessWorkers bounds identifiers processed concurrently.
	ProcessWorkers int `yaml:"process_workers" mapstructure:"process_workers"`
}

// HTTPConfig holds shared HTTP client settings.
type HTTPConfig struct {
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns sensible defaults for all sections.
func DefaultConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			MirrorBaseURL: "https://testnet.mirrornode.hedera.com/api/v1",
			PollInterval:  10 * time.Second,
			PageLimit:     25,
		},
		Gateway: GatewayConfig{
			URLs: []string{
				"https://ipfs.io/ipfs/",
				"https://cloudflare-ipfs.com/ipfs/",
				"https://gateway.pinata.cloud/ipfs/",
				"https://dweb.link/ipfs/",
			},
			AttemptTimeout:    12 * time.Second,
			MaxGateways:       4,
			Mode:              FetchModeStrict,
			RetryAttempts:     1,
			RequestsPerSecond: 2,
			Burst:             5,
			CacheTTL:          30 * time.Minute,
		},
		Oracle: OracleConfig{
			Provider: "", // Disabled by default
			Timeout:  30,
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Planner: PlannerConfig{
			HighFeeThreshold: 500_000_000,
		},
		Concurrency: ConcurrencyConfig{
			ProcessWorkers: 4,
		},
		HTTP: HTTPConfig{
			UserAgent:    "Veritrail/0.1 (+https://github.com/veritrail/veritrail)",
			MaxBodyBytes: 2_000_000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
