package semantic

import (
	"fmt"
	"strings"

	"github.com/veritrail/veritrail/internal/model"
)

// NewOracle creates a new semantic oracle based on configuration.
// An empty provider returns (nil, nil): the oracle is disabled and callers
// skip enrichment.
func NewOracle(config Config) (Oracle, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIOracle(config)

	case "ollama":
		return NewOllamaOracle(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown oracle provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.OracleConfig to semantic.Config
func ConfigFromModel(cfg model.OracleConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		HTTPProxy:  httpCfg.HTTPProxy,
		HTTPSProxy: httpCfg.HTTPSProxy,
		NoProxy:    httpCfg.NoProxy,
	}
}
