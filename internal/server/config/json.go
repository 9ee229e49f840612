package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/warbler/internal/flagx"
	"github.com/dmitrijs2005/warbler/internal/timex"
)

// JsonConfig is the on-disk shape of a config file. Durations accept both
// "90m" and integer nanoseconds.
type JsonConfig struct {
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	TxMaxRetries                int            `json:"tx_max_retries"`
	LogLevel                    string         `json:"log_level"`
	PushGatewayURL              string         `json:"pushgateway_url"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field it sets onto config. Missing fields keep their current value.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.TxMaxRetries != 0 {
		config.TxMaxRetries = c.TxMaxRetries
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.PushGatewayURL != "" {
		config.PushGatewayURL = c.PushGatewayURL
	}
}
