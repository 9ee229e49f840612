package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "WARBLER_"

// parseEnv overlays WARBLER_* environment variables onto config. A .env file
// in the working directory is loaded first; variables already set in the
// process environment win over it. Malformed numbers panic.
//
//	WARBLER_DATABASE_DSN, WARBLER_SECRET_KEY, WARBLER_TOKEN_TTL (duration),
//	WARBLER_BCRYPT_COST, WARBLER_TX_MAX_RETRIES, WARBLER_LOG_LEVEL,
//	WARBLER_PUSHGATEWAY_URL
func parseEnv(config *Config) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v, ok := lookup("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := lookup("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := lookup("TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v, ok := lookup("BCRYPT_COST"); ok {
		config.BcryptCost = mustAtoi(v)
	}
	if v, ok := lookup("TX_MAX_RETRIES"); ok {
		config.TxMaxRetries = mustAtoi(v)
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
	if v, ok := lookup("PUSHGATEWAY_URL"); ok {
		config.PushGatewayURL = v
	}
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(err)
	}
	return n
}
