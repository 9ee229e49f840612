package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/warbler/internal/flagx"
)

// ValueFlags are the flags understood by parseFlags plus the config file
// flags. Each of them consumes the following argument.
var ValueFlags = append([]string{"-d", "-s", "-t", "-k", "-r", "-l", "-g"}, flagx.ConfigFlags...)

// parseFlags populates Config fields from command-line flags.
//
//	-d string   PostgreSQL DSN
//	-s string   token signing key
//	-t int      access token validity, minutes
//	-k int      bcrypt cost
//	-r int      max commit retries on serialization failure
//	-l string   log level
//	-g string   Pushgateway URL
//
// Only these flags are parsed; the command and its arguments are left alone.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-t", "-k", "-r", "-l", "-g"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.IntVar(&config.TxMaxRetries, "r", config.TxMaxRetries, "max transaction retries")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.PushGatewayURL, "g", config.PushGatewayURL, "Prometheus Pushgateway URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
