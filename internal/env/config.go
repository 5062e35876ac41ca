package env

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// Host and Port locate the daemon's RPC port
	Host string `env:"OLA_HOST,default=localhost"`
	Port int    `env:"OLA_PORT,default=9010"`

	LogLevel  string `env:"OLA_LOG_LEVEL,default=info"`
	DebugHTTP bool   `env:"OLA_DEBUG_HTTP"`
}

// Addr is the daemon's host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LoadConfig reads the config from the environment, after loading .env.local
// when there is one.
func LoadConfig(ctx context.Context) (*Config, error) {
	return loadConfig(ctx, envconfig.OsLookuper())
}

func loadConfig(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading .env.local: %w", err)
		}
	}

	if err := envconfig.ProcessWith(ctx, &config, lookuper); err != nil {
		return nil, err
	}

	return &config, nil
}
