// Package config loads server configuration from an optional YAML file,
// an optional .env file and SETTLEUP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	// Path is the SQLite file. Empty keeps everything in memory.
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	// Addr enables the Redis cache. Empty uses an in-process cache.
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LedgerConfig struct {
	Rounding          string `mapstructure:"rounding"`
	StrictCustomSplit bool   `mapstructure:"strict_custom_split"`
	SortByMagnitude   bool   `mapstructure:"sort_by_magnitude"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Log      LogConfig      `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "./data/settleup.db")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("ledger.rounding", "largest_remainder")
	v.SetDefault("ledger.strict_custom_split", true)
	v.SetDefault("ledger.sort_by_magnitude", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. path may name a YAML file; when empty,
// config.yaml in the working directory is used if present.
// Environment overrides use the SETTLEUP_ prefix, e.g. SETTLEUP_SERVER_PORT=9000.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SETTLEUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing deployments
	_ = v.BindEnv("database.path", "SETTLEUP_DATABASE_PATH", "DB_PATH")
	_ = v.BindEnv("log.level", "SETTLEUP_LOG_LEVEL", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.Ledger.Rounding {
	case "largest_remainder", "half_up":
	default:
		return fmt.Errorf("invalid ledger.rounding %q", c.Ledger.Rounding)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("invalid jwt.ttl %s", c.JWT.TTL)
	}
	return nil
}
