package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Load reads an optional TOML file at path on top of the defaults, loads a
// .env file when present, then applies AUCTION_* environment overrides.
// An empty path or a missing file means defaults plus environment.
// The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// missing .env is fine
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Server.Port, "AUCTION_SERVER_PORT")
	setStr(&cfg.Server.Port, "PORT")
	setDuration(&cfg.Server.ShutdownTimeout, "AUCTION_SERVER_SHUTDOWN_TIMEOUT")

	setStr(&cfg.Auth.JWTSecret, "AUCTION_AUTH_JWT_SECRET")
	setDuration(&cfg.Auth.TokenTTL, "AUCTION_AUTH_TOKEN_TTL")

	setStr(&cfg.Store.Driver, "AUCTION_STORE_DRIVER")
	setStr(&cfg.Store.DSN, "AUCTION_STORE_DSN")
	setBool(&cfg.Store.AutoMigrate, "AUCTION_STORE_AUTO_MIGRATE")

	setBool(&cfg.Redis.Enabled, "AUCTION_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "AUCTION_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "AUCTION_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "AUCTION_REDIS_DB")

	setMoney(&cfg.Policy.MinimumIncrement, "AUCTION_POLICY_MINIMUM_INCREMENT")
	setDuration(&cfg.Policy.ExtendThreshold, "AUCTION_POLICY_EXTEND_THRESHOLD")
	setDuration(&cfg.Policy.ExtendDuration, "AUCTION_POLICY_EXTEND_DURATION")
	setStr(&cfg.Policy.ExtendAnchor, "AUCTION_POLICY_EXTEND_ANCHOR")
	setInt(&cfg.Policy.MaxExtensions, "AUCTION_POLICY_MAX_EXTENSIONS")
	setMoney(&cfg.Policy.DepositRate, "AUCTION_POLICY_DEPOSIT_RATE")
	setDuration(&cfg.Policy.CancelWindow, "AUCTION_POLICY_CANCEL_WINDOW")

	setDuration(&cfg.Locking.Wait, "AUCTION_LOCKING_WAIT")
	setDuration(&cfg.Locking.TTL, "AUCTION_LOCKING_TTL")

	setBool(&cfg.Sweeper.Enabled, "AUCTION_SWEEPER_ENABLED")
	setDuration(&cfg.Sweeper.Interval, "AUCTION_SWEEPER_INTERVAL")
	setDuration(&cfg.Sweeper.LeaderTTL, "AUCTION_SWEEPER_LEADER_TTL")

	setInt(&cfg.RateLimit.BidsPerMinute, "AUCTION_RATELIMIT_BIDS_PER_MINUTE")

	setStr(&cfg.Log.Level, "AUCTION_LOG_LEVEL")
}

// Typed env-var helpers. Each only mutates the target when the variable is set and non-empty.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setMoney(dst *money, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			dst.Decimal = d
		}
	}
}
