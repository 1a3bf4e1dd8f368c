package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config is the full process configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	Store     StoreConfig     `toml:"store"`
	Redis     RedisConfig     `toml:"redis"`
	Policy    PolicyConfig    `toml:"policy"`
	Locking   LockingConfig   `toml:"locking"`
	Sweeper   SweeperConfig   `toml:"sweeper"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
	Log       LogConfig       `toml:"log"`
}

type duration struct {
	time.Duration
}

// UnmarshalText lets the TOML decoder parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// money decodes a TOML string or number into a decimal amount
type money struct {
	decimal.Decimal
}

func (m *money) UnmarshalText(text []byte) error {
	d, err := decimal.NewFromString(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

func (m money) MarshalText() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

type ServerConfig struct {
	Port            string   `toml:"port"`
	ShutdownTimeout duration `toml:"shutdown_timeout"`
}

type AuthConfig struct {
	JWTSecret string   `toml:"jwt_secret"`
	TokenTTL  duration `toml:"token_ttl"`
}

// StoreConfig selects the persistent store. Driver is "memory" or "sqlite".
type StoreConfig struct {
	Driver      string `toml:"driver"`
	DSN         string `toml:"dsn"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// PolicyConfig holds the auction policy constants
type PolicyConfig struct {
	MinimumIncrement money    `toml:"minimum_increment"`
	ExtendThreshold  duration `toml:"extend_threshold"`
	ExtendDuration   duration `toml:"extend_duration"`
	ExtendAnchor     string   `toml:"extend_anchor"`
	MaxExtensions    int      `toml:"max_extensions"`
	DepositRate      money    `toml:"deposit_rate"`
	CancelWindow     duration `toml:"cancel_window"`
}

type LockingConfig struct {
	Wait duration `toml:"wait"`
	TTL  duration `toml:"ttl"`
}

type SweeperConfig struct {
	Enabled   bool     `toml:"enabled"`
	Interval  duration `toml:"interval"`
	LeaderTTL duration `toml:"leader_ttl"`
}

type RateLimitConfig struct {
	BidsPerMinute int `toml:"bids_per_minute"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Extension anchors
const (
	AnchorBid = "bid"
	AnchorEnd = "end"
)

// Defaults returns a Config populated with the built-in default values
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: duration{10 * time.Second},
		},
		Auth: AuthConfig{
			JWTSecret: "",
			TokenTTL:  duration{24 * time.Hour},
		},
		Store: StoreConfig{
			Driver:      "memory",
			DSN:         "file:pet-auction.db?cache=shared",
			AutoMigrate: true,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Policy: PolicyConfig{
			MinimumIncrement: money{decimal.NewFromInt(10)},
			ExtendThreshold:  duration{5 * time.Minute},
			ExtendDuration:   duration{5 * time.Minute},
			ExtendAnchor:     AnchorBid,
			MaxExtensions:    3,
			DepositRate:      money{decimal.RequireFromString("0.10")},
			CancelWindow:     duration{5 * time.Minute},
		},
		Locking: LockingConfig{
			Wait: duration{2 * time.Second},
			TTL:  duration{10 * time.Second},
		},
		Sweeper: SweeperConfig{
			Enabled:   true,
			Interval:  duration{30 * time.Second},
			LeaderTTL: duration{25 * time.Second},
		},
		RateLimit: RateLimitConfig{
			BidsPerMinute: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q must be memory or sqlite", c.Store.Driver))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}

	p := c.Policy
	if !p.MinimumIncrement.IsPositive() {
		errs = append(errs, errors.New("policy.minimum_increment must be positive"))
	}
	if p.ExtendThreshold.Duration < 0 || p.ExtendDuration.Duration < 0 {
		errs = append(errs, errors.New("policy extension durations must not be negative"))
	}
	if p.MaxExtensions < 0 {
		errs = append(errs, errors.New("policy.max_extensions must not be negative"))
	}
	if p.ExtendAnchor != AnchorBid && p.ExtendAnchor != AnchorEnd {
		errs = append(errs, fmt.Errorf("policy.extend_anchor %q must be %q or %q", p.ExtendAnchor, AnchorBid, AnchorEnd))
	}
	if p.DepositRate.IsNegative() || p.DepositRate.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, errors.New("policy.deposit_rate must be within [0, 1]"))
	}
	if p.CancelWindow.Duration < 0 {
		errs = append(errs, errors.New("policy.cancel_window must not be negative"))
	}

	if c.Locking.Wait.Duration <= 0 {
		errs = append(errs, errors.New("locking.wait must be positive"))
	}
	if c.Locking.TTL.Duration <= 0 {
		errs = append(errs, errors.New("locking.ttl must be positive"))
	}
	if c.Sweeper.Enabled && c.Sweeper.Interval.Duration <= 0 {
		errs = append(errs, errors.New("sweeper.interval must be positive"))
	}
	if c.RateLimit.BidsPerMinute < 0 {
		errs = append(errs, errors.New("ratelimit.bids_per_minute must not be negative"))
	}

	return errors.Join(errs...)
}
