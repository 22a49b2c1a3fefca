package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

// Config holds all configuration for the application
type Config struct {
	Discord   DiscordConfig
	Redis     RedisConfig
	Assets    AssetsConfig
	RateLimit RateLimitConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token   string `env:"DISCORD_TOKEN"`
	AppID   string `env:"DISCORD_APP_ID"`
	GuildID string `env:"DISCORD_GUILD_ID"` // Optional: for guild-specific commands
}

// RedisConfig holds Redis-specific configuration.
// URL wins over Addr when both are set; with neither the bot keeps avatars in memory.
type RedisConfig struct {
	URL       string        `env:"REDIS_URL"`
	Addr      string        `env:"REDIS_ADDR"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB" envDefault:"0"`
	AvatarTTL time.Duration `env:"AVATAR_TTL" envDefault:"0s"`
}

// Enabled reports whether a Redis endpoint was configured
func (c RedisConfig) Enabled() bool {
	return c.URL != "" || c.Addr != ""
}

// AssetsConfig says where the manifest and the images it references live
type AssetsConfig struct {
	Manifest string `env:"ASSET_MANIFEST" envDefault:"assets/manifest.yaml"`
	// Dir is the root for relative refs. Ignored when BaseURL is set.
	Dir                string        `env:"ASSET_DIR" envDefault:"assets"`
	BaseURL            string        `env:"ASSET_BASE_URL"`
	PreloadConcurrency int           `env:"PRELOAD_CONCURRENCY" envDefault:"8"`
	PreloadTimeout     time.Duration `env:"PRELOAD_TIMEOUT" envDefault:"30s"`
}

// RateLimitConfig caps /avatar requests per user. A max of 0 turns limiting off.
type RateLimitConfig struct {
	MaxRequests int           `env:"RATE_LIMIT_MAX" envDefault:"20"`
	Window      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "failed to parse environment")
	}

	// Validate required fields
	if cfg.Discord.Token == "" {
		return nil, apperr.InvalidArgument("DISCORD_TOKEN is required")
	}
	if cfg.Discord.AppID == "" {
		return nil, apperr.InvalidArgument("DISCORD_APP_ID is required")
	}
	if err := cfg.Assets.validate(); err != nil {
		return nil, err
	}
	if cfg.RateLimit.MaxRequests > 0 && cfg.RateLimit.Window <= 0 {
		return nil, apperr.InvalidArgument("RATE_LIMIT_WINDOW must be positive when RATE_LIMIT_MAX is set")
	}

	return cfg, nil
}

// LoadAssets loads only the asset settings, for tools that do not talk to Discord
func LoadAssets() (*AssetsConfig, error) {
	cfg := &AssetsConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AssetsConfig) validate() error {
	if c.Manifest == "" {
		return apperr.InvalidArgument("ASSET_MANIFEST is required")
	}
	if c.PreloadConcurrency < 0 {
		return apperr.InvalidArgumentf("PRELOAD_CONCURRENCY must not be negative, got %d", c.PreloadConcurrency)
	}
	return nil
}
