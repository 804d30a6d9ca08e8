package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	MenuFlat    = "flat"
	MenuTwoStep = "two_step"
)

var ErrMissingToken = errors.New("BOT_TOKEN not set in environment variables")

type Config struct {
	TelegramToken   string `mapstructure:"BOT_TOKEN"`
	GroupID         int64  `mapstructure:"GROUP_ID"`
	AdminID         int64  `mapstructure:"ADMIN_ID"`
	MenuLayout      string `mapstructure:"MENU_LAYOUT"`
	DefaultLanguage string `mapstructure:"DEFAULT_LANGUAGE"`
	TranslateAPIKey string `mapstructure:"TRANSLATE_API_KEY"`

	USDPerStar    float64 `mapstructure:"USD_PER_STAR"`
	MaxStars      int     `mapstructure:"MAX_STARS"`
	PaymentReplay string  `mapstructure:"PAYMENT_REPLAY"`

	ArchiveDriver string `mapstructure:"ARCHIVE_DRIVER"`
	SupabaseURL   string `mapstructure:"SUPABASE_URL"`
	SupabaseKey   string `mapstructure:"SUPABASE_KEY"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`

	PendingDigestSchedule string `mapstructure:"PENDING_DIGEST_SCHEDULE"`

	WebhookAddr   string `mapstructure:"WEBHOOK_ADDR"`
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var keys = []string{
	"BOT_TOKEN", "GROUP_ID", "ADMIN_ID", "MENU_LAYOUT", "DEFAULT_LANGUAGE", "TRANSLATE_API_KEY",
	"USD_PER_STAR", "MAX_STARS", "PAYMENT_REPLAY",
	"ARCHIVE_DRIVER", "SUPABASE_URL", "SUPABASE_KEY", "SQLITE_PATH",
	"PENDING_DIGEST_SCHEDULE", "WEBHOOK_ADDR", "WEBHOOK_SECRET", "LOG_LEVEL", "LOG_FORMAT",
}

// LoadConfig читает .env (если он есть) и переменные окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	viper.SetDefault("GROUP_ID", int64(-1002780760786))
	viper.SetDefault("ADMIN_ID", int64(6472207061))
	viper.SetDefault("MENU_LAYOUT", MenuFlat)
	viper.SetDefault("DEFAULT_LANGUAGE", "en")
	viper.SetDefault("USD_PER_STAR", 0.0251)
	viper.SetDefault("MAX_STARS", 9999)
	viper.SetDefault("PAYMENT_REPLAY", "reissue")
	viper.SetDefault("SQLITE_PATH", "premium_bot.db")
	viper.SetDefault("PENDING_DIGEST_SCHEDULE", "0 9 * * *")
	viper.SetDefault("WEBHOOK_ADDR", ":8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.AutomaticEnv()

	for _, key := range keys {
		_ = viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.MenuLayout = strings.ToLower(strings.TrimSpace(cfg.MenuLayout))
	cfg.ArchiveDriver = strings.ToLower(strings.TrimSpace(cfg.ArchiveDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return ErrMissingToken
	}
	if c.MenuLayout != MenuFlat && c.MenuLayout != MenuTwoStep {
		return fmt.Errorf("MENU_LAYOUT must be %q or %q, got %q", MenuFlat, MenuTwoStep, c.MenuLayout)
	}
	if c.USDPerStar <= 0 {
		return fmt.Errorf("USD_PER_STAR must be positive, got %v", c.USDPerStar)
	}
	if c.MaxStars <= 0 {
		return fmt.Errorf("MAX_STARS must be positive, got %d", c.MaxStars)
	}
	if c.PaymentReplay != "reissue" && c.PaymentReplay != "ignore" {
		return fmt.Errorf("PAYMENT_REPLAY must be \"reissue\" or \"ignore\", got %q", c.PaymentReplay)
	}
	switch c.ArchiveDriver {
	case "", "none", "sqlite":
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("ARCHIVE_DRIVER=supabase requires SUPABASE_URL and SUPABASE_KEY")
		}
	default:
		return fmt.Errorf("ARCHIVE_DRIVER must be one of none, sqlite, supabase, got %q", c.ArchiveDriver)
	}
	return nil
}
