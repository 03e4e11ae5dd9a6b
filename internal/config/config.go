package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken  string        `mapstructure:"TELEGRAM_TOKEN"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	Env            string        `mapstructure:"ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	Timezone       string        `mapstructure:"TIMEZONE"`
	LeadDays       int           `mapstructure:"REMINDER_LEAD_DAYS"`
	DueSoonDays    int           `mapstructure:"DUE_SOON_DAYS"`
	DispatchTime   string        `mapstructure:"DISPATCH_TIME"`
	ReportHours    int           `mapstructure:"REPORT_INTERVAL_HOURS"`
	SeedCatalog    bool          `mapstructure:"SEED_CATALOG"`
	ReportInterval time.Duration `mapstructure:"-"`
	Location       *time.Location `mapstructure:"-"`

	SMTP SMTPConfig `mapstructure:",squash"`
}

// SMTPConfig enables email reminders when Host is set.
type SMTPConfig struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     int    `mapstructure:"SMTP_PORT"`
	Username string `mapstructure:"SMTP_USERNAME"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"SMTP_FROM"`
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// Load reads config.yaml (if any) and environment variables with sane defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("DATABASE_URL", "vaccine_reminder.db")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("REMINDER_LEAD_DAYS", 7)
	v.SetDefault("DUE_SOON_DAYS", 7)
	v.SetDefault("DISPATCH_TIME", "09:00")
	v.SetDefault("REPORT_INTERVAL_HOURS", 24)
	v.SetDefault("SEED_CATALOG", true)
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "vaccine_reminder.db"
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return cfg, err
	}
	cfg.Location = loc

	if cfg.LeadDays < 0 {
		return cfg, fmt.Errorf("REMINDER_LEAD_DAYS must not be negative")
	}
	if cfg.DueSoonDays < 0 {
		return cfg, fmt.Errorf("DUE_SOON_DAYS must not be negative")
	}
	if _, _, err := ParseClock(cfg.DispatchTime); err != nil {
		return cfg, err
	}
	if cfg.ReportHours > 0 {
		cfg.ReportInterval = time.Duration(cfg.ReportHours) * time.Hour
	}
	if cfg.SMTP.Enabled() && cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// ParseClock splits an HH:MM string.
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}
