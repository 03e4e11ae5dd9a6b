package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "vaccine_reminder.db" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
	if cfg.LeadDays != 7 || cfg.DueSoonDays != 7 {
		t.Fatalf("unexpected windows: lead=%d due=%d", cfg.LeadDays, cfg.DueSoonDays)
	}
	if cfg.ReportInterval != 24*time.Hour {
		t.Fatalf("unexpected report interval %s", cfg.ReportInterval)
	}
	if cfg.Location != time.UTC || !cfg.SeedCatalog || cfg.SMTP.Enabled() {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", " token ")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("REMINDER_LEAD_DAYS", "3")
	t.Setenv("SEED_CATALOG", "false")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USERNAME", "bot@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TelegramToken != "token" || cfg.LeadDays != 3 || cfg.SeedCatalog {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.SMTP.Enabled() || cfg.SMTP.Port != 587 || cfg.SMTP.From != "bot@example.com" {
		t.Fatalf("unexpected smtp config %+v", cfg.SMTP)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing token", map[string]string{"TELEGRAM_TOKEN": ""}, "TELEGRAM_TOKEN is required"},
		{"bad clock", map[string]string{"TELEGRAM_TOKEN": "x", "DISPATCH_TIME": "25:00"}, "invalid hour"},
		{"bad timezone", map[string]string{"TELEGRAM_TOKEN": "x", "TIMEZONE": "Mars/Olympus"}, "invalid TIMEZONE"},
		{"negative lead", map[string]string{"TELEGRAM_TOKEN": "x", "TIMEZONE": "UTC", "REMINDER_LEAD_DAYS": "-1"}, "REMINDER_LEAD_DAYS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("07:45")
	if err != nil || h != 7 || m != 45 {
		t.Fatalf("unexpected result %d:%d %v", h, m, err)
	}
	for _, bad := range []string{"7", "aa:10", "10:60", ""} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
