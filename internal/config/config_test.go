package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"SOURCE_URL", "HEADLESS", "BROWSER_URL", "NAV_TIMEOUT_MS", "SETTLE_DELAY_MS",
	"CACHE_TTL_MS", "CRON_SCHEDULE", "SHEET_ID", "SHEET_TITLE",
	"GOOGLE_SERVICE_ACCOUNT_B64", "SHEETS_BASE_URL", "PORT", "LOG_LEVEL",
}

// clearEnv blanks every key for the duration of the test. Viper treats an
// empty variable as unset, so defaults still apply.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Success(t *testing.T) {
	clearEnv(t)
	envVars := map[string]string{
		"SOURCE_URL":                 "https://rates.example/",
		"HEADLESS":                   "false",
		"BROWSER_URL":                "ws://chrome:9222",
		"NAV_TIMEOUT_MS":             "30000",
		"SETTLE_DELAY_MS":            "2500",
		"CACHE_TTL_MS":               "120000",
		"CRON_SCHEDULE":              "*/10 * * * *",
		"SHEET_ID":                   "sheet-123",
		"SHEET_TITLE":                "Live",
		"GOOGLE_SERVICE_ACCOUNT_B64": "e30=",
		"SHEETS_BASE_URL":            "https://test.sheets.example/v4",
		"PORT":                       "8080",
		"LOG_LEVEL":                  "debug",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"SourceURL", cfg.SourceURL, "https://rates.example/"},
		{"Headless", cfg.Headless, false},
		{"BrowserURL", cfg.BrowserURL, "ws://chrome:9222"},
		{"NavTimeout", cfg.NavTimeout(), 30 * time.Second},
		{"SettleDelay", cfg.SettleDelay(), 2500 * time.Millisecond},
		{"CacheTTL", cfg.CacheTTL(), 2 * time.Minute},
		{"CronSchedule", cfg.CronSchedule, "*/10 * * * *"},
		{"SheetID", cfg.SheetID, "sheet-123"},
		{"SheetTitle", cfg.SheetTitle, "Live"},
		{"ServiceAccountBase64", cfg.ServiceAccountBase64, "e30="},
		{"SheetsBaseURL", cfg.SheetsBaseURL, "https://test.sheets.example/v4"},
		{"Port", cfg.Port, 8080},
		{"SlogLevel", cfg.SlogLevel(), slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOURCE_URL", "https://rates.example/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"Headless", cfg.Headless, true},
		{"NavTimeout", cfg.NavTimeout(), 60 * time.Second},
		{"SettleDelay", cfg.SettleDelay(), 4 * time.Second},
		{"CacheTTL", cfg.CacheTTL(), time.Minute},
		{"CronSchedule", cfg.CronSchedule, "*/5 * * * *"},
		{"SheetTitle", cfg.SheetTitle, "Rates"},
		{"SheetsBaseURL", cfg.SheetsBaseURL, "https://sheets.googleapis.com/v4"},
		{"Port", cfg.Port, 3000},
		{"SlogLevel", cfg.SlogLevel(), slog.LevelInfo},
		{"SheetID", cfg.SheetID, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    map[string]string
		wantErrText string
	}{
		{
			name:        "missing SOURCE_URL",
			setupEnv:    map[string]string{},
			wantErrText: "missing required configuration: SOURCE_URL",
		},
		{
			name:        "bad cron",
			setupEnv:    map[string]string{"SOURCE_URL": "https://x", "CRON_SCHEDULE": "every minute"},
			wantErrText: "CRON_SCHEDULE",
		},
		{
			name:        "bad log level",
			setupEnv:    map[string]string{"SOURCE_URL": "https://x", "LOG_LEVEL": "loud"},
			wantErrText: "LOG_LEVEL",
		},
		{
			name:        "negative nav timeout",
			setupEnv:    map[string]string{"SOURCE_URL": "https://x", "NAV_TIMEOUT_MS": "-1"},
			wantErrText: "NAV_TIMEOUT_MS",
		},
		{
			name:        "port out of range",
			setupEnv:    map[string]string{"SOURCE_URL": "https://x", "PORT": "70000"},
			wantErrText: "PORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.setupEnv {
				t.Setenv(key, value)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrText) {
				t.Errorf("Load() error = %q, want error containing %q", err.Error(), tt.wantErrText)
			}
		})
	}
}
