package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
paths:
  reg_data: /data/reg
  models: out
date_column: day
min_cum_cases: 25
removal_delays:
  min: 1
  max: 3
countries:
  - tag: ITA
    file: ITA_reg_data.csv
    admin_columns: [adm0_name, adm1_name]
output:
  gamma_csv: gamma.csv
  long_csv: gamma_long.csv
log_level: debug
`
	cfg := loadFromString(t, yaml)

	if cfg.DateColumn != "day" {
		t.Errorf("date_column: got %q", cfg.DateColumn)
	}
	if cfg.MinCumCases != 25 {
		t.Errorf("min_cum_cases: got %v", cfg.MinCumCases)
	}
	if got := cfg.RemovalDelays.Days(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("removal_delays: got %v", got)
	}
	if len(cfg.Countries) != 1 {
		t.Fatalf("countries: got %d, want 1", len(cfg.Countries))
	}
	if c := cfg.Countries[0]; c.Tag != "ITA" || len(c.AdminColumns) != 2 {
		t.Errorf("country: got %+v", c)
	}
	if cfg.Output.LongCSV != "gamma_long.csv" {
		t.Errorf("long_csv: got %q", cfg.Output.LongCSV)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level: got %q", cfg.LogLevel)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, "log_level: warn\n")

	if cfg.MinCumCases != DefaultMinCumCases {
		t.Errorf("default min_cum_cases: got %v, want %v", cfg.MinCumCases, DefaultMinCumCases)
	}
	if got := cfg.RemovalDelays.Days(); !slices.Equal(got, []int{0, 1, 2, 3, 4, 5, 6}) {
		t.Errorf("default delays: got %v", got)
	}
	if got := cfg.Tags(); !slices.Equal(got, []string{"CHN", "KOR"}) {
		t.Errorf("default countries: got %v", got)
	}
	if cfg.DateColumn != "date" {
		t.Errorf("default date_column: got %q", cfg.DateColumn)
	}
	if cfg.Output.GammaCSV != DefaultGammaCSV {
		t.Errorf("default gamma_csv: got %q", cfg.Output.GammaCSV)
	}
	if len(cfg.Checks) != 1 {
		t.Errorf("default checks: got %d, want 1", len(cfg.Checks))
	}
}

func TestLoad_EmptyChecksDisablesDefaults(t *testing.T) {
	cfg := loadFromString(t, "checks: []\n")
	if len(cfg.Checks) != 0 {
		t.Errorf("checks: got %d, want 0", len(cfg.Checks))
	}
}

func TestLoad_MinCumCasesZero(t *testing.T) {
	cfg := loadFromString(t, "min_cum_cases: 0\n")
	if cfg.MinCumCases != 0 {
		t.Errorf("min_cum_cases: got %v, want 0", cfg.MinCumCases)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty date column", `date_column: ""`, "date_column"},
		{"negative threshold", `min_cum_cases: -1`, "min_cum_cases"},
		{"inverted delays", "removal_delays:\n  min: 4\n  max: 2", "removal_delays"},
		{"no countries", `countries: []`, "at least one country"},
		{"pooled tag", "countries:\n  - tag: pooled\n    file: x.csv\n    admin_columns: [adm0_name]", "reserved"},
		{"duplicate tag", "countries:\n  - tag: KOR\n    file: a.csv\n    admin_columns: [adm0_name]\n  - tag: KOR\n    file: b.csv\n    admin_columns: [adm0_name]", "duplicate tag"},
		{"missing file", "countries:\n  - tag: KOR\n    admin_columns: [adm0_name]", "file is required"},
		{"too many admin columns", "countries:\n  - tag: KOR\n    file: a.csv\n    admin_columns: [a, b, c, d, e]", "admin_columns"},
		{"no gamma csv", "output:\n  gamma_csv: \"\"", "gamma_csv"},
		{"bad rule", "checks:\n  - name: r\n    condition: \"gamma ~ 1\"", "checks[0]"},
		{"bad log level", `log_level: loud`, "log_level"},
		{"bad yaml", "countries: [", "parse yaml"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadStringErr(t, tc.yaml+"\n")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() unexpected error: %v", err)
	}
	if got := cfg.Tags(); !slices.Equal(got, []string{"CHN", "KOR"}) {
		t.Errorf("tags: got %v", got)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadOrDefault_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gammaest.yaml")
	if err := os.WriteFile(path, []byte("log_level: loud\n"), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if _, err := LoadOrDefault(path); err == nil {
		t.Fatal("expected error for invalid file, got nil")
	}
}

func TestSources(t *testing.T) {
	cfg := Default()
	cfg.Paths.RegData = "reg"
	cfg.Countries[1].File = "/abs/KOR.csv"

	src := cfg.Sources()
	if len(src) != 2 {
		t.Fatalf("sources: got %d, want 2", len(src))
	}
	if src[0].Path != filepath.Join("reg", "CHN_reg_data.csv") {
		t.Errorf("relative path: got %q", src[0].Path)
	}
	if src[1].Path != "/abs/KOR.csv" {
		t.Errorf("absolute path: got %q", src[1].Path)
	}
	if src[0].Country != "CHN" || src[0].DateColumn != "date" || len(src[0].AdminColumns) != 3 {
		t.Errorf("source: got %+v", src[0])
	}
}

func TestOutputPath(t *testing.T) {
	cfg := Default()
	if got := cfg.OutputPath(cfg.Output.GammaCSV); got != filepath.Join("models", "gamma_est.csv") {
		t.Errorf("gamma csv: got %q", got)
	}
	if got := cfg.OutputPath(""); got != "" {
		t.Errorf("empty name: got %q, want empty", got)
	}
}

func TestDelayRange_Single(t *testing.T) {
	if got := (DelayRange{Min: 3, Max: 3}).Days(); !slices.Equal(got, []int{3}) {
		t.Errorf("Days(): got %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

// loadFromString writes yaml to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}
