package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/covidpolicy/gammaest/internal/checks"
	"github.com/covidpolicy/gammaest/internal/loader"
	"github.com/covidpolicy/gammaest/internal/panel"
	"github.com/covidpolicy/gammaest/pkg/types"
)

// DefaultPath is the config file read from the working directory.
const DefaultPath = "gammaest.yaml"

// Default values applied when fields are absent from the config file.
const (
	DefaultRegDataDir  = "data/interim/regression"
	DefaultModelsDir   = "models"
	DefaultMinCumCases = 10
	DefaultMinDelay    = 0
	DefaultMaxDelay    = 6
	DefaultGammaCSV    = "gamma_est.csv"
	DefaultLogLevel    = "info"
)

// Config is the full configuration of one estimation run.
type Config struct {
	Paths PathsConfig `yaml:"paths"`

	// DateColumn names the observation date column in every input file.
	DateColumn string `yaml:"date_column"`

	// MinCumCases is the cumulative confirmed case count a row needs to be
	// used. Early, small outbreaks are noisy.
	MinCumCases float64 `yaml:"min_cum_cases"`

	// RemovalDelays is the inclusive range of delays swept, in days.
	RemovalDelays DelayRange `yaml:"removal_delays"`

	// Countries are the input datasets, in output row order.
	Countries []Country `yaml:"countries"`

	Output OutputConfig `yaml:"output"`

	// Checks are plausibility rules evaluated against every estimate.
	Checks []checks.Rule `yaml:"checks"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`
}

// PathsConfig holds the directories relative file names resolve against.
type PathsConfig struct {
	// RegData is the directory of the regression-ready input files.
	RegData string `yaml:"reg_data"`

	// Models is the directory outputs are written to.
	Models string `yaml:"models"`
}

// DelayRange is an inclusive range of whole days.
type DelayRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Days expands the range into its delays, ascending.
func (d DelayRange) Days() []int {
	var out []int
	for l := d.Min; l <= d.Max; l++ {
		out = append(out, l)
	}
	return out
}

// Country describes one input dataset.
type Country struct {
	// Tag is the scope label of the country in the output (e.g. "CHN").
	Tag string `yaml:"tag"`

	// File is the CSV file name, relative to paths.reg_data unless absolute.
	File string `yaml:"file"`

	// AdminColumns are the administrative name columns, coarsest first.
	AdminColumns []string `yaml:"admin_columns"`
}

// OutputConfig names the output files. Relative names resolve against
// paths.models. Empty optional outputs are skipped.
type OutputConfig struct {
	// GammaCSV is the wide estimate table. Required.
	GammaCSV string `yaml:"gamma_csv"`

	// LongCSV is the one-row-per-cell table with observation counts.
	LongCSV string `yaml:"long_csv"`

	// SummaryMD is a Markdown rendering of the estimate table.
	SummaryMD string `yaml:"summary_md"`

	// Textfile is a Prometheus text exposition for textfile collection.
	Textfile string `yaml:"textfile"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return parse(data)
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default returns the built-in configuration: CHN at three administrative
// levels and KOR at two, delays 0 through 6.
func Default() *Config {
	cfg := defaults()
	cfg.Countries = defaultCountries()
	cfg.Checks = defaultChecks()
	return cfg
}

func parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	// Lists replace rather than merge, so only default them when absent.
	if cfg.Countries == nil {
		cfg.Countries = defaultCountries()
	}
	if cfg.Checks == nil {
		cfg.Checks = defaultChecks()
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with scalar default values.
func defaults() *Config {
	return &Config{
		Paths: PathsConfig{
			RegData: DefaultRegDataDir,
			Models:  DefaultModelsDir,
		},
		DateColumn:    loader.DefaultDateColumn,
		MinCumCases:   DefaultMinCumCases,
		RemovalDelays: DelayRange{Min: DefaultMinDelay, Max: DefaultMaxDelay},
		Output:        OutputConfig{GammaCSV: DefaultGammaCSV},
		LogLevel:      DefaultLogLevel,
	}
}

func defaultCountries() []Country {
	return []Country{
		{Tag: "CHN", File: "CHN_reg_data.csv", AdminColumns: []string{"adm0_name", "adm1_name", "adm2_name"}},
		{Tag: "KOR", File: "KOR_reg_data.csv", AdminColumns: []string{"adm0_name", "adm1_name"}},
	}
}

func defaultChecks() []checks.Rule {
	return []checks.Rule{
		{Name: "rate_above_one", Condition: "gamma > 1", Severity: checks.SeverityWarning},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.DateColumn == "" {
		return fmt.Errorf("date_column is required")
	}
	if cfg.MinCumCases < 0 {
		return fmt.Errorf("min_cum_cases must not be negative")
	}
	if cfg.RemovalDelays.Min > cfg.RemovalDelays.Max {
		return fmt.Errorf("removal_delays: min %d is greater than max %d",
			cfg.RemovalDelays.Min, cfg.RemovalDelays.Max)
	}
	if len(cfg.Countries) == 0 {
		return fmt.Errorf("at least one country is required")
	}
	seen := make(map[string]bool)
	for i, c := range cfg.Countries {
		switch {
		case c.Tag == "":
			return fmt.Errorf("countries[%d]: tag is required", i)
		case c.Tag == types.ScopePooled:
			return fmt.Errorf("countries[%d]: tag %q is reserved", i, c.Tag)
		case seen[c.Tag]:
			return fmt.Errorf("countries[%d]: duplicate tag %q", i, c.Tag)
		case c.File == "":
			return fmt.Errorf("countries[%d] %q: file is required", i, c.Tag)
		case len(c.AdminColumns) == 0 || len(c.AdminColumns) > panel.MaxAdminLevels:
			return fmt.Errorf("countries[%d] %q: need 1 to %d admin_columns, got %d",
				i, c.Tag, panel.MaxAdminLevels, len(c.AdminColumns))
		}
		seen[c.Tag] = true
	}
	if cfg.Output.GammaCSV == "" {
		return fmt.Errorf("output.gamma_csv is required")
	}
	for i, r := range cfg.Checks {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("checks[%d]: %w", i, err)
		}
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log_level value to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log_level %q", s)
	}
}

// Sources returns the loader sources of every configured country, with
// file paths resolved against paths.reg_data.
func (c *Config) Sources() []loader.Source {
	out := make([]loader.Source, 0, len(c.Countries))
	for _, country := range c.Countries {
		out = append(out, loader.Source{
			Country:      country.Tag,
			Path:         resolve(c.Paths.RegData, country.File),
			AdminColumns: country.AdminColumns,
			DateColumn:   c.DateColumn,
		})
	}
	return out
}

// Tags returns the country tags in configured order.
func (c *Config) Tags() []string {
	out := make([]string, len(c.Countries))
	for i, country := range c.Countries {
		out[i] = country.Tag
	}
	return out
}

// OutputPath resolves an output file name against paths.models. An empty
// name stays empty.
func (c *Config) OutputPath(name string) string {
	if name == "" {
		return ""
	}
	return resolve(c.Paths.Models, name)
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
