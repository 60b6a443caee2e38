// Package config loads the run configuration file (gammaest.yaml).
//
// Top-level types:
//   - Config: paths, date_column, min_cum_cases, removal_delays, countries,
//     output, checks, log_level
//   - Country: tag, file, admin_columns (coarsest first, at most four)
//   - DelayRange: inclusive min/max; Days() expands it
//   - OutputConfig: gamma_csv (required), long_csv, summary_md, textfile
//
// Load(path) reads the YAML file, applies defaults (min_cum_cases 10,
// delays 0..6, CHN and KOR datasets, models/gamma_est.csv), then validates.
// LoadOrDefault falls back to Default() when the file does not exist.
package config
