// Package runner executes one estimation run end to end.
//
// Run(cfg, runID, logger) loads every configured country dataset, filters
// the panel by min_cum_cases, derives one-day increments, sweeps the
// configured removal delays, evaluates the check rules, and writes the gamma
// CSV plus whichever optional outputs are configured. Stage counts are
// logged at info level and every estimate cell at debug level.
package runner
