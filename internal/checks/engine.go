package checks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/covidpolicy/gammaest/pkg/types"
)

// Severity levels of a rule.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Rule is a plausibility condition checked on every estimate cell.
type Rule struct {
	// Name is the human-readable rule identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "gamma > 1" or "status == missing".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info. Empty means warning.
	Severity string `yaml:"severity"`

	// Scope restricts the rule to one scope label (e.g. "pooled").
	// Empty applies the rule to every scope.
	Scope string `yaml:"scope"`
}

// Validate reports whether the rule is well-formed.
func (r Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	switch r.Severity {
	case "", SeverityInfo, SeverityWarning, SeverityCritical:
	default:
		return fmt.Errorf("rule %q: unknown severity %q", r.Name, r.Severity)
	}
	if _, err := parseCondition(r.Condition); err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}
	return nil
}

func (r Rule) severity() string {
	if r.Severity == "" {
		return SeverityWarning
	}
	return r.Severity
}

// Finding is one rule firing on one cell.
type Finding struct {
	Rule     string
	Severity string
	Scope    string
	Delay    int
	Value    float64
	Message  string
}

// Level maps the finding severity to a log level.
func (f Finding) Level() slog.Level {
	switch f.Severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityCritical:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Evaluate tests every rule against every cell of t and returns the findings
// in rule order, then scope-major cell order. Rules that fail to parse are
// skipped; Validate them up front.
func Evaluate(rules []Rule, t *types.GammaTable) []Finding {
	var out []Finding
	for _, rule := range rules {
		cond, err := parseCondition(rule.Condition)
		if err != nil {
			continue
		}
		t.Each(func(scope string, delay int, cell types.Cell) {
			if rule.Scope != "" && rule.Scope != scope {
				return
			}
			fires, value := cond.eval(delay, cell)
			if !fires {
				return
			}
			out = append(out, Finding{
				Rule:     rule.Name,
				Severity: rule.severity(),
				Scope:    scope,
				Delay:    delay,
				Value:    value,
				Message: fmt.Sprintf("[%s] %s fired on %s/%s: %s (value %.4g)",
					rule.severity(), rule.Name, scope, types.DelayLabel(delay), rule.Condition, value),
			})
		})
	}
	return out
}

// Log writes each finding to logger at its severity level.
func Log(logger *slog.Logger, findings []Finding) {
	for _, f := range findings {
		logger.Log(context.Background(), f.Level(), "checks: rule fired",
			"rule", f.Rule,
			"scope", f.Scope,
			"delay", f.Delay,
			"value", f.Value,
			"severity", f.Severity,
		)
	}
}
