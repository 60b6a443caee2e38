package checks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/covidpolicy/gammaest/pkg/types"
)

// Cell statuses usable in a "status == ..." condition.
const (
	StatusMissing = "missing"
	StatusPresent = "present"
)

// condition is a parsed "field op value" expression.
type condition struct {
	field     string
	op        string
	rhs       string
	threshold float64
}

// parseCondition parses a rule condition.
//
// Supported expressions (field operator value):
//
//	gamma > 1
//	gamma <= 0.01
//	observations < 30
//	delay == 0
//	status == missing
//	status == present
func parseCondition(s string) (condition, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return condition{}, fmt.Errorf("condition %q: want \"field op value\"", s)
	}
	c := condition{field: parts[0], op: parts[1], rhs: parts[2]}

	if c.field == "status" {
		if c.op != "==" {
			return condition{}, fmt.Errorf("condition %q: status only supports ==", s)
		}
		if c.rhs != StatusMissing && c.rhs != StatusPresent {
			return condition{}, fmt.Errorf("condition %q: unknown status %q", s, c.rhs)
		}
		return c, nil
	}

	switch c.field {
	case "gamma", "observations", "delay":
	default:
		return condition{}, fmt.Errorf("condition %q: unknown field %q", s, c.field)
	}
	switch c.op {
	case ">", ">=", "<", "<=", "==":
	default:
		return condition{}, fmt.Errorf("condition %q: unknown operator %q", s, c.op)
	}
	v, err := strconv.ParseFloat(c.rhs, 64)
	if err != nil {
		return condition{}, fmt.Errorf("condition %q: value %q is not a number", s, c.rhs)
	}
	c.threshold = v
	return c, nil
}

// eval tests the condition against one cell.
// Returns (fires bool, triggering value float64). Numeric conditions never
// fire for a missing cell; only status conditions see it.
func (c condition) eval(delay int, cell types.Cell) (bool, float64) {
	if c.field == "status" {
		missing := cell.Missing()
		return missing == (c.rhs == StatusMissing), 0
	}
	if cell.Missing() {
		return false, 0
	}
	var v float64
	switch c.field {
	case "gamma":
		v = cell.Gamma
	case "observations":
		v = float64(cell.Observations)
	case "delay":
		v = float64(delay)
	default:
		return false, 0
	}
	return compareFloat(v, c.op, c.threshold), v
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
