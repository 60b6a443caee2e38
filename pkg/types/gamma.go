package types

import (
	"fmt"
	"math"
	"slices"
)

// ScopePooled is the scope label of estimates computed across all countries.
const ScopePooled = "pooled"

// ScopeIndexName labels the scope column of the wide output table.
const ScopeIndexName = "adm0_name"

// DelayLabel returns the column header used for a removal delay of d days.
func DelayLabel(d int) string {
	return fmt.Sprintf("removal_delay_%d", d)
}

// Cell is one (scope, delay) estimate.
type Cell struct {
	// Gamma is the median removal rate. NaN when no valid ratio existed.
	Gamma float64

	// Observations is the number of ratios the median was taken over.
	Observations int
}

// Missing reports whether the cell holds no estimate.
func (c Cell) Missing() bool {
	return c.Observations == 0 || math.IsNaN(c.Gamma)
}

// MissingCell is the value of a cell with no valid observations.
func MissingCell() Cell {
	return Cell{Gamma: math.NaN()}
}

// GammaTable holds one row per scope and one column per delay.
// Cells[i][j] is the estimate for Scopes[i] at Delays[j].
type GammaTable struct {
	Scopes []string
	Delays []int
	Cells  [][]Cell
}

// NewGammaTable returns a table with every cell missing.
func NewGammaTable(scopes []string, delays []int) *GammaTable {
	t := &GammaTable{
		Scopes: append([]string(nil), scopes...),
		Delays: append([]int(nil), delays...),
		Cells:  make([][]Cell, len(scopes)),
	}
	for i := range t.Cells {
		t.Cells[i] = make([]Cell, len(delays))
		for j := range t.Cells[i] {
			t.Cells[i][j] = MissingCell()
		}
	}
	return t
}

// Lookup returns the cell for scope at delay, and false when either is not
// part of the table.
func (t *GammaTable) Lookup(scope string, delay int) (Cell, bool) {
	i, j := slices.Index(t.Scopes, scope), slices.Index(t.Delays, delay)
	if i < 0 || j < 0 {
		return Cell{}, false
	}
	return t.Cells[i][j], true
}

// Each calls fn for every cell in scope-major order.
func (t *GammaTable) Each(fn func(scope string, delay int, c Cell)) {
	for i, s := range t.Scopes {
		for j, d := range t.Delays {
			fn(s, d, t.Cells[i][j])
		}
	}
}
