package compute

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"

	"github.com/covidpolicy/gammaest/internal/panel"
	"github.com/covidpolicy/gammaest/pkg/types"
)

// Options configures the delay sweep.
type Options struct {
	// Delays are the candidate removal delays in days, in output column order.
	Delays []int

	// Countries are the country tags to report separately, in output row
	// order. A pooled row across all rows is always appended.
	Countries []string
}

// Series maps a (region, date) key to a value. An absent key or a NaN value
// is missing.
type Series map[panel.Key]float64

// Ratio is one candidate gamma observation.
type Ratio struct {
	Region panel.Region
	Value  float64
}

// NewRemoved returns the daily new removals (recoveries + deaths) of every
// increment.
func NewRemoved(incs []Increment) Series {
	s := make(Series, len(incs))
	for _, in := range incs {
		s[in.Key()] = in.Delta[panel.ColRecoveries] + in.Delta[panel.ColDeaths]
	}
	return s
}

// Lookahead re-indexes s so that the value at (region, d) is the value of s
// at (region, d+delay). Keys are those of s; a target date absent from s
// yields NaN. A negative delay looks back.
func Lookahead(s Series, delay int) Series {
	out := make(Series, len(s))
	for k := range s {
		v, ok := s[panel.Key{Region: k.Region, Date: k.Date.AddDays(delay)}]
		if !ok {
			v = math.NaN()
		}
		out[k] = v
	}
	return out
}

// Ratios returns the usable gamma observations for delay: removals recorded
// delay days later divided by the midpoint active count. Ratios that are
// missing, non-positive or non-finite are dropped. Output follows incs order.
func Ratios(incs []Increment, removed Series, delay int) []Ratio {
	shifted := Lookahead(removed, delay)
	out := make([]Ratio, 0, len(incs))
	for _, in := range incs {
		v, ok := shifted[in.Key()]
		if !ok {
			continue
		}
		g := v / in.MidActive
		if !usable(g) {
			continue
		}
		out = append(out, Ratio{Region: in.Region, Value: g})
	}
	return out
}

// Estimate sweeps opts.Delays over incs and returns the median gamma per
// country and pooled.
func Estimate(incs []Increment, opts Options) (*types.GammaTable, error) {
	if len(opts.Delays) == 0 {
		return nil, fmt.Errorf("compute: estimate: no delays configured")
	}
	scopes := append(append([]string(nil), opts.Countries...), types.ScopePooled)
	table := types.NewGammaTable(scopes, opts.Delays)
	removed := NewRemoved(incs)

	for j, delay := range opts.Delays {
		ratios := Ratios(incs, removed, delay)
		for i, country := range opts.Countries {
			inScope := lo.Filter(ratios, func(r Ratio, _ int) bool {
				return r.Region.Country == country
			})
			table.Cells[i][j] = medianCell(inScope)
		}
		table.Cells[len(scopes)-1][j] = medianCell(ratios)

		slog.Debug("compute: delay evaluated",
			"delay", delay, "ratios", len(ratios), "increments", len(incs))
	}
	return table, nil
}

// medianCell reduces ratios to their median. No ratios gives a missing cell.
func medianCell(ratios []Ratio) types.Cell {
	if len(ratios) == 0 {
		return types.MissingCell()
	}
	vals := lo.Map(ratios, func(r Ratio, _ int) float64 { return r.Value })
	m, err := stats.Median(vals)
	if err != nil {
		return types.MissingCell()
	}
	return types.Cell{Gamma: m, Observations: len(vals)}
}

// usable reports whether g is a positive, finite rate.
func usable(g float64) bool {
	return g > 0 && !math.IsInf(g, 0) && !math.IsNaN(g)
}
