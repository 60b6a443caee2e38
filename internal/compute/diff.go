package compute

import (
	"log/slog"
	"slices"

	"github.com/golang-sql/civil"
	"github.com/samber/lo"

	"github.com/covidpolicy/gammaest/internal/panel"
)

// Increment is the change of one region between two consecutive calendar
// days. Date is the later of the two days.
type Increment struct {
	Region panel.Region
	Date   civil.Date

	// Delta holds row[t] - row[t-1] for every numeric column.
	Delta map[string]float64

	// MidActive is the average of the active case counts on both days.
	MidActive float64
}

// Key returns the (region, date) identifier of the increment.
func (in Increment) Key() panel.Key {
	return panel.Key{Region: in.Region, Date: in.Date}
}

// Differences computes daily increments for every region of t.
//
// Rows are grouped by region and each group is ordered by date before
// differencing, so callers need not pre-sort. The step between a row and its
// predecessor is measured on t itself (the filtered table, not the raw
// data): only steps of exactly one day produce an increment. The first row of
// each region never does.
//
// Output is ordered by region then date.
func Differences(t *panel.Table) []Increment {
	groups := lo.GroupBy(t.Rows, func(r panel.Row) panel.Region { return r.Region })
	regions := lo.Keys(groups)
	slices.SortFunc(regions, panel.Region.Compare)

	var out []Increment
	for _, region := range regions {
		rows := slices.Clone(groups[region])
		slices.SortStableFunc(rows, func(a, b panel.Row) int {
			return a.Date.DaysSince(b.Date)
		})

		var skipped int
		for i := 1; i < len(rows); i++ {
			prev, cur := rows[i-1], rows[i]
			if cur.Date.DaysSince(prev.Date) != 1 {
				skipped++
				continue
			}
			out = append(out, Increment{
				Region:    region,
				Date:      cur.Date,
				Delta:     deltaOf(cur, prev, t.Columns),
				MidActive: midpoint(cur.Get(panel.ColActive), prev.Get(panel.ColActive)),
			})
		}
		if skipped > 0 {
			slog.Debug("compute: discarded differences across reporting gaps",
				"region", region.String(), "pairs", skipped)
		}
	}
	return out
}

// deltaOf returns cur - prev for every column. NaN propagates.
func deltaOf(cur, prev panel.Row, columns []string) map[string]float64 {
	d := make(map[string]float64, len(columns))
	for _, c := range columns {
		d[c] = cur.Get(c) - prev.Get(c)
	}
	return d
}

func midpoint(a, b float64) float64 {
	return (a + b) / 2
}
