package panel

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/golang-sql/civil"
	"github.com/samber/lo"
)

// Column names the estimator reads. All of them must be present and
// numeric in every input dataset.
const (
	ColConfirmed  = "cum_confirmed_cases"
	ColActive     = "active_cases"
	ColRecoveries = "cum_recoveries"
	ColDeaths     = "cum_deaths"
)

// RequiredColumns lists the numeric columns the pipeline depends on.
var RequiredColumns = []string{ColConfirmed, ColActive, ColRecoveries, ColDeaths}

// Key is the row identifier of a panel table.
type Key struct {
	Region Region
	Date   civil.Date
}

// Row is one observation of one region on one calendar day.
type Row struct {
	Region Region
	Date   civil.Date
	Values map[string]float64
}

// Key returns the (region, date) identifier of r.
func (r Row) Key() Key { return Key{Region: r.Region, Date: r.Date} }

// Get returns the value of col, or NaN when the column is absent.
func (r Row) Get(col string) float64 {
	v, ok := r.Values[col]
	if !ok {
		return math.NaN()
	}
	return v
}

// Table is an ordered set of rows sharing the numeric column set Columns.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable returns a Table over rows with the given numeric columns. Each
// row gets its own copy of the value map, and columns a row lacks are set
// to NaN.
func NewTable(columns []string, rows []Row) *Table {
	cols := slices.Clone(columns)
	slices.Sort(cols)
	cols = slices.Compact(cols)

	out := make([]Row, len(rows))
	for i, r := range rows {
		vals := make(map[string]float64, len(cols))
		for _, c := range cols {
			vals[c] = r.Get(c)
		}
		out[i] = Row{Region: r.Region, Date: r.Date, Values: vals}
	}
	return &Table{Columns: cols, Rows: out}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Regions returns the distinct regions in t, in first-seen order.
func (t *Table) Regions() []Region {
	return lo.Uniq(lo.Map(t.Rows, func(r Row, _ int) Region { return r.Region }))
}

// Concat unions tables into one. The result carries the union of their
// columns; a column absent from a source table is NaN for that table's rows.
// A (region, date) key that occurs more than once is an error.
func Concat(tables ...*Table) (*Table, error) {
	var cols []string
	var rows []Row
	seen := make(map[Key]struct{})
	for _, t := range tables {
		cols = append(cols, t.Columns...)
		for _, r := range t.Rows {
			k := r.Key()
			if _, dup := seen[k]; dup {
				return nil, fmt.Errorf("panel: duplicate row for region %q on %s", r.Region, r.Date)
			}
			seen[k] = struct{}{}
			rows = append(rows, r)
		}
	}
	return NewTable(cols, rows), nil
}

// Filter keeps rows whose cumulative confirmed cases reach minCases and whose
// active case count is positive, sorted by region then date. Rows with a NaN
// in either column are dropped. Filter is idempotent.
func Filter(t *Table, minCases float64) *Table {
	kept := lo.Filter(t.Rows, func(r Row, _ int) bool {
		return r.Get(ColConfirmed) >= minCases && r.Get(ColActive) > 0
	})
	return Sort(&Table{Columns: t.Columns, Rows: cloneRows(kept)})
}

// Sort returns a copy of t ordered by region then date. Ties keep their
// input order.
func Sort(t *Table) *Table {
	rows := cloneRows(t.Rows)
	slices.SortStableFunc(rows, compareRows)
	return &Table{Columns: slices.Clone(t.Columns), Rows: rows}
}

// IsSorted reports whether t is ordered by region then date.
func IsSorted(t *Table) bool {
	return slices.IsSortedFunc(t.Rows, compareRows)
}

func compareRows(a, b Row) int {
	if c := a.Region.Compare(b.Region); c != 0 {
		return c
	}
	switch {
	case a.Date.Before(b.Date):
		return -1
	case a.Date.After(b.Date):
		return 1
	default:
		return 0
	}
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{Region: r.Region, Date: r.Date, Values: maps.Clone(r.Values)}
	}
	return out
}
