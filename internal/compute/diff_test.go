package compute

import (
	"math"
	"testing"

	"github.com/golang-sql/civil"

	"github.com/covidpolicy/gammaest/internal/panel"
)

// baseDate is a fixed reference day so all test dates are deterministic.
var baseDate = civil.Date{Year: 2020, Month: 3, Day: 1}

// day returns baseDate advanced by n days.
func day(n int) civil.Date { return baseDate.AddDays(n) }

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

var (
	chnRegion = panel.MustRegion("CHN", "CHN", "Hubei", "Wuhan")
	korRegion = panel.MustRegion("KOR", "KOR", "Seoul")
)

// steadyRows builds rows for region on the given day offsets with a constant
// active count and a constant number of new removals per calendar day,
// split evenly between recoveries and deaths.
func steadyRows(region panel.Region, days []int, active, removedPerDay float64) []panel.Row {
	rows := make([]panel.Row, 0, len(days))
	for _, n := range days {
		removed := removedPerDay * float64(n)
		rows = append(rows, panel.Row{
			Region: region,
			Date:   day(n),
			Values: map[string]float64{
				panel.ColConfirmed:  active + removed,
				panel.ColActive:     active,
				panel.ColRecoveries: removed / 2,
				panel.ColDeaths:     removed / 2,
			},
		})
	}
	return rows
}

func consecutive(from, to int) []int {
	var out []int
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out
}

func TestDifferences_ConsecutiveDays(t *testing.T) {
	tbl := panel.NewTable(panel.RequiredColumns, steadyRows(korRegion, consecutive(0, 4), 100, 10))

	incs := Differences(tbl)
	if len(incs) != 4 {
		t.Fatalf("len(incs) = %d, want 4 (first row has no predecessor)", len(incs))
	}
	for i, in := range incs {
		if in.Date != day(i+1) {
			t.Errorf("incs[%d].Date = %s, want %s", i, in.Date, day(i+1))
		}
		if !almostEqual(in.Delta[panel.ColRecoveries]+in.Delta[panel.ColDeaths], 10, 1e-9) {
			t.Errorf("incs[%d] new removed = %v, want 10", i,
				in.Delta[panel.ColRecoveries]+in.Delta[panel.ColDeaths])
		}
		if !almostEqual(in.MidActive, 100, 1e-9) {
			t.Errorf("incs[%d].MidActive = %v, want 100", i, in.MidActive)
		}
	}
}

func TestDifferences_GapDiscarded(t *testing.T) {
	// Days 5 and 6 are missing: 1→2, 2→3, 3→4 survive, 4→7 does not.
	days := []int{1, 2, 3, 4, 7, 8}
	tbl := panel.NewTable(panel.RequiredColumns, steadyRows(korRegion, days, 100, 10))

	incs := Differences(tbl)
	want := []civil.Date{day(2), day(3), day(4), day(8)}
	if len(incs) != len(want) {
		t.Fatalf("len(incs) = %d, want %d", len(incs), len(want))
	}
	for i, in := range incs {
		if in.Date != want[i] {
			t.Errorf("incs[%d].Date = %s, want %s", i, in.Date, want[i])
		}
		if in.Date == day(7) {
			t.Error("difference spanning the gap (day 4 → day 7) must be discarded")
		}
	}
}

func TestDifferences_EverySurvivorSpansOneDay(t *testing.T) {
	rows := append(
		steadyRows(korRegion, []int{0, 1, 3, 4, 5, 9, 10, 12}, 50, 3),
		steadyRows(chnRegion, []int{2, 3, 4, 6, 7}, 80, 5)...,
	)
	tbl := panel.NewTable(panel.RequiredColumns, rows)
	present := make(map[panel.Key]bool)
	for _, r := range tbl.Rows {
		present[r.Key()] = true
	}

	for _, in := range Differences(tbl) {
		prev := panel.Key{Region: in.Region, Date: in.Date.AddDays(-1)}
		if !present[prev] {
			t.Errorf("increment %s %s has no row on the preceding day", in.Region, in.Date)
		}
	}
}

func TestDifferences_UnsortedInput(t *testing.T) {
	rows := steadyRows(korRegion, []int{3, 1, 2, 0}, 100, 10)
	rows = append(rows, steadyRows(chnRegion, []int{1, 0}, 100, 10)...)
	incs := Differences(panel.NewTable(panel.RequiredColumns, rows))

	if len(incs) != 4 {
		t.Fatalf("len(incs) = %d, want 4", len(incs))
	}
	// Output is ordered by region then date; CHN sorts first.
	if incs[0].Region != chnRegion {
		t.Errorf("incs[0].Region = %s, want %s", incs[0].Region, chnRegion)
	}
	for i := 2; i < len(incs); i++ {
		if incs[i].Region == incs[i-1].Region && !incs[i-1].Date.Before(incs[i].Date) {
			t.Errorf("increments not in date order: %s then %s", incs[i-1].Date, incs[i].Date)
		}
	}
	for _, in := range incs {
		if !almostEqual(in.Delta[panel.ColRecoveries]+in.Delta[panel.ColDeaths], 10, 1e-9) {
			t.Errorf("%s %s: new removed %v, want 10 (input order must not matter)",
				in.Region, in.Date, in.Delta[panel.ColRecoveries]+in.Delta[panel.ColDeaths])
		}
	}
}

func TestDifferences_RegionsDoNotBleed(t *testing.T) {
	// KOR's last day and CHN's first day are consecutive calendar days; the
	// first CHN row must still produce no increment.
	rows := append(
		steadyRows(chnRegion, []int{5, 6}, 100, 10),
		steadyRows(korRegion, []int{4}, 100, 10)...,
	)
	incs := Differences(panel.NewTable(panel.RequiredColumns, rows))
	if len(incs) != 1 {
		t.Fatalf("len(incs) = %d, want 1", len(incs))
	}
	if incs[0].Region != chnRegion || incs[0].Date != day(6) {
		t.Errorf("unexpected increment %s %s", incs[0].Region, incs[0].Date)
	}
}

func TestDifferences_MidpointAveragesNeighbours(t *testing.T) {
	rows := []panel.Row{
		{Region: korRegion, Date: day(0), Values: map[string]float64{panel.ColActive: 40}},
		{Region: korRegion, Date: day(1), Values: map[string]float64{panel.ColActive: 60}},
	}
	incs := Differences(panel.NewTable(panel.RequiredColumns, rows))
	if len(incs) != 1 {
		t.Fatalf("len(incs) = %d, want 1", len(incs))
	}
	if incs[0].MidActive != 50 {
		t.Errorf("MidActive = %v, want 50", incs[0].MidActive)
	}
	if incs[0].Delta[panel.ColActive] != 20 {
		t.Errorf("Delta[active] = %v, want 20", incs[0].Delta[panel.ColActive])
	}
}

func TestDifferences_Empty(t *testing.T) {
	if incs := Differences(panel.NewTable(panel.RequiredColumns, nil)); len(incs) != 0 {
		t.Errorf("len(incs) = %d, want 0", len(incs))
	}
}
