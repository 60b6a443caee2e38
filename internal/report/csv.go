package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/covidpolicy/gammaest/pkg/types"
)

// EstimateRecord is one row of the long-format export.
type EstimateRecord struct {
	RunID        string `csv:"run_id"`
	Scope        string `csv:"scope"`
	RemovalDelay int    `csv:"removal_delay"`
	Gamma        string `csv:"gamma"`
	Observations int    `csv:"observations"`
}

// WriteCSV writes the wide estimate table to path.
func WriteCSV(path string, t *types.GammaTable) error {
	return createFile(path, func(f *os.File) error {
		return EncodeCSV(f, t)
	})
}

// EncodeCSV writes the wide estimate table to w.
func EncodeCSV(w io.Writer, t *types.GammaTable) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Delays)+1)
	header = append(header, types.ScopeIndexName)
	for _, d := range t.Delays {
		header = append(header, types.DelayLabel(d))
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "report: write header")
	}

	for i, scope := range t.Scopes {
		rec := make([]string, 0, len(t.Delays)+1)
		rec = append(rec, scope)
		for j := range t.Delays {
			rec = append(rec, formatGamma(t.Cells[i][j]))
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "report: write row %s", scope)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "report: flush csv")
}

// LongRecords flattens t into one record per cell, scope-major.
func LongRecords(runID string, t *types.GammaTable) []EstimateRecord {
	var out []EstimateRecord
	t.Each(func(scope string, delay int, c types.Cell) {
		out = append(out, EstimateRecord{
			RunID:        runID,
			Scope:        scope,
			RemovalDelay: delay,
			Gamma:        formatGamma(c),
			Observations: c.Observations,
		})
	})
	return out
}

// WriteLongCSV writes the long-format table to path.
func WriteLongCSV(path, runID string, t *types.GammaTable) error {
	records := LongRecords(runID, t)
	return createFile(path, func(f *os.File) error {
		return errors.Wrap(gocsv.MarshalFile(&records, f), "report: write long csv")
	})
}

// EncodeLongCSV writes the long-format table to w.
func EncodeLongCSV(w io.Writer, runID string, t *types.GammaTable) error {
	records := LongRecords(runID, t)
	return errors.Wrap(gocsv.Marshal(&records, w), "report: encode long csv")
}

// formatGamma renders a cell value with the fewest digits that round-trip.
// Missing cells render empty.
func formatGamma(c types.Cell) string {
	if c.Missing() {
		return ""
	}
	return strconv.FormatFloat(c.Gamma, 'g', -1, 64)
}

// createFile creates path (and its directory), runs write, and closes the
// file, returning the first error.
func createFile(path string, write func(*os.File) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "report: create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "report: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "report: close %s", path)
		}
	}()
	if err := write(f); err != nil {
		return errors.Wrapf(err, "report: %s", path)
	}
	return nil
}
