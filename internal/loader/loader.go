package loader

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/golang-sql/civil"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/covidpolicy/gammaest/internal/panel"
)

// DefaultDateColumn is the date column of the regression-ready datasets.
const DefaultDateColumn = "date"

// naTokens are cell values read as a missing number.
var naTokens = []string{"", "NA", "NaN", "nan", "N/A", "n/a", "null", "NULL"}

// dateLayouts are tried in order after civil.ParseDate fails.
var dateLayouts = []string{"2006-01-02 15:04:05", time.RFC3339}

// Source describes one country's regression-ready dataset.
type Source struct {
	// Country is the tag stamped on every region of the dataset, e.g. "KOR".
	Country string

	// Path is the CSV file location.
	Path string

	// AdminColumns are the administrative name columns, coarsest first.
	// Their values form the region identifier.
	AdminColumns []string

	// DateColumn names the observation date column. Empty means "date".
	DateColumn string
}

// LoadAll loads every source and unions them into one panel table.
func LoadAll(sources []Source) (*panel.Table, error) {
	tables := make([]*panel.Table, 0, len(sources))
	for _, src := range sources {
		t, err := Load(src)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	t, err := panel.Concat(tables...)
	if err != nil {
		return nil, errors.Wrap(err, "loader: combine sources")
	}
	return t, nil
}

// Load reads one source into a panel table. Only numeric columns are kept;
// admin and date columns are consumed into the row key. The header is
// validated even when the file has no data rows.
func Load(src Source) (*panel.Table, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "loader: open %s", src.Path)
	}

	header, err := readHeader(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loader: parse %s", src.Path)
	}
	records, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "loader: parse %s", src.Path)
	}
	t, err := buildTable(src, header, records)
	if err != nil {
		return nil, errors.Wrapf(err, "loader: %s", src.Path)
	}
	return t, nil
}

// readHeader returns the first CSV record of data. gocsv.CSVToMaps drops the
// header of a file without data rows.
func readHeader(data []byte) ([]string, error) {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return nil, errors.New("empty file, no header")
	}
	if err != nil {
		return nil, errors.Wrap(err, "header")
	}
	return header, nil
}

// buildTable converts parsed CSV records of src into panel rows. Column
// presence is checked against header; with no records every non-key column
// counts as numeric.
func buildTable(src Source, header []string, records []map[string]string) (*panel.Table, error) {
	dateCol := src.DateColumn
	if dateCol == "" {
		dateCol = DefaultDateColumn
	}

	keyCols := append([]string{dateCol}, src.AdminColumns...)
	for _, want := range keyCols {
		if !slices.Contains(header, want) {
			return nil, errors.Errorf("missing column %q", want)
		}
	}

	numeric := numericColumns(records, lo.Without(header, keyCols...))
	for _, want := range panel.RequiredColumns {
		if !slices.Contains(header, want) {
			return nil, errors.Errorf("missing column %q", want)
		}
		if !slices.Contains(numeric, want) {
			return nil, errors.Errorf("column %q is not numeric", want)
		}
	}

	rows := make([]panel.Row, 0, len(records))
	for i, rec := range records {
		line := i + 2 // header is line 1
		d, err := parseDate(rec[dateCol])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: column %q", line, dateCol)
		}
		names := lo.Map(src.AdminColumns, func(c string, _ int) string { return rec[c] })
		region, err := panel.NewRegion(src.Country, names...)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		vals := make(map[string]float64, len(numeric))
		for _, c := range numeric {
			vals[c] = parseNumber(rec[c])
		}
		rows = append(rows, panel.Row{Region: region, Date: d, Values: vals})
	}
	return panel.NewTable(numeric, rows), nil
}

// numericColumns returns the candidate columns whose every non-NA cell
// parses as a float, sorted by name.
func numericColumns(records []map[string]string, candidates []string) []string {
	out := lo.Filter(candidates, func(c string, _ int) bool {
		for _, rec := range records {
			if isNA(rec[c]) {
				continue
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64); err != nil {
				return false
			}
		}
		return true
	})
	slices.Sort(out)
	return out
}

// parseNumber parses a cell already known to be numeric or NA.
func parseNumber(s string) float64 {
	if isNA(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func isNA(s string) bool {
	return slices.Contains(naTokens, strings.TrimSpace(s))
}

// parseDate accepts YYYY-MM-DD, a datetime with a zero-padded clock, or
// RFC 3339. The time of day is discarded.
func parseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, errors.Errorf("unparseable date %q", s)
}
