// Package loader reads the per-country regression-ready CSV files into a
// single panel table.
//
// Each Source names a country tag, a file and the administrative columns
// that identify a region in that file (three levels for CHN, two for KOR in
// the default configuration). Rows are keyed by (Region, civil.Date).
//
// Column handling mirrors a dataframe "select numeric": every non-key column
// whose cells all parse as numbers (NA tokens allowed) is kept; the rest are
// dropped. The columns the estimator reads must be present and numeric.
//
// Unparseable dates, missing required columns and duplicate (region, date)
// keys abort the load; there is no partial result.
package loader
