// Package panel holds the in-memory panel table the estimator works on: one
// row per (region, date) with a map of numeric columns.
//
// region.go defines Region, the typed hierarchical identifier (country tag
// plus ordered administrative names). Regions are comparable and ordered, so
// they can key maps and drive sorting without building composite strings.
//
// table.go defines Row and Table plus the pure transformations the pipeline
// applies before differencing:
//   - Concat unions tables, NaN-filling columns missing from a source
//   - Filter keeps rows with cum_confirmed_cases >= min and active_cases > 0
//   - Sort orders rows by region then date
//
// Every transformation returns a new Table; rows are never mutated after
// construction. Missing numeric cells are NaN.
package panel
