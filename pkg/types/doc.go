// Package types defines the gamma estimate table shared by the estimator,
// the writers and the plausibility checks. It is also the canonical
// in-memory form for Go callers that consume estimates directly instead of
// reading the CSV.
package types
