// Package compute derives removal-rate (gamma) estimates from a filtered
// panel table.
//
// diff.go provides Differences, the gap-aware differencer. It groups rows by
// region, orders each group by date, and emits an Increment for every pair of
// rows exactly one calendar day apart: the per-column first difference plus
// the midpoint active-case count (active[t] + active[t-1]) / 2. Pairs that
// span a reporting gap are discarded, so every increment is a true daily
// change.
//
// gamma.go provides the delay sweep. For a delay L, Lookahead attributes the
// removals (recoveries + deaths) recorded L days later back to the current
// day, Ratios divides them by the midpoint active count, and Estimate takes
// the median of the positive, finite ratios per country and pooled.
//
// Formula for one increment at date t and delay L:
//
//	gamma(t, L) = new_removed(t + L) / ((active(t) + active(t-1)) / 2)
//
// A scope with no valid ratio at some delay yields a missing cell.
package compute
