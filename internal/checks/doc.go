// Package checks evaluates plausibility rules against a gamma estimate
// table. Rules are configured as "field op value" conditions, e.g.
// "gamma > 1" or "status == missing"; every (scope, delay) cell for which a
// rule's condition holds produces a Finding. Findings are reported in the
// run log and never change the estimates that get written.
package checks
