// Package report persists a gamma estimate table.
//
//   - WriteCSV writes the wide table consumed by the downstream model: one
//     row per scope labelled adm0_name, one removal_delay_<L> column per
//     delay, empty cells where the estimate is missing.
//   - WriteLongCSV writes one row per (scope, delay) with the observation
//     count and run ID.
//   - RenderSummary / WriteSummary render a Markdown table for people.
//   - WriteTextfile writes a Prometheus text exposition for node-exporter's
//     textfile collector. Missing cells are omitted.
//
// Every writer creates or truncates its file. A write failure is returned to
// the caller; nothing is retried.
package report
