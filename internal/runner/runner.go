package runner

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/covidpolicy/gammaest/internal/checks"
	"github.com/covidpolicy/gammaest/internal/compute"
	"github.com/covidpolicy/gammaest/internal/config"
	"github.com/covidpolicy/gammaest/internal/loader"
	"github.com/covidpolicy/gammaest/internal/panel"
	"github.com/covidpolicy/gammaest/internal/report"
	"github.com/covidpolicy/gammaest/pkg/types"
)

// Result is the outcome of a successful run.
type Result struct {
	Table    *types.GammaTable
	Findings []checks.Finding

	// Written lists the output files in the order they were written.
	Written []string
}

// Run performs the full pipeline for cfg. Outputs are rendered only after
// the estimate table is complete and are committed together, so an error at
// any stage leaves no output of this run on disk.
func Run(cfg *config.Config, runID string, logger *slog.Logger) (*Result, error) {
	raw, err := loader.LoadAll(cfg.Sources())
	if err != nil {
		return nil, err
	}
	logger.Info("loader: datasets loaded",
		"rows", raw.Len(), "regions", len(raw.Regions()), "columns", len(raw.Columns))

	filtered := panel.Filter(raw, cfg.MinCumCases)
	logger.Info("panel: rows filtered",
		"kept", filtered.Len(), "dropped", raw.Len()-filtered.Len(),
		"regions", len(filtered.Regions()), "min_cum_cases", cfg.MinCumCases)

	incs := compute.Differences(filtered)
	logger.Info("compute: daily increments derived", "increments", len(incs))

	table, err := compute.Estimate(incs, compute.Options{
		Delays:    cfg.RemovalDelays.Days(),
		Countries: cfg.Tags(),
	})
	if err != nil {
		return nil, err
	}
	table.Each(func(scope string, delay int, c types.Cell) {
		logger.Debug("compute: estimate",
			"scope", scope, "delay", delay, "gamma", c.Gamma, "observations", c.Observations)
	})

	findings := checks.Evaluate(cfg.Checks, table)
	checks.Log(logger, findings)

	res := &Result{Table: table, Findings: findings}
	if err := write(cfg, runID, res); err != nil {
		return nil, err
	}
	for _, path := range res.Written {
		logger.Info("report: written", "path", path)
	}
	return res, nil
}

// write renders every configured output, gamma CSV first, and commits them
// together. A failure leaves no output of this run on disk.
func write(cfg *config.Config, runID string, res *Result) error {
	renders := []struct {
		path   string
		encode func(w io.Writer) error
	}{
		{cfg.OutputPath(cfg.Output.GammaCSV), func(w io.Writer) error { return report.EncodeCSV(w, res.Table) }},
		{cfg.OutputPath(cfg.Output.LongCSV), func(w io.Writer) error { return report.EncodeLongCSV(w, runID, res.Table) }},
		{cfg.OutputPath(cfg.Output.SummaryMD), func(w io.Writer) error {
			return report.RenderSummary(w, report.Summary{RunID: runID, Table: res.Table, Findings: res.Findings})
		}},
		{cfg.OutputPath(cfg.Output.Textfile), func(w io.Writer) error { return report.EncodeTextfile(w, res.Table) }},
	}

	var outputs []report.Output
	for _, r := range renders {
		if r.path == "" {
			continue
		}
		var buf bytes.Buffer
		if err := r.encode(&buf); err != nil {
			return fmt.Errorf("runner: render %s: %w", r.path, err)
		}
		outputs = append(outputs, report.Output{Path: r.path, Data: buf.Bytes()})
	}
	if err := report.WriteAll(outputs); err != nil {
		return fmt.Errorf("runner: %w", err)
	}
	for _, o := range outputs {
		res.Written = append(res.Written, o.Path)
	}
	return nil
}
