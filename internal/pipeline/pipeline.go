// Package pipeline runs a full merge: load, dedupe, normalize, replace,
// aggregate and export.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/stmtmerge/internal/config"
	"github.com/cleared-dev/stmtmerge/internal/export"
	"github.com/cleared-dev/stmtmerge/internal/importer"
	"github.com/cleared-dev/stmtmerge/internal/model"
	"github.com/cleared-dev/stmtmerge/internal/normalize"
	"github.com/cleared-dev/stmtmerge/internal/rules"
	"github.com/cleared-dev/stmtmerge/internal/summary"
)

// Fatal error kinds. Each aborts the run.
var (
	ErrNoSources           = errors.New("no statement files found")
	ErrSourceUnreadable    = errors.New("statement file unreadable")
	ErrReplacementsMissing = errors.New("replacement table missing")
	ErrNormalize           = errors.New("normalization failed")
)

// Result describes a completed run.
type Result struct {
	Sources []importer.FileInfo
	Loaded  int // records after merge, before dedupe
	Records *model.RecordSet
	Rules   rules.Report
	Summary *summary.Summary // nil when aggregation is off
	Files   export.Files
}

// Output is the in-memory product of Process.
type Output struct {
	Records *model.RecordSet
	Rules   rules.Report
	Summary *summary.Summary
}

// Process runs the in-memory stages on a merged RecordSet: dedupe, normalize,
// apply rules (which dedupes again) and, if aggregate is set, build the summary.
// rs is modified in place.
func Process(rs *model.RecordSet, table []rules.Rule, aggregate bool, log zerolog.Logger) (*Output, error) {
	removed := rs.Dedupe()
	log.Info().Int("records", rs.Len()).Int("duplicates", removed).Msg("deduplicated sources")

	if err := normalize.Normalize(rs, normalize.Options{DeriveCalendar: aggregate}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNormalize, err)
	}
	log.Debug().Strs("columns", rs.Columns()).Msg("normalized")

	report := rules.Replace(rs, table)
	for _, ve := range report.Invalid {
		log.Warn().Int("row", ve.Row).Str("field", ve.Field).Msg("skipping replacement rule: " + ve.Description)
	}
	for _, o := range report.Failed() {
		log.Warn().Err(o.Err).Int("row", o.Rule.Row).Msg("replacement rule failed")
	}
	log.Info().
		Int("rules", len(report.Outcomes)).
		Int("failed", len(report.Failed())).
		Int("duplicates", report.Removed).
		Int("records", rs.Len()).
		Msg("applied replacements")

	out := &Output{Records: rs, Rules: report}
	if !aggregate {
		return out, nil
	}

	sum, err := summary.Build(rs)
	if err != nil {
		return nil, fmt.Errorf("aggregating: %w", err)
	}
	log.Info().
		Int("expense_categories", len(sum.Expenses.Categories)).
		Int("revenue_categories", len(sum.Revenues.Categories)).
		Msg("aggregated")
	out.Summary = sum
	return out, nil
}

// Run executes the pipeline for the workspace in dir using cfg.
// now stamps the output file names; zero means the current time.
func Run(dir string, cfg *config.Config, now time.Time, log zerolog.Logger) (*Result, error) {
	inputDir := config.Path(dir, cfg.InputDir)
	files, err := importer.Scan(inputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSources, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSources, inputDir)
	}
	for _, f := range files {
		log.Debug().Str("file", f.Name).Int64("size", f.Size).Msg("found source")
	}

	rs, err := importer.Load(&importer.StatementParser{}, files)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	loaded := rs.Len()
	log.Info().Int("sources", len(files)).Int("records", loaded).Msg("loaded statements")

	table, err := rules.Load(config.Path(dir, cfg.Replacements))
	if err != nil {
		if errors.Is(err, rules.ErrTableNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrReplacementsMissing, err)
		}
		return nil, fmt.Errorf("loading replacements: %w", err)
	}

	out, err := Process(rs, table, cfg.Aggregate, log)
	if err != nil {
		return nil, err
	}

	written, err := export.Write(export.Options{
		Dir:       config.Path(dir, cfg.OutputDir),
		BaseName:  cfg.OutputName,
		Timestamp: cfg.Timestamp,
		Now:       now,
	}, out.Records, out.Summary)
	if err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	log.Info().Str("csv", written.CSV).Str("xlsx", written.XLSX).Msg("wrote output")

	return &Result{
		Sources: files,
		Loaded:  loaded,
		Records: out.Records,
		Rules:   out.Rules,
		Summary: out.Summary,
		Files:   written,
	}, nil
}
