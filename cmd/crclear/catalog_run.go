package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"crclear/internal/catalog"
	"crclear/internal/catalogdb"
	"crclear/internal/config"
	"crclear/internal/faults"
	"crclear/internal/gazetteer"
	"crclear/internal/logging"
	"crclear/internal/metrics"
	"crclear/internal/record"
	"crclear/internal/stream"
	"crclear/internal/textutil"
)

const reviewFileName = "review.ndjson"

type catalogIndexOptions struct {
	input      string
	format     string
	dbPath     string
	appendOnly bool
}

type catalogIndexReport struct {
	Database string `json:"database"`
	Lines    int    `json:"lines"`
	Accepted int    `json:"accepted"`
	Skipped  int    `json:"skipped"`
	Rejected int    `json:"rejected"`
	Unkeyed  int    `json:"unkeyed"`
	Entries  int    `json:"entries"`
	Keys     int    `json:"keys"`
}

type catalogMatchOptions struct {
	input         string
	format        string
	dbPath        string
	registrations []string
	outPath       string
	cutoff        float64
}

type histogramRow struct {
	Quality float64 `json:"quality"`
	Count   int     `json:"count"`
}

type catalogMatchReport struct {
	Output        string         `json:"output"`
	Registrations int            `json:"registrations"`
	Matched       int            `json:"matched"`
	Candidates    int            `json:"candidates"`
	Reviewed      int            `json:"reviewed"`
	Cutoff        float64        `json:"cutoff"`
	Histogram     []histogramRow `json:"histogram"`
}

// runCatalogIndex loads a catalog dump into the SQLite title-key index.
func runCatalogIndex(ctx context.Context, cfg *config.Config, opts catalogIndexOptions, logger *slog.Logger) (catalogIndexReport, error) {
	started := time.Now()
	recorder := metrics.New()

	n, err := newNormalizer(cfg)
	if err != nil {
		return catalogIndexReport{}, err
	}
	store, err := catalogdb.Open(ctx, opts.dbPath)
	if err != nil {
		return catalogIndexReport{}, err
	}
	defer store.Close()

	if !opts.appendOnly {
		if err := store.Clear(ctx); err != nil {
			return catalogIndexReport{}, faults.Wrap(faults.ErrIO, stageCatalogIndex, "clear", opts.dbPath, err)
		}
	}

	f, err := os.Open(opts.input)
	if err != nil {
		return catalogIndexReport{}, faults.Wrap(faults.ErrIO, stageCatalogIndex, "open", opts.input, err)
	}
	defer f.Close()

	report := catalogIndexReport{Database: store.Path()}
	writer := store.NewWriter(catalogdb.DefaultBatchSize)
	progress := logging.NewProgressCounter(logger, "indexing catalog records", cfg.Logging.ProgressInterval)
	stats, err := catalog.Load(ctx, opts.format, f, catalog.NewPolicy(cfg), func(rec catalog.Record) error {
		progress.Tick()
		entry, ok := catalog.NewEntry(n, rec)
		if !ok {
			report.Unkeyed++
			return nil
		}
		return writer.Add(ctx, entry)
	})
	progress.Done()
	if err != nil {
		return catalogIndexReport{}, err
	}
	if err := writer.Flush(ctx); err != nil {
		return catalogIndexReport{}, err
	}

	dbStats, err := store.Stats(ctx)
	if err != nil {
		return catalogIndexReport{}, err
	}
	report.Lines = stats.Lines
	report.Accepted = stats.Accepted
	report.Skipped = stats.Skipped
	report.Rejected = stats.Rejected
	report.Entries = dbStats.Entries
	report.Keys = dbStats.Keys

	recordLoadStats(recorder, stats)
	recorder.ObserveStage(stageCatalogIndex, time.Since(started))
	writeMetrics(recorder, cfg, logger)

	logger.Info("catalog index built",
		logging.Int("entries_written", writer.Written()),
		logging.Int("title_keys", report.Keys),
		logging.String(logging.FieldPath, report.Database),
	)
	return report, nil
}

// runCatalogMatch scores every registration in opts.registrations against
// the catalog and writes the reviewable candidates, best first.
func runCatalogMatch(ctx context.Context, cfg *config.Config, opts catalogMatchOptions, logger *slog.Logger) (catalogMatchReport, error) {
	started := time.Now()
	recorder := metrics.New()
	policy := catalog.NewPolicy(cfg)

	gaz, err := gazetteer.Load(cfg.Paths.ReferenceFile)
	if err != nil {
		return catalogMatchReport{}, err
	}
	n := textutil.NewNormalizer(gaz.GenericTitles)

	var source catalog.Source
	if opts.input != "" {
		index, stats, err := loadCatalogIndex(ctx, opts, n, policy, logger)
		if err != nil {
			return catalogMatchReport{}, err
		}
		recordLoadStats(recorder, stats)
		source = index
	} else {
		store, err := catalogdb.Open(ctx, opts.dbPath)
		if err != nil {
			return catalogMatchReport{}, err
		}
		defer store.Close()
		source = store
	}

	matcher := catalog.NewMatcher(source, catalog.NewScorer(policy, gaz, n), n, policy, logger)
	histogram := catalog.NewHistogram()
	report := catalogMatchReport{Cutoff: opts.cutoff}

	var all []catalog.Candidate
	progress := logging.NewProgressCounter(logger, "matching registrations", cfg.Logging.ProgressInterval)
	err = stream.DecodeFiles(ctx, opts.registrations, func(path string, line int, reg *record.Registration, _ []byte, err error) error {
		if err != nil {
			logging.WarnWithContext(logger, "skipping malformed registration", "malformed_record",
				logging.String(logging.FieldPath, path),
				logging.Int(logging.FieldLine, line),
				logging.Error(err),
				logging.String(logging.FieldImpact, "registration not matched against the catalog"),
			)
			return nil
		}
		var regs []*record.Registration
		reg.Walk(func(r *record.Registration) { regs = append(regs, r) })
		for _, r := range regs {
			progress.Tick()
			report.Registrations++
			candidates, err := matcher.Match(ctx, r.Detached())
			if err != nil {
				return err
			}
			if len(candidates) > 0 {
				report.Matched++
			}
			for _, c := range candidates {
				histogram.Add(c.Quality)
			}
			all = append(all, candidates...)
		}
		return nil
	})
	progress.Done()
	if err != nil {
		return catalogMatchReport{}, err
	}

	reviewed := catalog.Review(all, opts.cutoff)
	output, err := writeReview(opts.outPath, reviewed, logger)
	if err != nil {
		return catalogMatchReport{}, err
	}
	for _, c := range reviewed {
		recorder.ObserveQuality(c.Quality)
	}

	report.Output = output
	report.Candidates = len(all)
	report.Reviewed = len(reviewed)
	for _, bin := range histogram.Bins() {
		report.Histogram = append(report.Histogram, histogramRow{Quality: bin.Quality, Count: bin.Count})
	}

	recorder.ObserveStage(stageCatalogMatch, time.Since(started))
	writeMetrics(recorder, cfg, logger)

	logger.Info("catalog match complete",
		logging.Int(logging.FieldRecords, report.Registrations),
		logging.Int("candidates", report.Candidates),
		logging.Int("reviewed", report.Reviewed),
		logging.String(logging.FieldPath, report.Output),
	)
	return report, nil
}

func loadCatalogIndex(ctx context.Context, opts catalogMatchOptions, n *textutil.Normalizer, policy catalog.Policy, logger *slog.Logger) (*catalog.Index, catalog.LoadStats, error) {
	f, err := os.Open(opts.input)
	if err != nil {
		return nil, catalog.LoadStats{}, faults.Wrap(faults.ErrIO, stageCatalogMatch, "open", opts.input, err)
	}
	defer f.Close()

	index := catalog.NewIndex(n)
	stats, err := catalog.Load(ctx, opts.format, f, policy, func(rec catalog.Record) error {
		index.Add(rec)
		return nil
	})
	if err != nil {
		return nil, catalog.LoadStats{}, err
	}
	logger.Info("catalog loaded",
		logging.Int("records", index.Len()),
		logging.Int("title_keys", index.Keys()),
		logging.Int("skipped", stats.Skipped),
		logging.Int("rejected", stats.Rejected),
	)
	return index, stats, nil
}

func writeReview(path string, candidates []catalog.Candidate, logger *slog.Logger) (string, error) {
	name := strings.TrimSuffix(filepath.Base(path), ".ndjson")
	sink, err := stream.NewDirSink(filepath.Dir(path), logger)
	if err != nil {
		return "", err
	}
	defer sink.Close()
	for _, c := range candidates {
		if err := sink.Write(name, c); err != nil {
			return "", err
		}
	}
	if len(candidates) == 0 {
		if err := os.WriteFile(sink.Path(name), nil, 0o644); err != nil {
			return "", faults.Wrap(faults.ErrIO, stageCatalogMatch, "write review", sink.Path(name), err)
		}
	}
	if err := sink.Close(); err != nil {
		return "", err
	}
	return sink.Path(name), nil
}

func newNormalizer(cfg *config.Config) (*textutil.Normalizer, error) {
	gaz, err := gazetteer.Load(cfg.Paths.ReferenceFile)
	if err != nil {
		return nil, err
	}
	return textutil.NewNormalizer(gaz.GenericTitles), nil
}

func recordLoadStats(recorder *metrics.Recorder, stats catalog.LoadStats) {
	recorder.AddCatalogRecords("accepted", stats.Accepted)
	recorder.AddCatalogRecords("skipped", stats.Skipped)
	recorder.AddCatalogRecords("rejected", stats.Rejected)
}

func writeMetrics(recorder *metrics.Recorder, cfg *config.Config, logger *slog.Logger) {
	if err := recorder.WriteTextfile(cfg.Paths.MetricsFile); err != nil {
		logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write",
			logging.Error(err),
		)
	}
}
