package main

import (
	"context"
	"log/slog"
	"time"

	"crclear/internal/config"
	"crclear/internal/disposition"
	"crclear/internal/foreign"
	"crclear/internal/gazetteer"
	"crclear/internal/logging"
	"crclear/internal/metrics"
	"crclear/internal/record"
	"crclear/internal/renewal"
	"crclear/internal/stream"
)

const (
	stageClassify     = "classify"
	stageCatalogIndex = "catalog-index"
	stageCatalogMatch = "catalog-match"

	streamCrossReferences   = "cross-references"
	streamRenewalsMatched   = "renewals-matched"
	streamRenewalsUnmatched = "renewals-unmatched"
)

type classifyOptions struct {
	registrations []string
	renewals      []string
	xrefs         []string
	outDir        string
}

type bucketRow struct {
	Bucket  string  `json:"bucket"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Of      string  `json:"of"`
}

type classifyReport struct {
	Output            string      `json:"output"`
	Registrations     int         `json:"registrations"`
	Malformed         int         `json:"malformed"`
	RenewalsMatched   int         `json:"renewals_matched"`
	RenewalsUnmatched int         `json:"renewals_unmatched"`
	CrossReferences   int         `json:"cross_references"`
	Buckets           []bucketRow `json:"buckets"`
}

// runClassify drives one disposition run: it seeds the foreign index, loads
// every renewal, streams the registrations through the pipeline, and writes
// the buckets plus the renewal partition to opts.outDir.
func runClassify(ctx context.Context, cfg *config.Config, opts classifyOptions, logger *slog.Logger) (classifyReport, error) {
	started := time.Now()
	recorder := metrics.New()

	gaz, err := gazetteer.Load(cfg.Paths.ReferenceFile)
	if err != nil {
		return classifyReport{}, err
	}

	index, err := loadCrossReferences(ctx, opts.xrefs, logger)
	if err != nil {
		return classifyReport{}, err
	}
	renewals, err := loadRenewals(ctx, opts.renewals, logger)
	if err != nil {
		return classifyReport{}, err
	}
	logger.Info("reference data loaded",
		logging.Int("renewals", len(renewals)),
		logging.Int("seeded_xrefs", index.Len()),
	)

	classifier := foreign.New(gaz, index, foreign.Options{InterimIsForeign: cfg.Classification.InterimIsForeign}, logger)
	matcher := renewal.NewMatcher(renewal.NewIndex(renewals), renewal.Policy{
		WordOverlapQuotient: cfg.Classification.WordOverlapQuotient,
	}, logger)
	pipeline := disposition.NewPipeline(classifier, matcher, disposition.Policy{
		CutoffYear:     cfg.Classification.CutoffYear,
		UpperYearBound: cfg.Classification.UpperYearBound,
		BookPrefixes:   cfg.Classification.BookPrefixes,
	}, logger, disposition.WithObserver(recorder))

	sink, err := stream.NewDirSink(opts.outDir, logger)
	if err != nil {
		return classifyReport{}, err
	}
	defer sink.Close()

	report := classifyReport{Output: sink.Dir()}
	emit := func(bucket disposition.Bucket, reg *record.Registration) error {
		if err := sink.Write(bucket.String(), reg); err != nil {
			return err
		}
		if reg.Disposition != disposition.DispositionForeign {
			return nil
		}
		for _, xref := range reg.Xrefs {
			if err := sink.Write(streamCrossReferences, xref); err != nil {
				return err
			}
			report.CrossReferences++
		}
		return nil
	}

	progress := logging.NewProgressCounter(logger, "classifying registrations", cfg.Logging.ProgressInterval)
	err = stream.DecodeFiles(ctx, opts.registrations, func(path string, line int, reg *record.Registration, raw []byte, err error) error {
		progress.Tick()
		if err != nil {
			report.Malformed++
			recorder.ObserveMalformed()
			logging.WarnWithContext(logger, "malformed registration", "malformed_record",
				logging.String(logging.FieldPath, path),
				logging.Int(logging.FieldLine, line),
				logging.Error(err),
				logging.String(logging.FieldImpact, "line written to the error bucket"),
			)
			return pipeline.Reject(string(raw), err, emit)
		}
		reg.EnsureUUIDs()
		return pipeline.Process(reg, emit)
	})
	progress.Done()
	if err != nil {
		return classifyReport{}, err
	}

	matched, unmatched := matcher.Partition()
	for _, r := range matched {
		if err := sink.Write(streamRenewalsMatched, r); err != nil {
			return classifyReport{}, err
		}
	}
	for _, r := range unmatched {
		if err := sink.Write(streamRenewalsUnmatched, r); err != nil {
			return classifyReport{}, err
		}
	}
	report.RenewalsMatched = len(matched)
	report.RenewalsUnmatched = len(unmatched)
	recorder.SetRenewals(len(matched), len(unmatched))

	if err := sink.Close(); err != nil {
		return classifyReport{}, err
	}
	report.Registrations = pipeline.Tally().Total()
	report.Buckets = tallyRows(pipeline.Tally())

	recorder.ObserveStage(stageClassify, time.Since(started))
	writeMetrics(recorder, cfg, logger)

	logger.Info("classification complete",
		logging.Int(logging.FieldRecords, report.Registrations),
		logging.Int("renewals_matched", report.RenewalsMatched),
		logging.String(logging.FieldPath, report.Output),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return report, nil
}

func loadCrossReferences(ctx context.Context, paths []string, logger *slog.Logger) (*foreign.Index, error) {
	index := foreign.NewIndex()
	err := stream.DecodeFiles(ctx, paths, func(path string, line int, xref *record.CrossReference, _ []byte, err error) error {
		if err != nil {
			logging.WarnWithContext(logger, "skipping malformed cross-reference", "malformed_record",
				logging.String(logging.FieldPath, path),
				logging.Int(logging.FieldLine, line),
				logging.Error(err),
				logging.String(logging.FieldImpact, "registration it names is not pre-marked foreign"),
			)
			return nil
		}
		index.Add(*xref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

func loadRenewals(ctx context.Context, paths []string, logger *slog.Logger) ([]*record.Renewal, error) {
	var renewals []*record.Renewal
	err := stream.DecodeFiles(ctx, paths, func(path string, line int, r *record.Renewal, _ []byte, err error) error {
		if err != nil {
			logging.WarnWithContext(logger, "skipping malformed renewal", "malformed_record",
				logging.String(logging.FieldPath, path),
				logging.Int(logging.FieldLine, line),
				logging.Error(err),
				logging.String(logging.FieldImpact, "renewal cannot be matched"),
			)
			return nil
		}
		renewals = append(renewals, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renewals, nil
}
