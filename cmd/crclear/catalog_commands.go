package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"crclear/internal/catalog"
	"crclear/internal/preflight"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Match registrations against an external library catalog",
	}
	catalogCmd.AddCommand(newCatalogIndexCommand(ctx))
	catalogCmd.AddCommand(newCatalogMatchCommand(ctx))
	return catalogCmd
}

func newCatalogIndexCommand(ctx *commandContext) *cobra.Command {
	var opts catalogIndexOptions
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the on-disk title-key index from a catalog dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.stageLogger(stageCatalogIndex)
			if err != nil {
				return err
			}
			if strings.TrimSpace(opts.dbPath) == "" {
				opts.dbPath = cfg.Paths.CatalogDB
			}
			err = runPreflight(cfg, preflight.Plan{
				Inputs: map[string][]string{"Catalog dump": {opts.input}},
				Files:  map[string]string{"Catalog database": opts.dbPath},
			})
			if err != nil {
				return err
			}
			report, err := runCatalogIndex(cmd.Context(), cfg, opts, logger)
			if err != nil {
				return err
			}
			return printReport(cmd, jsonOutput, report, report.summary)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Catalog dump to index")
	cmd.Flags().StringVarP(&opts.format, "format", "f", catalog.FormatHathi, "Input format (hathi or ndjson)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Index database (default paths.catalog_db)")
	cmd.Flags().BoolVar(&opts.appendOnly, "append", false, "Keep existing entries instead of rebuilding")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the summary as JSON")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newCatalogMatchCommand(ctx *commandContext) *cobra.Command {
	var opts catalogMatchOptions
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Score registrations against catalog records for manual review",
		Long: "Match draws catalog candidates for each registration from either a catalog\n" +
			"dump (--input) or a database built by `crclear catalog index` (--db), and\n" +
			"writes the candidates at or above the review cutoff, best first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.stageLogger(stageCatalogMatch)
			if err != nil {
				return err
			}
			if opts.input != "" && cmd.Flags().Changed("db") {
				return fmt.Errorf("--input and --db are mutually exclusive")
			}
			if opts.input == "" && strings.TrimSpace(opts.dbPath) == "" {
				opts.dbPath = cfg.Paths.CatalogDB
			}
			if !cmd.Flags().Changed("cutoff") {
				opts.cutoff = cfg.Catalog.ReviewCutoff
			}
			if strings.TrimSpace(opts.outPath) == "" {
				opts.outPath = filepath.Join(cfg.Paths.OutputDir, reviewFileName)
			}
			plan := preflight.Plan{
				Inputs: map[string][]string{"Registrations": opts.registrations},
				Files:  map[string]string{"Review file": opts.outPath},
			}
			if opts.input != "" {
				plan.Inputs["Catalog dump"] = []string{opts.input}
			} else {
				plan.Inputs["Catalog database"] = []string{opts.dbPath}
			}
			if err := runPreflight(cfg, plan); err != nil {
				return err
			}
			report, err := runCatalogMatch(cmd.Context(), cfg, opts, logger)
			if err != nil {
				return err
			}
			return printReport(cmd, jsonOutput, report, report.summary)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Catalog dump to match against")
	cmd.Flags().StringVarP(&opts.format, "format", "f", catalog.FormatHathi, "Input format (hathi or ndjson)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Index database (default paths.catalog_db)")
	cmd.Flags().StringSliceVar(&opts.registrations, "registrations", nil, "Registration NDJSON files (repeatable)")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Review file (default <paths.output_dir>/review.ndjson)")
	cmd.Flags().Float64Var(&opts.cutoff, "cutoff", 0, "Lowest quality written to the review file (default catalog.review_cutoff)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the summary as JSON")
	_ = cmd.MarkFlagRequired("registrations")
	return cmd
}

func (r catalogIndexReport) summary() summary {
	s := summary{
		title:   "Catalog index",
		headers: []string{"Metric", "Value"},
		numeric: []int{1},
		rows: [][]string{
			{"Lines read", strconv.Itoa(r.Lines)},
			{"Accepted", strconv.Itoa(r.Accepted)},
			{"Skipped by filter", strconv.Itoa(r.Skipped)},
			{"Rejected", strconv.Itoa(r.Rejected)},
			{"Without title key", strconv.Itoa(r.Unkeyed)},
			{"Stored entries", strconv.Itoa(r.Entries)},
			{"Distinct title keys", strconv.Itoa(r.Keys)},
		},
	}
	s.note("Database: %s", r.Database)
	return s
}

func (r catalogMatchReport) summary() summary {
	s := summary{
		title:   "Candidate quality",
		headers: []string{"Quality", "Candidates"},
		numeric: []int{0, 1},
	}
	for _, bin := range r.Histogram {
		s.rows = append(s.rows, []string{strconv.FormatFloat(bin.Quality, 'f', 2, 64), strconv.Itoa(bin.Count)})
	}
	s.note("Registrations: %d (%d with candidates)", r.Registrations, r.Matched)
	s.note("Candidates: %d, %d at or above %.2f", r.Candidates, r.Reviewed, r.Cutoff)
	s.note("Review file: %s", r.Output)
	return s
}
