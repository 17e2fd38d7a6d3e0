package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"crclear/internal/disposition"
	"crclear/internal/preflight"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var opts classifyOptions
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Sort registrations into disposition buckets",
		Long: "Classify reads registration and renewal NDJSON files, decides for every\n" +
			"registration whether it is foreign, out of range, or renewed, and writes\n" +
			"one NDJSON file per bucket to the output directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.stageLogger(stageClassify)
			if err != nil {
				return err
			}
			if strings.TrimSpace(opts.outDir) == "" {
				opts.outDir = cfg.Paths.OutputDir
			}
			err = runPreflight(cfg, preflight.Plan{
				Inputs: map[string][]string{
					"Registrations":    opts.registrations,
					"Renewals":         opts.renewals,
					"Cross-references": opts.xrefs,
				},
				OutputDir: opts.outDir,
			})
			if err != nil {
				return err
			}
			report, err := runClassify(cmd.Context(), cfg, opts, logger)
			if err != nil {
				return err
			}
			return printReport(cmd, jsonOutput, report, report.summary)
		},
	}

	cmd.Flags().StringSliceVar(&opts.registrations, "registrations", nil, "Registration NDJSON files (repeatable)")
	cmd.Flags().StringSliceVar(&opts.renewals, "renewals", nil, "Renewal NDJSON files (repeatable)")
	cmd.Flags().StringSliceVar(&opts.xrefs, "xrefs", nil, "cross-references.ndjson files from earlier runs")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "Output directory (default paths.output_dir)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the summary as JSON")
	_ = cmd.MarkFlagRequired("registrations")
	return cmd
}

func (r classifyReport) summary() summary {
	s := summary{
		title:   "Dispositions",
		headers: []string{"Bucket", "Count", "Share", "Of"},
		numeric: []int{1, 2},
	}
	for _, row := range r.Buckets {
		s.rows = append(s.rows, []string{row.Bucket, strconv.Itoa(row.Count), fmt.Sprintf("%.1f%%", row.Percent), row.Of})
	}
	s.note("Registrations: %d (%d malformed)", r.Registrations, r.Malformed)
	s.note("Renewals: %d matched, %d unmatched", r.RenewalsMatched, r.RenewalsUnmatched)
	s.note("Foreign cross-references: %d", r.CrossReferences)
	s.note("Output: %s", r.Output)
	return s
}

func tallyRows(t *disposition.Tally) []bucketRow {
	rows := make([]bucketRow, 0, len(disposition.Buckets()))
	for _, row := range t.Rows() {
		rows = append(rows, bucketRow{
			Bucket:  row.Bucket.String(),
			Count:   row.Count,
			Percent: row.Percent,
			Of:      row.Of,
		})
	}
	return rows
}
