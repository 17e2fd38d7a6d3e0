package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"crclear/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(flagValue(ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return printReport(cmd, jsonOutput, cfg, func() summary {
				return summary{title: "Configuration", headers: []string{"Key", "Value"}, rows: configRows(cfg)}
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func configRows(cfg *config.Config) [][]string {
	rows := [][]string{
		{"paths.output_dir", cfg.Paths.OutputDir},
		{"paths.log_dir", cfg.Paths.LogDir},
		{"paths.catalog_db", cfg.Paths.CatalogDB},
		{"paths.metrics_file", cfg.Paths.MetricsFile},
		{"paths.reference_file", cfg.Paths.ReferenceFile},
		{"classification.cutoff_year", strconv.Itoa(cfg.Classification.CutoffYear)},
		{"classification.upper_year_bound", strconv.Itoa(cfg.Classification.UpperYearBound)},
		{"classification.word_overlap_quotient", formatFloat(cfg.Classification.WordOverlapQuotient)},
		{"classification.interim_is_foreign", yesNo(cfg.Classification.InterimIsForeign)},
		{"classification.book_prefixes", strings.Join(cfg.Classification.BookPrefixes, ", ")},
		{"catalog.match_count_dilution_threshold", strconv.Itoa(cfg.Catalog.MatchCountDilutionThreshold)},
		{"catalog.quality_cutoff", formatFloat(cfg.Catalog.QualityCutoff)},
		{"catalog.review_cutoff", formatFloat(cfg.Catalog.ReviewCutoff)},
		{"catalog.year_slack", strconv.Itoa(cfg.Catalog.YearSlack)},
		{"catalog.author_penalty_cap", formatFloat(cfg.Catalog.AuthorPenaltyCap)},
		{"catalog.date_exponent", formatFloat(cfg.Catalog.DateExponent)},
		{"logging.format", cfg.Logging.Format},
		{"logging.level", cfg.Logging.Level},
		{"logging.progress_interval", strconv.Itoa(cfg.Logging.ProgressInterval)},
	}
	stages := make([]string, 0, len(cfg.Logging.StageOverrides))
	for stage := range cfg.Logging.StageOverrides {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	for _, stage := range stages {
		rows = append(rows, []string{"logging.stage_overrides." + stage, cfg.Logging.StageOverrides[stage]})
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
