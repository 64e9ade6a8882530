package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/service"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
	"github.com/Kei198403/sbi-pdf2text/pkg/config"
	"github.com/Kei198403/sbi-pdf2text/pkg/cron"
	"github.com/Kei198403/sbi-pdf2text/pkg/pdftext"
)

// app carries state shared by the subcommands.
type app struct {
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}

	logger, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

func newLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

type extractFlags struct {
	input    string
	output   string
	encoding string
	saveText bool
	xlsx     bool
	tables   bool
	postgres bool
}

func (f *extractFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "input directory (SBI_INPUT_DIR)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory (SBI_OUTPUT_DIR)")
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "CSV encoding, cp932 or utf-8 (SBI_OUTPUT_ENCODING)")
	cmd.Flags().BoolVar(&f.saveText, "save-text", false, "save raw text of every document (SBI_SAVE_TEXT)")
	cmd.Flags().BoolVar(&f.xlsx, "xlsx", false, "also write an XLSX workbook (SBI_XLSX)")
	cmd.Flags().BoolVar(&f.tables, "tables", false, "read table CSV exports instead of PDF text (SBI_TABLES)")
	cmd.Flags().BoolVar(&f.postgres, "postgres", false, "store records in PostgreSQL (POSTGRES_ENABLED)")
}

// apply copies explicitly set flags over the loaded configuration.
func (f *extractFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.Extract.InputDir = f.input
	}
	if changed("output") {
		cfg.Extract.OutputDir = f.output
	}
	if changed("encoding") {
		cfg.Extract.Encoding = f.encoding
	}
	if changed("save-text") {
		cfg.Extract.SaveText = f.saveText
	}
	if changed("xlsx") {
		cfg.Extract.XLSX = f.xlsx
	}
	if changed("tables") {
		cfg.Extract.Tables = f.tables
	}
	if changed("postgres") {
		cfg.Database.Enabled = f.postgres
	}
	return cfg.Validate()
}

func (a *app) extractCmd() *cobra.Command {
	var flags extractFlags

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract every notice under the input directory",
		Long: `Extract every PDF under the input directory and write
japanese_stock_dividend.csv and global_stock_dividend.csv.

Example:
  sbidiv extract --input ./input --output ./output
  sbidiv extract --encoding utf-8 --xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, a.cfg); err != nil {
				return err
			}

			deps, err := InitDependencies(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer deps.Close()

			summary, paths, err := deps.RunBatch(cmd.Context())
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), summary, paths)
			if n := len(summary.Failures); n > 0 {
				return fmt.Errorf("%d of %d documents failed", n, summary.Documents)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func printSummary(w io.Writer, s *service.Summary, paths []string) {
	fmt.Fprintf(w, "Documents: %d\n", s.Documents)
	for _, f := range []sniffer.Format{sniffer.JapaneseDividend, sniffer.ForeignDividendV1, sniffer.ForeignDividendV2} {
		if n := s.Records[f]; n > 0 {
			fmt.Fprintf(w, "  %-20s %d records\n", f, n)
		}
	}
	fmt.Fprintf(w, "Net receipts (JPY):       %s\n", s.NetJPY.Display())
	fmt.Fprintf(w, "Foreign dividends (JPY):  %s\n", s.ForeignDividendJPY.Display())
	if s.Mismatches > 0 {
		fmt.Fprintf(w, "Amount mismatches: %d (see log)\n", s.Mismatches)
	}
	if len(s.Failures) > 0 {
		fmt.Fprintf(w, "Failed:\n")
		for _, f := range s.Failures {
			fmt.Fprintf(w, "  %s [%s]\n", f.Source, f.Code)
		}
	}
	for _, p := range paths {
		fmt.Fprintf(w, "Wrote %s\n", p)
	}
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify FILE...",
		Short: "Print the detected notice format of each file",
		Long: `Print the detected notice format of each PDF or saved .txt file.

Example:
  sbidiv classify input/2023/*.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := pdftext.NewPDFRenderer(a.logger)
			w := cmd.OutOrStdout()

			for _, path := range args {
				var text string
				var err error
				if filepath.Ext(path) == ".txt" {
					var b []byte
					b, err = os.ReadFile(path)
					text = string(b)
				} else {
					text, err = renderer.Render(cmd.Context(), path)
				}
				if err != nil {
					fmt.Fprintf(w, "%s\terror: %v\n", path, err)
					continue
				}

				format, err := sniffer.Classify(parser.NewDocument(path, text).Lines)
				if err != nil {
					fmt.Fprintf(w, "%s\t%s\n", path, sniffer.Unknown)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\n", path, format)
			}
			return nil
		},
	}
}

func (a *app) scheduleCmd() *cobra.Command {
	var (
		flags   extractFlags
		spec    string
		timeout time.Duration
		runNow  bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the extraction batch on a cron schedule",
		Long: `Run the extraction batch on a cron schedule and serve Prometheus
metrics on METRICS_PORT until interrupted.

Example:
  sbidiv schedule --spec "0 3 * * *"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, a.cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("spec") {
				a.cfg.Schedule.Spec = spec
			}

			ctx := cmd.Context()
			deps, err := InitDependencies(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer deps.Close()

			if a.cfg.Observability.MetricsEnabled {
				go func() {
					if err := deps.Metrics.Serve(ctx, a.cfg.Observability.MetricsPort, a.logger); err != nil {
						a.logger.Error("metrics server stopped", slog.Any("error", err))
					}
				}()
			}

			sched := cron.NewScheduler(a.cfg.Schedule.Spec, timeout, func(ctx context.Context) error {
				_, _, err := deps.RunBatch(ctx)
				return err
			}, a.logger)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("invalid schedule %q: %w", a.cfg.Schedule.Spec, err)
			}
			a.logger.Info("next batch scheduled", slog.Time("at", sched.Next()))
			if runNow {
				sched.RunNow()
			}

			<-ctx.Done()
			<-sched.Stop().Done()
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&spec, "spec", "", "cron spec, 5 fields (SBI_SCHEDULE)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "maximum duration of one batch")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "run one batch immediately")
	return cmd
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Database.Enabled = true
			deps, err := InitDependencies(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			deps.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
