package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tagmedic/internal/config"
	"tagmedic/internal/engine"
	"tagmedic/internal/flags"
	"tagmedic/internal/logging"
)

var cfg = config.New()

var configFile string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit crawled rows against lookup rule tables",
	Long: `Audit crawled rows against lookup rule tables and report a verdict per field.

Inputs:
	Rows come from JSON files written by "tagmedic crawl" (or any collaborator
	producing the same shape): --datalayer-rows for canonical data-layer fields
	and --tag-rows for parameters extracted from outbound tag requests. Rule
	tables and cross-platform mapping sheets live in one xlsx workbook
	(--workbook). Cross-platform matching runs only when both row files are
	given; their row order must align.

Verdicts:
	Every evaluated (row, rule) pair yields exactly one of:
	Pass, Fail, Incorrect Value, Invalid URL, Missing Value.
	Rules with a false validity flag and field keys absent from a row are
	skipped, not failed. Pages off the audited host yield Invalid URL for
	every rule on that row.

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --report: write an xlsx report workbook (one sheet per audit category)
	- --no-console: suppress the console sink (use with --emit/--out/--report)

Exit codes:
	0 = clean run, no wrongs
	1 = wrongs detected
	2 = partial failure (some rows could not be evaluated normally)
	3 = fatal error (audit did not run)

Examples:
  tagmedic audit --site-host www.example.com \
    --datalayer-rows rows.json --tag-rows tag_rows.json \
    --workbook lookups.xlsx --report audit.xlsx

  # Machine-readable events on stdout
  tagmedic audit --config audit.yaml --no-console --emit ndjson
`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && cmd.Flags().NFlag() == 0 {
			_ = cmd.Help()
			return
		}

		if err := loadConfigFileIfAny(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		log, err := logging.New(cfg.Runtime.Verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
			os.Exit(3)
		}
		defer log.Sync()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Runtime.Timeout)
		defer cancel()

		eng := engine.NewEngine(log)
		os.Exit(eng.Run(ctx, cfg))
	},
}

// loadConfigFileIfAny merges --config before flag values are re-applied, so
// explicitly set flags win over the file.
func loadConfigFileIfAny(cmd *cobra.Command) error {
	if configFile == "" {
		return nil
	}
	fileCfg := config.New()
	if err := fileCfg.LoadFile(configFile); err != nil {
		return err
	}
	mergeUnsetFromFile(cmd, fileCfg)
	return nil
}

func mergeUnsetFromFile(cmd *cobra.Command, fileCfg *config.Config) {
	f := cmd.Flags()
	if !f.Changed(flags.FlagSiteHost) && fileCfg.Site.Host != "" {
		cfg.Site.Host = fileCfg.Site.Host
	}
	if !f.Changed(flags.FlagDataLayerRows) && fileCfg.Inputs.DataLayerRows != "" {
		cfg.Inputs.DataLayerRows = fileCfg.Inputs.DataLayerRows
	}
	if !f.Changed(flags.FlagTagRows) && fileCfg.Inputs.TagRows != "" {
		cfg.Inputs.TagRows = fileCfg.Inputs.TagRows
	}
	if !f.Changed(flags.FlagWorkbook) && fileCfg.Inputs.Workbook != "" {
		cfg.Inputs.Workbook = fileCfg.Inputs.Workbook
	}
	if !f.Changed(flags.FlagDataLayerSheet) {
		cfg.Inputs.DataLayerSheet = fileCfg.Inputs.DataLayerSheet
	}
	if !f.Changed(flags.FlagTagSheet) {
		cfg.Inputs.TagSheet = fileCfg.Inputs.TagSheet
	}
	if !f.Changed(flags.FlagFacebookSheet) {
		cfg.Inputs.FacebookSheet = fileCfg.Inputs.FacebookSheet
	}
	if !f.Changed(flags.FlagGoogleSheet) {
		cfg.Inputs.GoogleSheet = fileCfg.Inputs.GoogleSheet
	}
	if !f.Changed(flags.FlagConcurrency) {
		cfg.Runtime.Concurrency = fileCfg.Runtime.Concurrency
	}
	if !f.Changed(flags.FlagTimeout) {
		cfg.Runtime.Timeout = fileCfg.Runtime.Timeout
	}
	cfg.Crawl = fileCfg.Crawl
	if !f.Changed(flags.FlagConsoleFormat) && fileCfg.Output.ConsoleFormat != "" {
		cfg.Output.ConsoleFormat = fileCfg.Output.ConsoleFormat
	}
	if !f.Changed(flags.FlagReport) && fileCfg.Output.Report != "" {
		cfg.Output.Report = fileCfg.Output.Report
	}
	if !f.Changed(flags.FlagOut) && fileCfg.Output.Out != "" {
		cfg.Output.Out = fileCfg.Output.Out
	}
	if !f.Changed(flags.FlagOutFormat) && fileCfg.Output.OutFormat != "" {
		cfg.Output.OutFormat = fileCfg.Output.OutFormat
	}
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVar(&configFile, flags.FlagConfig, "", "YAML config file (flags override file values)")
	auditCmd.Flags().StringVar(&cfg.Site.Host, flags.FlagSiteHost, "", "Canonical host of the audited site (pages elsewhere yield Invalid URL)")

	// Inputs
	auditCmd.Flags().StringVar(&cfg.Inputs.DataLayerRows, flags.FlagDataLayerRows, "", "JSON rows file with canonical data-layer fields")
	auditCmd.Flags().StringVar(&cfg.Inputs.TagRows, flags.FlagTagRows, "", "JSON rows file with fields extracted from outbound tag requests")
	auditCmd.Flags().StringVar(&cfg.Inputs.Workbook, flags.FlagWorkbook, "", "xlsx lookup workbook with rule tables and mapping sheets")
	auditCmd.Flags().StringVar(&cfg.Inputs.DataLayerSheet, flags.FlagDataLayerSheet, cfg.Inputs.DataLayerSheet, "Workbook sheet holding data-layer rules")
	auditCmd.Flags().StringVar(&cfg.Inputs.TagSheet, flags.FlagTagSheet, cfg.Inputs.TagSheet, "Workbook sheet holding tag rules")
	auditCmd.Flags().StringVar(&cfg.Inputs.FacebookSheet, flags.FlagFacebookSheet, cfg.Inputs.FacebookSheet, "Workbook sheet holding Facebook parameter mappings")
	auditCmd.Flags().StringVar(&cfg.Inputs.GoogleSheet, flags.FlagGoogleSheet, cfg.Inputs.GoogleSheet, "Workbook sheet holding Google parameter mappings")

	// Output
	auditCmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	auditCmd.Flags().StringSliceVar(&cfg.Output.ConsoleFilterStatus, flags.FlagConsoleFilterStatus, nil, "Filter console output by verdict status (Pass, Fail, Incorrect Value, Invalid URL, Missing Value). Comma-separated.")
	auditCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write an xlsx report workbook to this path")
	auditCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	auditCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	auditCmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	auditCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")

	// Runtime
	auditCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Concurrent row evaluation workers")
	auditCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global audit timeout")
}
