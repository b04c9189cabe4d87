package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tagmedic/internal/config"
	"tagmedic/internal/crawl"
	"tagmedic/internal/flags"
	"tagmedic/internal/logging"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl configured pages and journeys into a rows file",
	Long: `Crawl the configured pages and journeys with a headless browser and write
the extracted rows to a JSON file "tagmedic audit" can consume.

Per page the crawler captures:
	- the resolved URL after navigation
	- a data-layer snapshot (crawl.datalayer_expr, default "() => window.dataLayer")
	- every outbound network request URL

Journeys are typed step sequences (goto, click-role, wait) defined in the
config file; each step yields one row. Navigation failures are retried on a
fixed budget (crawl.retry_attempts) before the page is skipped.

Examples:
  tagmedic crawl --config crawl.yaml
  tagmedic crawl --config crawl.yaml --rows-out rows.json
`,
	Run: func(cmd *cobra.Command, args []string) {
		if configFile == "" {
			fmt.Fprintln(os.Stderr, "Error: crawl requires --config")
			os.Exit(3)
		}
		if err := cfg.LoadFile(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}
		if rowsOut := cmd.Flags().Lookup(flags.FlagRowsOut); rowsOut != nil && rowsOut.Changed {
			cfg.Crawl.RowsOut = rowsOut.Value.String()
		}
		if err := cfg.ValidateCrawl(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		log, err := logging.New(cfg.Runtime.Verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
			os.Exit(3)
		}
		defer log.Sync()

		ctx, cancel := context.WithTimeout(context.Background(), crawlBudget(cfg))
		defer cancel()

		nav, err := crawl.NewRodNavigator(ctx, cfg.Crawl.NavigationTimeout, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start browser: %v\n", err)
			os.Exit(3)
		}
		defer nav.Close()

		collector := &crawl.Collector{Nav: nav, Cfg: cfg.Crawl, Log: log}
		rows, err := collector.Collect(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: crawl failed: %v\n", err)
			os.Exit(3)
		}
		if err := crawl.WriteRows(cfg.Crawl.RowsOut, rows); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d rows to %s\n", len(rows), cfg.Crawl.RowsOut)
	},
}

// crawlBudget sizes the run timeout from the per-navigation timeout and the
// retry budget, with headroom for snapshots.
func crawlBudget(cfg *config.Config) time.Duration {
	steps := len(cfg.Crawl.Pages)
	for _, j := range cfg.Crawl.Journeys {
		steps += len(j.Steps)
	}
	if steps < 1 {
		steps = 1
	}
	return time.Duration(steps*cfg.Crawl.RetryAttempts)*cfg.Crawl.NavigationTimeout + time.Minute
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	crawlCmd.Flags().StringVar(&configFile, flags.FlagConfig, "", "YAML config file defining pages and journeys (required)")
	crawlCmd.Flags().String(flags.FlagRowsOut, "", "Where to write collected rows (overrides crawl.rows_out)")
}
