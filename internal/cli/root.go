package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tagmedic",
	Short: "Audit marketing-tracking tags against lookup rule tables",
	Long: `TagMedic audits marketing-tracking tag compliance: it checks values extracted
from page data layers and outbound tag requests against lookup rule tables and
reports a classified verdict per field.

TagMedic is audit-only: it finds non-compliant tags, does not fix them.

Examples:
	# Show available commands and global flags
	tagmedic --help

	# Run an audit from crawled rows and a lookup workbook
	tagmedic audit --site-host www.example.com --datalayer-rows rows.json --workbook lookups.xlsx

	# Crawl pages into a rows file
	tagmedic crawl --config crawl.yaml

	# List audit strategies
	tagmedic rules list

	# Print build info
	tagmedic version

Output:
	By default, commands write human-readable output to stdout.
	Structured output is available via emitter flags (see each command's --help).`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (debug-level diagnostics on stderr)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
