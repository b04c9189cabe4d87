package flags

// Package flags defines canonical CLI flag names shared across the CLI.
// Keeping these as constants helps avoid drift between Cobra flag wiring and
// other code paths that need to reference flags.
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Shared
	FlagConfig   = "config"
	FlagSiteHost = "site-host"

	// Inputs
	FlagDataLayerRows  = "datalayer-rows"
	FlagTagRows        = "tag-rows"
	FlagWorkbook       = "workbook"
	FlagDataLayerSheet = "datalayer-sheet"
	FlagTagSheet       = "tag-sheet"
	FlagFacebookSheet  = "facebook-sheet"
	FlagGoogleSheet    = "google-sheet"

	// Output
	FlagConsoleFormat       = "console-format"
	FlagConsoleFilterStatus = "console-filter-status"
	FlagReport              = "report"
	FlagOut                 = "out"
	FlagOutFormat           = "out-format"
	FlagEmit                = "emit"
	FlagNoConsole           = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"

	// Crawl
	FlagRowsOut = "rows-out"
)
