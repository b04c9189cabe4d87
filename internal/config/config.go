package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect audit
	// behavior, keep the CLI flag wiring in internal/cli/audit.go in sync.
	Site    Site    `yaml:"site"`
	Inputs  Inputs  `yaml:"inputs"`
	Crawl   Crawl   `yaml:"crawl"`
	Output  Output  `yaml:"output"`
	Runtime Runtime `yaml:"runtime"`
}

type Site struct {
	// Host is the audited site's canonical host (see --site-host).
	// Pages on any other host yield Invalid URL for every rule.
	Host string `yaml:"host"`
}

type Inputs struct {
	// DataLayerRows is the JSON file of crawled rows whose fields hold the
	// canonical data-layer values (see --datalayer-rows).
	DataLayerRows string `yaml:"datalayer_rows"`

	// TagRows is the JSON file of crawled rows whose fields hold parameters
	// extracted from outbound tag/pixel requests (see --tag-rows).
	// Row order must align with DataLayerRows for cross-platform matching.
	TagRows string `yaml:"tag_rows"`

	// Workbook is the xlsx lookup workbook holding rule tables and
	// cross-platform mapping sheets (see --workbook).
	Workbook string `yaml:"workbook"`

	// Sheet names inside the workbook.
	DataLayerSheet string `yaml:"datalayer_sheet"`
	TagSheet       string `yaml:"tag_sheet"`
	FacebookSheet  string `yaml:"facebook_sheet"`
	GoogleSheet    string `yaml:"google_sheet"`
}

type Crawl struct {
	// Pages lists list-entry URLs to visit (crawl command).
	Pages []string `yaml:"pages"`

	// Journeys are named navigation sequences executed step by step.
	Journeys []Journey `yaml:"journeys"`

	// DataLayerExpr is the JS expression evaluated on each page to snapshot
	// the canonical data layer.
	DataLayerExpr string `yaml:"datalayer_expr"`

	// RetryAttempts bounds navigation retries per page. Must be >= 1.
	RetryAttempts int `yaml:"retry_attempts"`

	// NavigationTimeout applies to each page navigation attempt.
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`

	// RowsOut is where the crawl command writes collected rows (see --rows-out).
	RowsOut string `yaml:"rows_out"`
}

type Journey struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one typed navigation action. The action set is closed; step text is
// never executed as code.
type Step struct {
	// Action is one of: goto, click-role, wait.
	Action string `yaml:"action"`
	// URL is the goto target.
	URL string `yaml:"url,omitempty"`
	// Role and Name identify the element for click-role.
	Role string `yaml:"role,omitempty"`
	Name string `yaml:"name,omitempty"`
	// Duration is the wait length.
	Duration time.Duration `yaml:"duration,omitempty"`
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string `yaml:"console_format"`

	// ConsoleFilterStatus filters console output by verdict status (see --console-filter-status).
	ConsoleFilterStatus []string `yaml:"console_filter_status"`

	// Report writes an xlsx report workbook to this path (see --report).
	Report string `yaml:"report"`

	// Out writes structured output to this path (see --out).
	Out string `yaml:"out"`

	// OutFormat selects the format for --out (json or ndjson); inferred from
	// the extension when empty.
	OutFormat string `yaml:"out_format"`

	// Emit writes an additional structured event stream to stdout (see --emit).
	Emit []string `yaml:"emit"`

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool `yaml:"no_console"`
}

type Runtime struct {
	// Concurrency bounds parallel row evaluation (see --concurrency). Must be >= 1.
	Concurrency int `yaml:"concurrency"`

	// Timeout is the global audit timeout (see --timeout). Must be > 0.
	Timeout time.Duration `yaml:"timeout"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

func New() *Config {
	return &Config{
		Inputs: Inputs{
			DataLayerSheet: "Data Layer Rules",
			TagSheet:       "Tag Rules",
			FacebookSheet:  "Facebook Mappings",
			GoogleSheet:    "Google Mappings",
		},
		Crawl: Crawl{
			DataLayerExpr:     "() => window.dataLayer",
			RetryAttempts:     3,
			NavigationTimeout: 30 * time.Second,
			RowsOut:           "rows.json",
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Concurrency: 5,
			Timeout:     10 * time.Minute,
		},
	}
}

// LoadFile merges a YAML config file into c. CLI flags are bound after the
// file is loaded, so flags win.
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Site.Host) == "" {
		return errors.New("--site-host (site.host) must be provided")
	}

	if c.Inputs.DataLayerRows == "" && c.Inputs.TagRows == "" {
		return errors.New("at least one of --datalayer-rows or --tag-rows must be provided")
	}
	if c.Inputs.Workbook == "" {
		return errors.New("--workbook must be provided")
	}

	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		c.Output.ConsoleFormat = "text"
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for _, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
	}

	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				return errors.New("cannot infer output format from file extension; use --out-format")
			}
		}
		if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported --out-format: %s (must be one of: json, ndjson)", c.Output.OutFormat)
		}
	}

	return nil
}

// ValidateCrawl checks the fields only the crawl command consumes.
func (c *Config) ValidateCrawl() error {
	if strings.TrimSpace(c.Site.Host) == "" {
		return errors.New("site.host must be provided")
	}
	if len(c.Crawl.Pages) == 0 && len(c.Crawl.Journeys) == 0 {
		return errors.New("crawl requires at least one page or journey")
	}
	if c.Crawl.RetryAttempts < 1 {
		return errors.New("crawl.retry_attempts must be >= 1")
	}
	if c.Crawl.NavigationTimeout <= 0 {
		return errors.New("crawl.navigation_timeout must be > 0")
	}
	if c.Crawl.RowsOut == "" {
		return errors.New("crawl.rows_out must be provided")
	}
	for _, j := range c.Crawl.Journeys {
		if j.Name == "" {
			return errors.New("every journey needs a name")
		}
		for i, s := range j.Steps {
			switch s.Action {
			case "goto":
				if s.URL == "" {
					return fmt.Errorf("journey %s step %d: goto needs a url", j.Name, i)
				}
			case "click-role":
				if s.Role == "" {
					return fmt.Errorf("journey %s step %d: click-role needs a role", j.Name, i)
				}
			case "wait":
				if s.Duration <= 0 {
					return fmt.Errorf("journey %s step %d: wait needs a duration", j.Name, i)
				}
			default:
				return fmt.Errorf("journey %s step %d: unknown action %q", j.Name, i, s.Action)
			}
		}
	}
	return nil
}

func normalizeEnumValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
