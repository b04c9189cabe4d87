package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tagmedic/internal/config"
	"tagmedic/internal/loader"
	"tagmedic/internal/output"
	"tagmedic/internal/row"
	"tagmedic/internal/rules"
	"tagmedic/internal/site"
)

func exitCodeForRun(fatal, partial, wrongs bool) int {
	// Exit code contract:
	// 0 = clean run, no wrongs
	// 1 = wrongs detected
	// 2 = partial failure (some rows could not be evaluated normally)
	// 3 = fatal error (audit did not run)
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	if wrongs {
		return 1
	}
	return 0
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Output.ConsoleFormat, cfg.Output.ConsoleFilterStatus)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Emit Sinks (additional structured streams)
	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(os.Stdout, emit)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// inputs bundles everything one audit run consumes.
type inputs struct {
	dataLayerRows []row.ExtractedRow
	tagRows       []row.ExtractedRow
	dataLayer     *rules.Table
	tag           *rules.Table
	mappings      []rules.CrossPlatformMapping
}

func loadInputs(cfg *config.Config) (*inputs, error) {
	in := &inputs{}
	var err error

	if cfg.Inputs.DataLayerRows != "" {
		if in.dataLayerRows, err = loader.LoadRows(cfg.Inputs.DataLayerRows); err != nil {
			return nil, err
		}
	}
	if cfg.Inputs.TagRows != "" {
		if in.tagRows, err = loader.LoadRows(cfg.Inputs.TagRows); err != nil {
			return nil, err
		}
	}

	wb, err := loader.OpenWorkbook(cfg.Inputs.Workbook)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	if cfg.Inputs.DataLayerRows != "" {
		if in.dataLayer, err = wb.RuleTable(cfg.Inputs.DataLayerSheet); err != nil {
			return nil, err
		}
	}
	if cfg.Inputs.TagRows != "" {
		if in.tag, err = wb.RuleTable(cfg.Inputs.TagSheet); err != nil {
			return nil, err
		}
	}

	// Cross-platform matching needs both sides.
	if cfg.Inputs.DataLayerRows != "" && cfg.Inputs.TagRows != "" {
		fb, err := wb.Mappings(cfg.Inputs.FacebookSheet, rules.PlatformFacebook)
		if err != nil {
			return nil, err
		}
		gg, err := wb.Mappings(cfg.Inputs.GoogleSheet, rules.PlatformGoogle)
		if err != nil {
			return nil, err
		}
		in.mappings = append(fb, gg...)
	}

	return in, nil
}

type Engine struct {
	Log *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	return &Engine{Log: log}
}

// Run executes the full audit and returns the process exit code.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	st, err := site.New(cfg.Site.Host)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeForRun(true, false, false)
	}

	in, err := loadInputs(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading inputs: %v\n", err)
		return exitCodeForRun(true, false, false)
	}

	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, false, false)
	}
	defer outMgr.Close()

	runID := uuid.NewString()
	ruleCount := in.dataLayer.Len() + in.tag.Len() + len(in.mappings)
	_ = outMgr.Write(output.Event{
		Type:  "run.started",
		RunID: runID,
		Rows:  len(in.dataLayerRows) + len(in.tagRows),
		Rules: ruleCount,
	})

	driver := &Driver{Site: st, Log: e.Log, Concurrency: cfg.Runtime.Concurrency}

	var verdicts []rules.Verdict
	degraded := 0

	runAudit := func(name string, rows []row.ExtractedRow, table *rules.Table, category rules.Category) {
		if len(rows) == 0 || table.Len() == 0 {
			return
		}
		_ = outMgr.Write(output.Event{Type: "audit.started", RunID: runID, Audit: name, Rows: len(rows), Rules: table.Len()})
		vs, deg := driver.AuditRows(ctx, rows, table, category)
		verdicts = append(verdicts, vs...)
		degraded += deg
		for _, v := range vs {
			_ = outMgr.Write(v)
		}
		_ = outMgr.Write(output.Event{Type: "audit.finished", RunID: runID, Audit: name})
	}

	runAudit("tag-presence", in.tagRows, in.tag, rules.CategoryTagPresence)
	runAudit("data-layer", in.dataLayerRows, in.dataLayer, rules.CategoryDataLayer)

	if len(in.mappings) > 0 {
		_ = outMgr.Write(output.Event{Type: "audit.started", RunID: runID, Audit: "cross-platform", Rows: len(in.dataLayerRows), Rules: len(in.mappings)})
		xp, err := MatchCrossPlatform(in.tagRows, in.dataLayerRows, in.mappings, e.Log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error matching cross-platform parameters: %v\n", err)
			code := exitCodeForRun(true, false, false)
			_ = outMgr.Write(output.Event{Type: "run.finished", RunID: runID, ExitCode: code})
			return code
		}
		verdicts = append(verdicts, xp...)
		for _, v := range xp {
			_ = outMgr.Write(v)
		}
		_ = outMgr.Write(output.Event{Type: "audit.finished", RunID: runID, Audit: "cross-platform"})
	}

	wrongs := false
	for _, v := range verdicts {
		if v.Status != rules.StatusPass {
			wrongs = true
			break
		}
	}

	code := exitCodeForRun(false, degraded > 0, wrongs)
	_ = outMgr.Write(output.Event{Type: "run.finished", RunID: runID, ExitCode: code})
	return code
}
