package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tagmedic/internal/normalize"
	"tagmedic/internal/row"
	"tagmedic/internal/rules"
	"tagmedic/internal/site"
)

// Driver evaluates rule tables against extracted rows. It holds only immutable
// configuration, so one Driver may serve any number of runs.
type Driver struct {
	Site site.Site
	Log  *zap.Logger
	// Concurrency bounds parallel row evaluation. Values < 1 mean serial.
	// Ordering of the verdict slice is row-major, rule-table order,
	// regardless of concurrency.
	Concurrency int
}

// AuditRows runs every validity-gated rule whose key exists on each row,
// producing one verdict per evaluated (row, rule) pair. One row's failure
// never aborts the others; the returned count says how many rows could not be
// evaluated normally (unparsable URL, recovered panic).
func (d *Driver) AuditRows(ctx context.Context, rows []row.ExtractedRow, table *rules.Table, category rules.Category) ([]rules.Verdict, int) {
	perRow := make([][]rules.Verdict, len(rows))
	degradedPerRow := make([]bool, len(rows))

	g, _ := errgroup.WithContext(ctx)
	limit := d.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range rows {
		i := i
		g.Go(func() error {
			perRow[i], degradedPerRow[i] = d.auditRow(rows[i], table, category)
			return nil
		})
	}
	// Workers never return errors; degradation is recorded in the verdicts.
	_ = g.Wait()

	var out []rules.Verdict
	degraded := 0
	for i, vs := range perRow {
		out = append(out, vs...)
		if degradedPerRow[i] {
			degraded++
		}
	}
	return out, degraded
}

func (d *Driver) auditRow(r row.ExtractedRow, table *rules.Table, category rules.Category) ([]rules.Verdict, bool) {
	local, localErr := d.Site.Belongs(r.URL)
	if localErr != nil {
		d.logWarn("row url unparsable", r, localErr)
	}

	degraded := localErr != nil
	var verdicts []rules.Verdict
	for _, rule := range table.Ordered() {
		if !rule.Valid {
			continue
		}
		value, ok := r.Fields[rule.Key]
		if !ok {
			// A key the crawl never extracted is skipped, not failed.
			continue
		}

		// An off-site or unparsable page URL cannot produce a meaningful
		// field verdict; every rule on the row short-circuits.
		if localErr != nil || !local {
			verdicts = append(verdicts, rules.InvalidURLVerdict(r, rule, category, "page is not on the audited host"))
			continue
		}

		v, recovered := d.evaluate(r, rule, value, category)
		if recovered {
			degraded = true
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, degraded
}

// evaluate dispatches one rule to its strategy, failing closed on an
// unrecognized discriminator and recovering a panicking strategy so the row's
// remaining rules still run.
func (d *Driver) evaluate(r row.ExtractedRow, rule rules.Rule, value any, category rules.Category) (v rules.Verdict, recovered bool) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logWarn("rule evaluation panicked", r, fmt.Errorf("%v", rec))
			v = rules.FieldVerdict(r, rule, category, normalize.String(value), rules.StatusFail)
			recovered = true
		}
	}()

	strategy, ok := rules.Lookup(rule.AuditType)
	if !ok {
		return rules.FieldVerdict(r, rule, category, normalize.String(value), rules.StatusFail), false
	}

	canonical := normalize.Canonical(value, d.Log)
	status := strategy.Evaluate(canonical, rule, rules.RowContext{
		URL:      r.URL,
		Products: r.Products,
		Log:      d.Log,
	})
	return rules.FieldVerdict(r, rule, category, normalize.String(canonical), status), false
}

func (d *Driver) logWarn(msg string, r row.ExtractedRow, err error) {
	if d.Log == nil {
		return
	}
	d.Log.Warn(msg, zap.String("row", r.ID), zap.String("url", r.URL), zap.Error(err))
}
