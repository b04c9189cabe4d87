package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"tagmedic/internal/config"
	"tagmedic/internal/row"
)

// Collector walks configured pages and journeys and materializes one
// ExtractedRow per list page and per journey step.
type Collector struct {
	Nav Navigator
	Cfg config.Crawl
	Log *zap.Logger
}

func (c *Collector) Collect(ctx context.Context) ([]row.ExtractedRow, error) {
	var rows []row.ExtractedRow

	for _, url := range c.Cfg.Pages {
		r, err := c.collectPage(ctx, url)
		if err != nil {
			// One page's failure never aborts the crawl; the row is simply
			// absent and the failure logged.
			c.logWarn("page crawl failed", url, err)
			continue
		}
		rows = append(rows, r)
	}

	for _, j := range c.Cfg.Journeys {
		stepRows, err := c.collectJourney(ctx, j)
		if err != nil {
			c.logWarn("journey crawl failed", j.Name, err)
			continue
		}
		rows = append(rows, stepRows...)
	}

	return rows, nil
}

func (c *Collector) collectPage(ctx context.Context, url string) (row.ExtractedRow, error) {
	err := Retry(ctx, c.Cfg.RetryAttempts, func(ctx context.Context) error {
		return c.Nav.Goto(ctx, url)
	})
	if err != nil {
		return row.ExtractedRow{}, err
	}
	return c.snapshotRow(ctx, url, url, row.KindList)
}

func (c *Collector) collectJourney(ctx context.Context, j config.Journey) ([]row.ExtractedRow, error) {
	var rows []row.ExtractedRow
	for i, step := range j.Steps {
		err := Retry(ctx, c.Cfg.RetryAttempts, func(ctx context.Context) error {
			return Dispatch(ctx, c.Nav, step)
		})
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}

		id := fmt.Sprintf("%s#%d", j.Name, i)
		r, err := c.snapshotRow(ctx, id, fmt.Sprintf("%s step %d", j.Name, i), row.KindJourney)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// snapshotRow captures the current page state: resolved URL, data-layer
// fields, product list, and the requests drained since the last row.
func (c *Collector) snapshotRow(ctx context.Context, id, name string, kind row.Kind) (row.ExtractedRow, error) {
	url, err := c.Nav.CurrentURL()
	if err != nil {
		return row.ExtractedRow{}, err
	}

	snap, err := c.Nav.Snapshot(ctx, c.Cfg.DataLayerExpr)
	if err != nil {
		return row.ExtractedRow{}, err
	}

	fields := flattenSnapshot(snap)
	products := fields["products"]
	delete(fields, "products")

	r := row.ExtractedRow{
		ID:       id,
		Name:     name,
		URL:      url,
		Kind:     kind,
		Fields:   fields,
		Products: products,
		Requests: c.Nav.DrainRequests(),
	}
	return r, r.Validate()
}

// flattenSnapshot reduces a data-layer snapshot to a field map. Data layers
// are usually an array of pushed objects; later pushes win.
func flattenSnapshot(snap any) map[string]any {
	fields := make(map[string]any)
	switch t := snap.(type) {
	case map[string]any:
		for k, v := range t {
			fields[k] = v
		}
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				for k, v := range m {
					fields[k] = v
				}
			}
		}
	}
	return fields
}

// WriteRows persists collected rows as the JSON file the audit loader consumes.
func WriteRows(path string, rows []row.ExtractedRow) error {
	raw, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write rows file: %w", err)
	}
	return nil
}

func (c *Collector) logWarn(msg, subject string, err error) {
	if c.Log == nil {
		return
	}
	c.Log.Warn(msg, zap.String("subject", subject), zap.Error(err))
}
