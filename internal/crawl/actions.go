// Package crawl materializes audit rows from live pages: it navigates a
// browser through configured pages and journeys, snapshots the data layer,
// and captures outbound request URLs. The audit engine only ever consumes the
// rows this package writes.
package crawl

import (
	"context"
	"fmt"
	"time"

	"tagmedic/internal/config"
)

// Navigator is the browser surface the dispatcher drives. The production
// implementation is rod-backed; tests substitute a fake.
type Navigator interface {
	Goto(ctx context.Context, url string) error
	ClickByRole(ctx context.Context, role, name string) error
	Wait(ctx context.Context, d time.Duration) error

	CurrentURL() (string, error)
	// Snapshot evaluates a JS expression on the page and returns its value.
	Snapshot(ctx context.Context, expr string) (any, error)
	// DrainRequests returns the outbound request URLs captured since the
	// previous drain.
	DrainRequests() []string
	Close() error
}

// Dispatch interprets one typed journey step. The action set is closed; step
// text is never executed as code.
func Dispatch(ctx context.Context, nav Navigator, step config.Step) error {
	switch step.Action {
	case "goto":
		return nav.Goto(ctx, step.URL)
	case "click-role":
		return nav.ClickByRole(ctx, step.Role, step.Name)
	case "wait":
		return nav.Wait(ctx, step.Duration)
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
}
