package crawl

import (
	"context"
	"errors"
	"fmt"
)

// Retry runs op up to attempts times, accumulating per-attempt failures. The
// loop carries an explicit remaining-attempts counter; there is no recursion
// and no retry beyond the budget.
func Retry(ctx context.Context, attempts int, op func(context.Context) error) error {
	if attempts < 1 {
		return fmt.Errorf("retry budget must be >= 1, got %d", attempts)
	}

	var failures []error
	for remaining := attempts; remaining > 0; remaining-- {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}
		err := op(ctx)
		if err == nil {
			return nil
		}
		failures = append(failures, err)
	}
	return fmt.Errorf("all %d attempts failed: %w", len(failures), errors.Join(failures...))
}
