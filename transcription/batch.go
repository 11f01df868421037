package transcription

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/skillsenselab/vaani/errors"
)

// BatchItem is one file in a batch request. Err carries a validation
// failure detected before dispatch; such items are reported, not
// transcribed.
type BatchItem struct {
	Filename string
	Request  *Request
	Err      error
}

// BatchResult is the outcome for one batch item, in input order.
type BatchResult struct {
	Filename string
	Result   *Result
	Err      error
}

// TranscribeBatch runs items over a bounded worker pool. Results come back
// in input order. Items are isolated: one failure never cancels the
// others. A cancelled parent context marks the not-yet-finished items
// CANCELLED.
func (e *Engine) TranscribeBatch(ctx context.Context, items []BatchItem) ([]BatchResult, error) {
	if len(items) == 0 {
		return nil, errors.InvalidInput("files", "no files provided")
	}
	if len(items) > e.cfg.Batch.MaxFiles {
		return nil, errors.InvalidInput("files", "too many files").
			WithDetail("max_files", e.cfg.Batch.MaxFiles).
			WithDetail("got", len(items))
	}

	results := make([]BatchResult, len(items))

	// Deliberately not errgroup.WithContext: a failed item must not
	// cancel its siblings.
	var g errgroup.Group
	g.SetLimit(e.cfg.Batch.Workers)

	for i, item := range items {
		i, item := i, item
		results[i].Filename = item.Filename

		g.Go(func() error {
			switch {
			case item.Err != nil:
				results[i].Err = item.Err
			case ctx.Err() != nil:
				results[i].Err = errors.Cancelled("batch item")
			default:
				res, err := e.Transcribe(ctx, item.Request)
				results[i].Result = res
				results[i].Err = err
			}
			return nil
		})
	}

	g.Wait()
	return results, nil
}
