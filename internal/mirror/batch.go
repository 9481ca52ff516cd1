package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/nao1215/gopherdl/internal/config"
	"github.com/nao1215/gopherdl/internal/model"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of mirroring one target in a batch. Report may
// be partial (or nil for parse failures) when Err is set.
type Result struct {
	// Target is the address as the user gave it.
	Target string

	// Report describes what was downloaded for this target.
	Report *model.MirrorReport

	// Err is the fatal error for this target, if any. Per-resource
	// failures live in the report instead.
	Err error
}

// RunBatch mirrors several targets concurrently, at most concurrency at
// a time, and delivers each target's outcome through callback. Callback
// invocations are serialized, so the callback may touch shared state
// without its own locking.
//
// One target's failure never stops the others; only context
// cancellation or a configuration problem (for example an unusable
// SOCKS5 proxy address) ends the batch early.
func RunBatch(ctx context.Context, cfg *config.Config, targets []string, concurrency int, callback func(Result), opts ...Option) error {
	m, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	m.logger.Info("starting batch mirror",
		"total_targets", len(targets),
		"concurrency", concurrency,
	)
	startTime := time.Now()

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			m.logger.Info("mirroring target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			report, err := m.Run(ctx, target)

			mu.Lock()
			callback(Result{Target: target, Report: report, Err: err})
			mu.Unlock()

			if err != nil {
				m.logger.Warn("mirror failed", "target", target, "error", err)
				// Cancellation ends the batch; any other failure is the
				// callback's to report and the remaining targets proceed.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			}

			m.logger.Info("mirror completed", "target", target)
			return nil
		})
	}

	err = g.Wait()

	m.logger.Info("batch mirror complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return err
}
