package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"adscript/internal/metrics"
)

func call(ctx context.Context, backend Backend, kind string, req Request, timeout time.Duration) ([]string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := backend.Complete(ctx, req)
	metrics.ProviderCallDuration.WithLabelValues(backend.Name(), kind).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(backend.Name(), kind, metrics.StatusError).Inc()
		if timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%s timed out after %s: %w", kind, timeout, err)
		} else {
			err = fmt.Errorf("%s: %w", kind, err)
		}
		return nil, &ProviderError{Provider: backend.Name(), Err: err}
	}

	metrics.ProviderCallsTotal.WithLabelValues(backend.Name(), kind, metrics.StatusSuccess).Inc()
	return out, nil
}

// FanOut runs fn once per index concurrently and returns the results in index
// order. The first failure cancels the context handed to the other calls. A
// panic in fn is returned as that call's error.
func FanOut(ctx context.Context, n int, fn func(ctx context.Context, i int) (string, error)) ([]string, error) {
	out := make([]string, n)
	g, ctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("call %d panicked: %v", i+1, r)
				}
			}()

			text, err := fn(ctx, i)
			if err != nil {
				return err
			}
			out[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
