package omml

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Worker limits for ResolveWorkers.
const (
	MinWorkers = 1
	MaxWorkers = 16
)

// DefaultTimeout is time given to a single expression when no timeout is specified.
const DefaultTimeout = 10 * time.Second

// Fragment is a serialized OMML expression to convert.
type Fragment struct {
	ID     string
	Source string
}

// Result holds the outcome of a single conversion. On failure LaTeX keeps a text placeholder.
type Result struct {
	ID       string
	LaTeX    string
	Err      error
	Duration time.Duration
}

// Option configures ConvertBatch.
type Option func(*batch)

type batch struct {
	workers int
	timeout time.Duration
	logger  *slog.Logger
}

// WithWorkers sets the number of concurrent workers, zero or less picks it from GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(b *batch) {
		b.workers = n
	}
}

// WithTimeout sets the time limit of a single expression.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("omml: WithTimeout duration must be positive")
	}

	return func(b *batch) {
		b.timeout = d
	}
}

// WithLogger sets structured logger for conversion failures, nothing is logged by default.
func WithLogger(logger *slog.Logger) Option {
	return func(b *batch) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// ResolveWorkers returns explicit worker count if it's positive, otherwise GOMAXPROCS clamped to
// [MinWorkers, MaxWorkers].
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	return min(max(runtime.GOMAXPROCS(0), MinWorkers), MaxWorkers)
}

// ConvertBatch converts fragments concurrently. Results are returned in the order of fragments. A failure
// of one expression never affects the others.
func ConvertBatch(ctx context.Context, fragments []Fragment, opts ...Option) []Result {
	if len(fragments) == 0 {
		return nil
	}

	b := &batch{
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(b)
	}

	concurrency := min(ResolveWorkers(b.workers), len(fragments))

	results := make([]Result, len(fragments))
	jobs := make(chan int, len(fragments))

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = Result{ID: fragments[idx].ID, Err: ctx.Err()}
					continue
				}

				results[idx] = b.convert(ctx, fragments[idx])
			}
		}()
	}

	for i := range fragments {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	return results
}

// convert runs a single expression under the timeout
func (b *batch) convert(ctx context.Context, f Fragment) Result {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type outcome struct {
		latex string
		err   error
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("conversion panic: %v", r)}
			}
		}()

		latex, err := ConvertString(f.Source)
		done <- outcome{latex: latex, err: err}
	}()

	var o outcome
	select {
	case o = <-done:
	case <-ctx.Done():
		o = outcome{err: fmt.Errorf("converting %q: %w", f.ID, ctx.Err())}
	}

	result := Result{ID: f.ID, LaTeX: o.latex, Err: o.err, Duration: time.Since(start)}

	if result.Err != nil {
		result.LaTeX = Placeholder(f.Source)
		b.logger.Warn("expression is not converted",
			slog.String("id", f.ID),
			slog.String("error", result.Err.Error()),
			slog.Duration("duration", result.Duration),
		)

		return result
	}

	b.logger.Debug("expression is converted",
		slog.String("id", f.ID),
		slog.Int("length", len(result.LaTeX)),
		slog.String("text", strings.TrimSpace(result.LaTeX)),
		slog.Duration("duration", result.Duration),
	)

	return result
}
