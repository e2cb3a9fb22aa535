package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"flickbridge/internal/config"
	"flickbridge/internal/logging"
)

const defaultRunnerWorkers = 2

// Summary aggregates a batch run.
type Summary struct {
	RunID     string
	Started   time.Time
	Finished  time.Time
	Unchanged int
	Updated   int
	Failed    int
	Results   []Result
}

// Failures returns the failed results.
func (s Summary) Failures() []Result {
	var failed []Result
	for _, result := range s.Results {
		if result.Status == StatusFailed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Runner reconciles batches of targets with bounded concurrency and a
// shared rate limit on remote traffic.
type Runner struct {
	reconciler *Reconciler
	workers    int
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewRunner builds a runner from the reconcile configuration section.
func NewRunner(reconciler *Reconciler, cfg config.Reconcile, logger *slog.Logger) *Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultRunnerWorkers
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	if logger == nil {
		logger = logging.NewNop()
	}

	return &Runner{
		reconciler: reconciler,
		workers:    workers,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logging.NewComponentLogger(logger, "runner"),
	}
}

type indexedResult struct {
	index  int
	result Result
}

// Run reconciles the targets. Cancellation is honored before each new
// target starts; in-flight targets finish and their results are kept.
// Targets never started are absent from the summary.
func (r *Runner) Run(ctx context.Context, targets []string) Summary {
	summary := Summary{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
	}
	logger := r.logger.With(logging.String(logging.FieldRunID, summary.RunID))
	logger.Info("batch started", logging.Int("targets", len(targets)))

	jobs := make(chan int)
	results := make(chan indexedResult, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				if err := r.limiter.Wait(ctx); err != nil {
					return
				}
				results <- indexedResult{
					index:  index,
					result: r.reconcileSafely(ctx, targets[index]),
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for index := range targets {
			select {
			case <-ctx.Done():
				return
			case jobs <- index:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make(map[int]Result, len(targets))
	for item := range results {
		collected[item.index] = item.result
	}

	for index := range targets {
		result, ok := collected[index]
		if !ok {
			continue
		}
		summary.Results = append(summary.Results, result)
		switch result.Status {
		case StatusUnchanged:
			summary.Unchanged++
		case StatusUpdated:
			summary.Updated++
		case StatusFailed:
			summary.Failed++
			logger.Warn("target failed",
				logging.String(logging.FieldTarget, result.Target),
				logging.String("reason", result.Reason),
				logging.Error(result.Err))
		}
	}

	summary.Finished = time.Now().UTC()
	logger.Info("batch finished",
		logging.Int("unchanged", summary.Unchanged),
		logging.Int("updated", summary.Updated),
		logging.Int("failed", summary.Failed))
	return summary
}

// reconcileSafely isolates a panicking target so the rest of the batch
// keeps going.
func (r *Runner) reconcileSafely(ctx context.Context, target string) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			result = Result{
				Target: target,
				Status: StatusFailed,
				Reason: ReasonPanic,
				Err:    fmt.Errorf("reconcile panicked: %v", p),
			}
		}
	}()
	return r.reconciler.ReconcileFile(ctx, target)
}
