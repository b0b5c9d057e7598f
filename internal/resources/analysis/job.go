package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Job is a single analysis call running in background
type Job struct {
	doneCh chan struct{}
	result Result
}

// Start runs the analysis in a separate goroutine. Errors, panics of the analyzer and the timeout
// are all reported as a Failure result
func Start(ctx context.Context, analyzer Analyzer, req Request, timeout time.Duration) *Job {
	job := &Job{doneCh: make(chan struct{})}

	go func() {
		defer close(job.doneCh)

		if len(req.Image) == 0 {
			job.result = Failure(ErrEmptyImage.Error())
			return
		}

		subCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			subCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		job.result = run(subCtx, analyzer, req)
	}()

	return job
}

func run(ctx context.Context, analyzer Analyzer, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Failure(fmt.Sprintf("analyzer panicked: %v", r))
		}
	}()

	a, err := analyzer.Analyze(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Failure("analysis timed out")
		}
		return Failure(err.Error())
	}
	return Success(a)
}

// Done is closed when the result is available
func (j *Job) Done() <-chan struct{} {
	return j.doneCh
}

// Result blocks until the job is finished or ctx is done
func (j *Job) Result(ctx context.Context) Result {
	select {
	case <-j.doneCh:
		return j.result
	case <-ctx.Done():
		return Failure(ctx.Err().Error())
	}
}

// AnalyzeSync is a convenience wrapper for callers that have nothing else to do while waiting
func AnalyzeSync(ctx context.Context, analyzer Analyzer, req Request, timeout time.Duration) Result {
	return Start(ctx, analyzer, req, timeout).Result(ctx)
}
