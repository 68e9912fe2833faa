package extract

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"arrimeta/internal/failures"
	"arrimeta/internal/logging"
	"arrimeta/internal/metadata"
)

// Result is the outcome for one input file.
type Result struct {
	Path     string
	Clip     string
	Metadata *metadata.Metadata
	Err      error
	// Kind classifies Err, see failures.Kind. Files never read because the
	// batch was cancelled are KindSkipped.
	Kind string
}

// KindSkipped marks a file the batch did not read.
const KindSkipped = "skipped"

// OK reports whether the file decoded.
func (r Result) OK() bool { return r.Err == nil }

// Report collects batch results in input order.
type Report struct {
	RunID     string
	Results   []Result
	Succeeded int
	Failed    int
	Skipped   int
	Elapsed   time.Duration
}

// Failures returns the results that carry an error.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// ProgressFunc is called after each file completes. Calls are serialized.
type ProgressFunc func(done, total int, res Result)

// BatchOptions tunes Batch.
type BatchOptions struct {
	// Workers bounds concurrent files; zero uses GOMAXPROCS.
	Workers  int
	Progress ProgressFunc
}

// Batch extracts names from every path with a bounded worker pool. Each
// worker opens its own files. Per-file failures are recorded in the report
// and do not stop the batch. Cancelling ctx stops submitting new files; the
// files never started are reported as skipped and Batch returns ctx.Err()
// alongside the report.
func (e *Extractor) Batch(ctx context.Context, paths []string, names []string, opts BatchOptions) (*Report, error) {
	names, err := e.schema.ResolveNames(names)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, max(len(paths), 1))

	report := &Report{RunID: uuid.NewString(), Results: make([]Result, len(paths))}
	ctx = logging.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_started"),
		logging.Int("files", len(paths)),
		logging.Int("workers", workers),
	)
	start := time.Now()

	jobs := make(chan int)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := e.run(ctx, paths[i], names)
				mu.Lock()
				report.Results[i] = res
				done++
				if opts.Progress != nil {
					opts.Progress(done, len(paths), res)
				}
				mu.Unlock()
			}
		}()
	}

	submitted := 0
submit:
	for i := range paths {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break submit
		case jobs <- i:
			submitted++
		}
	}
	close(jobs)
	wg.Wait()

	for i := submitted; i < len(paths); i++ {
		report.Results[i] = Result{Path: paths[i], Clip: ClipName(paths[i]), Err: ctx.Err(), Kind: KindSkipped}
	}
	for _, res := range report.Results {
		switch {
		case res.OK():
			report.Succeeded++
		case res.Kind == KindSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}
	report.Elapsed = time.Since(start)

	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_finished"),
		logging.Int("succeeded", report.Succeeded),
		logging.Int("failed", report.Failed),
		logging.Int("skipped", report.Skipped),
		logging.Duration("elapsed", report.Elapsed),
	)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (e *Extractor) run(ctx context.Context, path string, names []string) Result {
	res := Result{Path: path, Clip: ClipName(path)}
	m, err := e.file(ctx, path, names)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// Picked up by a worker as the batch was cancelled.
		res.Err = err
		res.Kind = KindSkipped
		return res
	}
	if err != nil {
		res.Err = err
		res.Kind = failures.Kind(err)
		logging.WarnWithContext(logging.WithContext(logging.WithFile(ctx, path), e.logger), "clip skipped", "file_failed",
			logging.String(logging.FieldErrorKind, res.Kind),
			logging.String(logging.FieldErrorHint, hint(res.Kind)),
			logging.String(logging.FieldImpact, "clip omitted from output"),
			logging.Error(err),
		)
		return res
	}
	res.Metadata = m
	return res
}

func hint(kind string) string {
	switch kind {
	case "format":
		return "file is not an ARRIRAW frame; check supported_files"
	case "truncated":
		return "file is shorter than the header; it may still be copying"
	case "decode":
		return "a header field is malformed; request fewer fields to skip it"
	default:
		return "check the path and its permissions"
	}
}
