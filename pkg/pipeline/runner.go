package pipeline

import (
	"context"
	"sync"

	"github.com/arthur-debert/pylon/pkg/logging"
	"github.com/arthur-debert/pylon/pkg/paths"
	"github.com/rs/zerolog"
)

// DefaultWorkers bounds concurrent resolutions when no explicit limit
// is configured, keeping the host's process table out of trouble
const DefaultWorkers = 4

// Request is one discovered asset reference awaiting production
type Request struct {
	// URI is the normalized asset URI (leading separator)
	URI string

	// Document is the referencing document, nil for mounted files
	Document *paths.DocumentRef
}

// Result pairs a request with its outcome
type Result struct {
	Request Request
	Asset   *ProducedAsset
	Err     error
}

// Runner dispatches independent asset requests over a bounded worker
// pool. Requests share only the frozen registry, so no ordering between
// them is required or provided.
type Runner struct {
	service *Service
	workers int
	logger  zerolog.Logger
}

// NewRunner creates a runner with the given concurrency limit.
// A non-positive limit falls back to DefaultWorkers.
func NewRunner(service *Service, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{
		service: service,
		workers: workers,
		logger:  logging.GetLogger("pipeline.runner"),
	}
}

// Run resolves every request and returns one result per request, in
// input order. Individual failures do not stop the remaining requests.
func (r *Runner) Run(ctx context.Context, requests []Request) []Result {
	results := make([]Result, len(requests))
	if len(requests) == 0 {
		return results
	}

	workers := r.workers
	if workers > len(requests) {
		workers = len(requests)
	}

	r.logger.Debug().
		Int("requests", len(requests)).
		Int("workers", workers).
		Msg("Dispatching asset requests")

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				req := requests[idx]
				asset, err := r.service.ResolveAndRun(ctx, req.URI, req.Document)
				results[idx] = Result{Request: req, Asset: asset, Err: err}
			}
		}()
	}

	for i := range requests {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// FailureCount returns how many results carry an error
func FailureCount(results []Result) int {
	count := 0
	for _, res := range results {
		if res.Err != nil {
			count++
		}
	}
	return count
}
