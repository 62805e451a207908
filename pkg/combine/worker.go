// File: pkg/combine/worker.go
package combine

import (
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// candidate is a file that passed every check short of the binary sniff.
type candidate struct {
	path string
	rel  string
}

// result is what a worker produced for one candidate.
type result struct {
	path    string
	verdict Verdict
	content FileContent
}

type job struct {
	index int
	candidate
}

// ProcessFilesConcurrently sniffs, reads and normalizes candidates on a pool
// of maxWorkers goroutines. Results keep the order of candidates. The first
// error stops the remaining jobs from being processed and is returned.
func ProcessFilesConcurrently(candidates []candidate, maxWorkers int, sel *Selector, logger *zap.Logger) ([]result, error) {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
		logger.Debug("Adjusted worker count", zap.Int("workers", maxWorkers))
	}

	results := make([]result, len(candidates))
	jobs := make(chan job)
	done := make(chan struct{})

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			close(done)
		})
	}

	logger.Debug("Initializing worker pool", zap.Int("workers", maxWorkers), zap.Int("files", len(candidates)))
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go worker(jobs, results, sel, fail, &wg, logger.With(zap.Int("workerID", w)))
	}

dispatch:
	for i, c := range candidates {
		select {
		case jobs <- job{index: i, candidate: c}:
		case <-done:
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	logger.Debug("All files processed", zap.Int("processedFiles", len(results)))
	return results, nil
}

// worker fills results[j.index] for every job it receives. Each index is
// written by exactly one worker.
func worker(jobs <-chan job, results []result, sel *Selector, fail func(error), wg *sync.WaitGroup, logger *zap.Logger) {
	defer wg.Done()

	for j := range jobs {
		r := result{path: j.path, content: FileContent{Path: j.rel}}

		verdict, err := sel.Sniff(j.path)
		if err != nil {
			fail(err)
			continue
		}
		r.verdict = verdict

		if verdict == Keep {
			fc, err := ReadFileContent(j.path, j.rel)
			if err != nil {
				fail(err)
				continue
			}
			r.content = fc
		}

		results[j.index] = r
		logger.Debug("Worker processed file", zap.String("path", j.rel), zap.Stringer("verdict", verdict))
	}
}
