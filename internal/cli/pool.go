package cli

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/dgallion1/docindexer/internal/iterator"
)

// fileResult records the outcome of processing one discovered file.
type fileResult struct {
	File iterator.FileInfo
	Err  error
}

// forEachFile runs fn over files on a bounded pool of workers and
// returns one result per input, in input order.
func forEachFile(files []iterator.FileInfo, workers int, fn func(iterator.FileInfo) error) []fileResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	results := make([]fileResult, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = fileResult{File: files[i], Err: fn(files[i])}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// reportResults logs per-file failures and returns an error when any
// file failed, so the process exits nonzero.
func reportResults(a *app, operation string, results []fileResult) error {
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			a.log.Error("processing failed", "operation", operation, "path", r.File.Path, "error", r.Err)
		}
	}
	a.log.Info("done", "operation", operation, "files", len(results), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%s: %d of %d files failed", operation, failed, len(results))
	}
	return nil
}
