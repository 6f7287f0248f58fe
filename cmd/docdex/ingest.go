package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/crawl"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	opts := crawl.RunOptions{
		Services:      c.Services,
		DryRun:        c.DryRun,
		Clear:         c.Clear,
		SkipUnchanged: c.SkipUnchanged,
		Progress:      fetchProgress(deps.Stdout),
	}

	result, err := deps.Pipeline.Run(deps.Ctx, opts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if c.DryRun {
		fmt.Fprintf(deps.Stdout, "Dry run: %d services, %d pages discovered\n",
			result.Services, result.PagesDiscovered)
		return nil
	}

	printRunResult(deps.Stdout, deps.Stderr, result)
	return nil
}

// fetchProgress reports fetch completion in batches to keep output readable
// on large runs.
func fetchProgress(w io.Writer) docdex.FetchProgressFunc {
	return func(completed, total int, pageID string) {
		if completed%25 == 0 || completed == total {
			fmt.Fprintf(w, "  fetched %d/%d pages\n", completed, total)
		}
	}
}

func printRunResult(stdout, stderr io.Writer, result *crawl.RunResult) {
	fmt.Fprintf(stdout, "Run %s finished in %s\n", result.RunID, result.Duration.Round(time.Millisecond))
	fmt.Fprintf(stdout, "  %d services, %d pages discovered\n", result.Services, result.PagesDiscovered)
	fmt.Fprintf(stdout, "  %d fetched, %d failed\n", result.PagesFetched, result.PagesFailed)
	fmt.Fprintf(stdout, "  %d documents processed (%d skipped), %d chunks, %d tokens\n",
		result.DocumentsProcessed, result.DocumentsSkipped, result.Chunks, result.Tokens)
	fmt.Fprintf(stdout, "  %d vectors indexed\n", result.Vectors)

	for _, e := range result.Errors {
		fmt.Fprintf(stderr, "  error: %s\n", e)
	}
}
