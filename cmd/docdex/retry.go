package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/crawl"
)

// Run executes the retry command.
func (c *RetryCmd) Run(deps *Dependencies) error {
	if c.List {
		records, err := deps.Ledger.RetryablePages(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(deps.Stdout, "No retryable pages.")
			return nil
		}
		for _, r := range records {
			fmt.Fprintf(deps.Stdout, "%s  attempts=%d  last=%s  %s\n",
				r.URL, r.Attempts, r.LastAttempt.Format(time.RFC3339), r.Error)
		}
		return nil
	}

	result, err := deps.Pipeline.Run(deps.Ctx, crawl.RunOptions{
		RetryFailedOnly: true,
		Progress:        fetchProgress(deps.Stdout),
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if result.PagesDiscovered == 0 {
		fmt.Fprintln(deps.Stdout, "No retryable pages.")
		return nil
	}

	printRunResult(deps.Stdout, deps.Stderr, result)
	return nil
}
