package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/eval"
)

// Run executes the eval command.
func (c *EvalCmd) Run(deps *Dependencies) error {
	harness := deps.Harness
	if harness == nil {
		harness = eval.NewHarness(deps.Search, eval.WithTopK(c.TopK))
	}

	report, runErr := harness.Run(deps.Ctx, c.Only)
	if report == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(runErr))
		return runErr
	}

	for _, q := range report.Queries {
		status := "FAIL"
		detail := "expected " + strings.Join(q.ExpectedServices, ", ")
		if q.RelevantFound {
			status = "PASS"
			detail = fmt.Sprintf("rank %d", q.TopRelevantRank)
		}
		if q.Error != "" {
			detail = q.Error
		}
		fmt.Fprintf(deps.Stdout, "%s  %-20s %s\n", status, q.Name, detail)
	}

	fmt.Fprintf(deps.Stdout, "\n%d/%d passed, precision@%d %.2f, MRR %.3f, mean latency %s\n",
		report.Passed, report.Total, report.TopK, report.Precision, report.MRR,
		report.MeanLatency.Round(time.Millisecond))

	if c.Out != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(c.Out, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(deps.Stdout, "Report written to %s\n", c.Out)
	}

	if runErr != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(runErr))
		return runErr
	}
	return nil
}
