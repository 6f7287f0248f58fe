package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/docdex"
)

// statsReport is the "stats" command output shape.
type statsReport struct {
	Services       int `json:"services"`
	RawDocuments   int `json:"rawDocuments"`
	CleanDocuments int `json:"cleanDocuments"`
	FailedPages    int `json:"failedPages"`
	RetryablePages int `json:"retryablePages"`
	Vectors        int `json:"vectors"`
	Dimension      int `json:"dimension"`
}

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	report, err := collectStats(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(deps.Stdout, "Services:        %d\n", report.Services)
	fmt.Fprintf(deps.Stdout, "Raw documents:   %d\n", report.RawDocuments)
	fmt.Fprintf(deps.Stdout, "Clean documents: %d\n", report.CleanDocuments)
	fmt.Fprintf(deps.Stdout, "Failed pages:    %d (%d retryable)\n", report.FailedPages, report.RetryablePages)
	fmt.Fprintf(deps.Stdout, "Vectors:         %d (dimension %d)\n", report.Vectors, report.Dimension)
	return nil
}

func collectStats(deps *Dependencies) (*statsReport, error) {
	report := &statsReport{}

	services, err := deps.RawStore.Services(deps.Ctx)
	if err != nil {
		return nil, err
	}
	report.Services = len(services)

	if report.RawDocuments, err = deps.RawStore.TotalCount(deps.Ctx); err != nil {
		return nil, err
	}
	if report.CleanDocuments, err = deps.CleanStore.TotalCount(deps.Ctx); err != nil {
		return nil, err
	}

	failed, err := deps.Ledger.FailedPages(deps.Ctx)
	if err != nil {
		return nil, err
	}
	report.FailedPages = len(failed)

	retryable, err := deps.Ledger.RetryablePages(deps.Ctx)
	if err != nil {
		return nil, err
	}
	report.RetryablePages = len(retryable)

	stats, err := deps.Index.Stats(deps.Ctx)
	if err != nil {
		return nil, err
	}
	report.Vectors = stats.Vectors
	report.Dimension = stats.Dimension

	return report, nil
}
