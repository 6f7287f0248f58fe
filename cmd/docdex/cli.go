package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/crawl"
	"github.com/fwojciec/docdex/eval"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	Catalog    docdex.CatalogService
	Pipeline   *crawl.Pipeline
	Search     docdex.SearchService
	Index      docdex.VectorStore
	Ledger     docdex.FailedPageLedger
	RawStore   docdex.RawStore
	CleanStore docdex.CleanStore
	Harness    *eval.Harness
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Ingest   IngestCmd   `cmd:"" help:"Crawl the documentation portal and build the vector index"`
	Query    QueryCmd    `cmd:"" help:"Search the documentation index"`
	Eval     EvalCmd     `cmd:"" help:"Evaluate retrieval quality against the built-in query set"`
	Retry    RetryCmd    `cmd:"" help:"Re-fetch pages recorded in the failed-page ledger"`
	Services ServicesCmd `cmd:"" help:"List services in the documentation catalog"`
	Stats    StatsCmd    `cmd:"" help:"Show store and index statistics"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Services      []string `short:"s" help:"Restrict to service codes (repeatable)"`
	DryRun        bool     `help:"Discover pages and report counts without fetching"`
	Clear         bool     `help:"Empty the vector index before indexing"`
	SkipUnchanged bool     `help:"Skip documents whose content hash is unchanged"`
	Browser       bool     `help:"Fetch with a headless browser instead of plain HTTP"`
	Concurrency   int      `short:"c" default:"8" help:"Initial concurrent fetch limit"`
}

// QueryCmd is the "query" subcommand.
type QueryCmd struct {
	Text       string `arg:"" optional:"" help:"Query text; omit for interactive mode"`
	Service    string `help:"Restrict results to one service code"`
	TopK       int    `short:"k" default:"5" help:"Number of results to return"`
	JSON       bool   `help:"Render results as JSON"`
	VectorOnly bool   `help:"Disable keyword re-ranking and query expansion"`
}

// EvalCmd is the "eval" subcommand.
type EvalCmd struct {
	Only       string `help:"Run a single named evaluation query"`
	TopK       int    `short:"k" default:"3" help:"Results retrieved per query"`
	Out        string `type:"path" help:"Write the JSON report to a file"`
	VectorOnly bool   `help:"Evaluate without keyword re-ranking and query expansion"`
}

// RetryCmd is the "retry" subcommand.
type RetryCmd struct {
	List        bool `help:"List retryable pages without fetching"`
	Browser     bool `help:"Fetch with a headless browser instead of plain HTTP"`
	Concurrency int  `short:"c" default:"8" help:"Initial concurrent fetch limit"`
}

// ServicesCmd is the "services" subcommand.
type ServicesCmd struct {
	JSON bool `help:"Render the catalog as JSON"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	JSON bool `help:"Render statistics as JSON"`
}
