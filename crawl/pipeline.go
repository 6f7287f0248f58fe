package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docdex"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultEmbedBatchSize is the number of chunks embedded per API call.
const DefaultEmbedBatchSize = 128

// maxRecordedErrors caps the error samples carried in a run result.
const maxRecordedErrors = 10

// ContentHash returns a stable hex digest of document content, used to skip
// re-processing unchanged documents.
func ContentHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// RunOptions configures one pipeline run.
type RunOptions struct {
	// Services restricts the run to the given service codes. Empty means
	// all services in the catalog.
	Services []string

	// RetryFailedOnly fetches only the ledger's retryable pages instead of
	// walking the catalog.
	RetryFailedOnly bool

	// DryRun stops after discovery and reports counts only.
	DryRun bool

	// Clear empties the vector index before indexing.
	Clear bool

	// SkipUnchanged skips normalization and indexing for documents whose
	// content hash matches the stored clean document.
	SkipUnchanged bool

	// Progress, if set, receives fetch completion callbacks.
	Progress docdex.FetchProgressFunc
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	RunID              string        `json:"runId"`
	Services           int           `json:"services"`
	PagesDiscovered    int           `json:"pagesDiscovered"`
	PagesFetched       int           `json:"pagesFetched"`
	PagesFailed        int           `json:"pagesFailed"`
	DocumentsProcessed int           `json:"documentsProcessed"`
	DocumentsSkipped   int           `json:"documentsSkipped"`
	Chunks             int           `json:"chunks"`
	Tokens             int           `json:"tokens"`
	Vectors            int           `json:"vectors"`
	Duration           time.Duration `json:"duration"`
	Errors             []string      `json:"errors,omitempty"`
}

// Pipeline runs the full ingest: discovery, fetch, raw storage,
// normalization, chunking, clean storage, embedding, indexing. Page-level
// failures are recorded in the ledger and the run result; only
// infrastructure failures abort the run.
type Pipeline struct {
	Catalog    docdex.CatalogService
	Fetcher    *PageFetcher
	RawStore   docdex.RawStore
	CleanStore docdex.CleanStore
	Ledger     docdex.FailedPageLedger
	Extractor  docdex.Extractor
	Converter  docdex.Converter
	Embedder   docdex.Embedder
	Index      docdex.VectorStore

	// Chunk configures the chunker. Zero value uses defaults.
	Chunk docdex.ChunkOptions

	// BatchSize is the embedding batch size. Defaults to
	// DefaultEmbedBatchSize.
	BatchSize int

	// Workers bounds normalization parallelism. Defaults to NumCPU.
	Workers int

	// Logger receives run progress. Defaults to a discard logger.
	Logger *slog.Logger

	// Clock abstracts time for tests. Defaults to SystemClock.
	Clock Clock
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (p *Pipeline) clock() Clock {
	if p.Clock != nil {
		return p.Clock
	}
	return SystemClock()
}

func (p *Pipeline) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.NumCPU()
}

func (p *Pipeline) batchSize() int {
	if p.BatchSize > 0 {
		return p.BatchSize
	}
	return DefaultEmbedBatchSize
}

// Run executes the pipeline. The returned result is non-nil whenever
// discovery succeeded, even if later stages recorded page-level errors.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	logger := p.logger()
	start := p.clock().Now()
	result := &RunResult{RunID: uuid.NewString()}

	pages, services, err := p.discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Services = services
	result.PagesDiscovered = len(pages)
	logger.Info("discovery complete", "run_id", result.RunID, "services", services, "pages", len(pages))

	if opts.DryRun {
		result.Duration = p.clock().Now().Sub(start)
		return result, nil
	}

	if err := p.Index.Initialize(ctx); err != nil {
		return nil, err
	}
	if opts.Clear {
		if err := p.Index.Clear(ctx); err != nil {
			return nil, err
		}
	}

	docs, failures := p.Fetcher.FetchPages(ctx, pages, opts.Progress)
	result.PagesFetched = len(docs)
	result.PagesFailed = len(failures)
	p.recordFailures(ctx, failures, result)

	// Clear ledger entries for pages that now succeeded.
	for _, page := range pages {
		if _, ok := docs[page.ID]; ok {
			if err := p.Ledger.RemoveFailedPage(ctx, page.URL); err != nil {
				logger.Warn("ledger remove failed", "url", page.URL, "error", err)
			}
		}
	}

	chunks, err := p.process(ctx, pages, docs, opts, result)
	if err != nil {
		return nil, err
	}
	result.Chunks = len(chunks)
	for _, c := range chunks {
		result.Tokens += c.TokenCount
	}

	if len(chunks) > 0 {
		embeddings, err := p.Embedder.EmbedChunks(ctx, chunks, p.batchSize())
		if err != nil {
			return nil, err
		}
		if err := p.Index.AddChunks(ctx, chunks, embeddings); err != nil {
			return nil, err
		}
	}
	if stats, err := p.Index.Stats(ctx); err == nil {
		result.Vectors = stats.Vectors
	}

	result.Duration = p.clock().Now().Sub(start)
	p.writeSummaries(ctx, result)
	logger.Info("run complete",
		"run_id", result.RunID,
		"fetched", result.PagesFetched,
		"failed", result.PagesFailed,
		"documents", result.DocumentsProcessed,
		"chunks", result.Chunks,
		"duration", result.Duration,
	)
	return result, nil
}

// discover resolves the set of pages to fetch, either from the failed-page
// ledger or by walking the catalog, deduplicated and ordered shallowest
// first.
func (p *Pipeline) discover(ctx context.Context, opts RunOptions) ([]docdex.DocumentPage, int, error) {
	if opts.RetryFailedOnly {
		records, err := p.Ledger.RetryablePages(ctx)
		if err != nil {
			return nil, 0, err
		}
		frontier := NewFrontier(uint(len(records)) + 1)
		services := map[string]struct{}{}
		for _, r := range records {
			frontier.Push(docdex.DocumentPage{
				ID:       docdex.GeneratePageID(r.URL),
				URL:      r.URL,
				Title:    r.Title,
				Service:  r.Service,
				Category: docdex.DeriveCategory(r.URL),
				Level:    1,
				Status:   docdex.PageStatusPending,
			})
			services[r.Service] = struct{}{}
		}
		return frontier.Drain(), len(services), nil
	}

	categories, err := p.Catalog.FetchAllServices(ctx)
	if err != nil {
		return nil, 0, err
	}

	frontier := NewFrontier(0)
	services := 0
	for _, category := range categories {
		for _, svc := range category.Services {
			if len(opts.Services) > 0 && !slices.Contains(opts.Services, svc.Code) {
				continue
			}
			pages, err := p.Catalog.FetchServicePages(ctx, svc.Code)
			if err != nil {
				p.logger().Warn("service discovery failed", "service", svc.Code, "error", err)
				continue
			}
			if len(pages) == 0 {
				continue
			}
			services++
			for _, page := range pages {
				frontier.Push(page)
			}
		}
	}
	return frontier.Drain(), services, nil
}

func (p *Pipeline) recordFailures(ctx context.Context, failures []PageFailure, result *RunResult) {
	for _, f := range failures {
		addError(result, fmt.Sprintf("%s: %s", f.Page.URL, f.Err))
		record := docdex.FailedPageRecord{
			Service:     f.Page.Service,
			URL:         f.Page.URL,
			Title:       f.Page.Title,
			Error:       f.Err.Error(),
			LastAttempt: p.clock().Now(),
			WillRetry:   Retryable(f.Err, DefaultRetryableStatuses()),
		}
		if err := p.Ledger.AddFailedPage(ctx, record); err != nil {
			p.logger().Warn("ledger add failed", "url", f.Page.URL, "error", err)
		}
	}
}

// process stores raw documents and normalizes them into chunked clean
// documents. Normalization runs in parallel; the returned chunks preserve
// page order so index insertion order is deterministic.
func (p *Pipeline) process(ctx context.Context, pages []docdex.DocumentPage, docs map[string]*docdex.RawDocument, opts RunOptions, result *RunResult) ([]docdex.DocumentChunk, error) {
	type job struct {
		page docdex.DocumentPage
		raw  *docdex.RawDocument
	}
	var jobs []job
	for _, page := range pages {
		if raw, ok := docs[page.ID]; ok {
			jobs = append(jobs, job{page: page, raw: raw})
		}
	}

	perJob := make([][]docdex.DocumentChunk, len(jobs))
	var mu sync.Mutex
	processed, skipped := 0, 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := p.RawStore.SaveDocument(gctx, j.raw); err != nil {
				mu.Lock()
				addError(result, fmt.Sprintf("%s: save raw: %s", j.page.ID, err))
				mu.Unlock()
				return nil
			}

			clean, err := p.normalize(j.page, j.raw)
			if err != nil {
				mu.Lock()
				addError(result, fmt.Sprintf("%s: %s", j.page.ID, err))
				mu.Unlock()
				return nil
			}
			if clean == nil {
				return nil
			}

			if opts.SkipUnchanged && p.unchanged(gctx, clean) {
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			if err := p.CleanStore.SaveDocument(gctx, clean); err != nil {
				mu.Lock()
				addError(result, fmt.Sprintf("%s: save clean: %s", j.page.ID, err))
				mu.Unlock()
				return nil
			}

			chunks := docdex.ChunkDocument(clean, p.Chunk)
			mu.Lock()
			processed++
			mu.Unlock()
			perJob[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.DocumentsProcessed = processed
	result.DocumentsSkipped = skipped

	var chunks []docdex.DocumentChunk
	for _, c := range perJob {
		chunks = append(chunks, c...)
	}
	return chunks, nil
}

// normalize turns one raw document into a clean document. A page whose
// normalized content is empty yields (nil, nil) and is dropped.
func (p *Pipeline) normalize(page docdex.DocumentPage, raw *docdex.RawDocument) (*docdex.CleanDocument, error) {
	extracted, err := p.Extractor.Extract(raw.HTML)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	markdown, err := p.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	if markdown == "" {
		return nil, nil
	}

	title := extracted.Title
	if title == "" {
		title = page.Title
	}
	return &docdex.CleanDocument{
		Meta: docdex.CleanDocumentMeta{
			ID:            page.ID,
			URL:           page.URL,
			Title:         title,
			Service:       page.Service,
			Category:      page.Category,
			HandbookCode:  page.HandbookCode,
			ContentLength: len(markdown),
			ContentHash:   ContentHash(markdown),
			ProcessedAt:   p.clock().Now(),
		},
		Content: markdown,
	}, nil
}

func (p *Pipeline) unchanged(ctx context.Context, clean *docdex.CleanDocument) bool {
	existing, err := p.CleanStore.LoadDocument(ctx, clean.Meta.Service, clean.Meta.ID)
	if err != nil {
		return false
	}
	return existing.Meta.ContentHash != "" && existing.Meta.ContentHash == clean.Meta.ContentHash
}

func (p *Pipeline) writeSummaries(ctx context.Context, result *RunResult) {
	summary := &docdex.StoreSummary{
		RunID:       result.RunID,
		CompletedAt: p.clock().Now(),
		Services:    result.Services,
		Documents:   result.DocumentsProcessed,
		Failed:      result.PagesFailed,
		Errors:      result.Errors,
	}
	if err := p.RawStore.WriteSummary(ctx, summary); err != nil {
		p.logger().Warn("raw store summary failed", "error", err)
	}
	if err := p.CleanStore.WriteSummary(ctx, summary); err != nil {
		p.logger().Warn("clean store summary failed", "error", err)
	}
}

func addError(result *RunResult, msg string) {
	if len(result.Errors) >= maxRecordedErrors {
		return
	}
	result.Errors = append(result.Errors, msg)
}
