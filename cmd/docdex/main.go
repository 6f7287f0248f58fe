package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/crawl"
	"github.com/fwojciec/docdex/elasticsearch"
	"github.com/fwojciec/docdex/fs"
	"github.com/fwojciec/docdex/gemini"
	"github.com/fwojciec/docdex/goquery"
	"github.com/fwojciec/docdex/htmltomarkdown"
	dochttp "github.com/fwojciec/docdex/http"
	"github.com/fwojciec/docdex/rod"
	docslog "github.com/fwojciec/docdex/slog"
	"github.com/fwojciec/docdex/sqlite"
	"github.com/fwojciec/docdex/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// DataDir holds the raw store, clean store, ledger, and SQLite index.
	DataDir string

	// BaseURL is the documentation portal root.
	BaseURL string

	// Backend selects the vector index: "sqlite" or "elasticsearch".
	Backend string

	// Elasticsearch settings, used when Backend is "elasticsearch".
	ESAddresses []string
	ESIndex     string

	// Dimension is the embedding dimension shared by embedder and index.
	Dimension int

	// DB is the SQLite database, opened lazily. Exposed for tests.
	DB *sqlite.DB

	fetcher docdex.Fetcher
}

// NewMain returns a new instance of Main configured from the environment.
func NewMain() *Main {
	m := &Main{
		DataDir:   defaultDataDir(),
		BaseURL:   os.Getenv("DOCDEX_BASE_URL"),
		Backend:   "sqlite",
		ESIndex:   "docdex",
		Dimension: gemini.DefaultDimension,
	}
	if backend := os.Getenv("DOCDEX_INDEX"); backend != "" {
		m.Backend = backend
	}
	if addrs := os.Getenv("DOCDEX_ES_ADDR"); addrs != "" {
		m.ESAddresses = strings.Split(addrs, ",")
	}
	if index := os.Getenv("DOCDEX_ES_INDEX"); index != "" {
		m.ESIndex = index
	}
	if dim := os.Getenv("DOCDEX_EMBED_DIM"); dim != "" {
		if n, err := strconv.Atoi(dim); err == nil && n > 0 {
			m.Dimension = n
		}
	}
	return m
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.fetcher != nil {
		_ = m.fetcher.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  os.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docdex"),
		kong.Description("Crawl, index, and search cloud provider documentation."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docdex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel()}))
	deps.Logger = logger

	deps.RawStore = fs.NewRawStore(filepath.Join(m.DataDir, "raw"))
	deps.CleanStore = fs.NewCleanStore(filepath.Join(m.DataDir, "clean"))
	deps.Ledger = fs.NewLedger(filepath.Join(m.DataDir, "failed_pages.json"))

	needsCatalog := cmd == "ingest" || cmd == "retry" || cmd == "services"
	needsIndex := cmd == "ingest" || cmd == "retry" || cmd == "query" || cmd == "eval" || cmd == "stats"
	needsEmbedder := cmd == "ingest" || cmd == "retry" || cmd == "query" || cmd == "eval"

	if needsCatalog {
		if m.BaseURL == "" {
			return fmt.Errorf("documentation portal base URL not set. Set DOCDEX_BASE_URL")
		}
		navParser, err := goquery.NewNavigationParser(m.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL %q: %w", m.BaseURL, err)
		}
		catalog := dochttp.NewCatalog(nil, m.BaseURL, navParser,
			dochttp.WithLogger(logger),
			dochttp.WithSitemapFallback(dochttp.NewSitemap(nil)),
		)
		deps.Catalog = docslog.NewLoggingCatalogService(catalog, logger)
	}

	if needsIndex {
		index, err := m.openIndex(ctx)
		if err != nil {
			return err
		}
		defer m.Close()
		deps.Index = index
	}

	var embedder docdex.Embedder
	if needsEmbedder {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		embedder = gemini.NewEmbedder(client, gemini.WithDimension(m.Dimension))
	}

	if cmd == "query" || cmd == "eval" {
		vectorOnly := (cmd == "query" && cli.Query.VectorOnly) || (cmd == "eval" && cli.Eval.VectorOnly)
		var search docdex.SearchService
		if vectorOnly {
			search = docdex.NewSearcher(embedder, deps.Index)
		} else {
			search = docdex.NewHybridSearcher(embedder, deps.Index)
		}
		deps.Search = docslog.NewLoggingSearchService(search, logger)
	}

	if cmd == "ingest" || (cmd == "retry" && !cli.Retry.List) {
		browser := cli.Ingest.Browser || cli.Retry.Browser
		concurrency := cli.Ingest.Concurrency
		if cmd == "retry" {
			concurrency = cli.Retry.Concurrency
		}

		fetcher, err := m.newFetcher(browser, stderr)
		if err != nil {
			return err
		}
		m.fetcher = docslog.NewLoggingFetcher(fetcher, logger)

		limiter := crawl.NewAdaptiveLimiter(crawl.LimiterConfig{
			MaxConcurrent: concurrency,
		})
		deps.Pipeline = &crawl.Pipeline{
			Catalog:    deps.Catalog,
			Fetcher:    crawl.NewPageFetcher(m.fetcher, limiter),
			RawStore:   deps.RawStore,
			CleanStore: deps.CleanStore,
			Ledger:     deps.Ledger,
			Extractor:  trafilatura.NewExtractor(),
			Converter:  htmltomarkdown.NewConverter(),
			Embedder:   embedder,
			Index:      deps.Index,
			Logger:     logger,
		}
	}

	return kongCtx.Run(deps)
}

// openIndex builds and initializes the configured vector store backend.
func (m *Main) openIndex(ctx context.Context) (docdex.VectorStore, error) {
	switch m.Backend {
	case "elasticsearch":
		if len(m.ESAddresses) == 0 {
			return nil, fmt.Errorf("elasticsearch addresses not set. Set DOCDEX_ES_ADDR")
		}
		store, err := elasticsearch.NewVectorStore(elasticsearch.Config{
			Addresses: m.ESAddresses,
			Index:     m.ESIndex,
		}, m.Dimension)
		if err != nil {
			return nil, err
		}
		if err := store.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize elasticsearch index: %w", err)
		}
		return store, nil
	case "sqlite":
		m.DB = sqlite.NewDB(filepath.Join(m.DataDir, "index.db"))
		store := sqlite.NewVectorStore(m.DB, m.Dimension)
		if err := store.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite index: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown index backend %q (expected sqlite or elasticsearch)", m.Backend)
	}
}

func (m *Main) newFetcher(browser bool, stderr io.Writer) (docdex.Fetcher, error) {
	if !browser {
		return dochttp.NewFetcher(), nil
	}
	fetcher, err := rod.NewFetcher()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return fetcher, nil
}

func logLevel() slog.Level {
	if os.Getenv("DOCDEX_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func defaultDataDir() string {
	if path := os.Getenv("DOCDEX_DATA"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docdex"
	}
	dir := filepath.Join(home, ".docdex")
	_ = os.MkdirAll(dir, 0755)
	return dir
}
