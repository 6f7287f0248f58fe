// Package eval measures retrieval quality against a fixed set of queries
// annotated with the service codes a good answer should come from.
package eval

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/docdex"
)

// DefaultTopK is the number of results retrieved per evaluation query.
const DefaultTopK = 3

// Query is one evaluation case. A query passes when any retrieved chunk
// belongs to one of the expected services.
type Query struct {
	Name             string   `json:"name"`
	Text             string   `json:"text"`
	ExpectedServices []string `json:"expectedServices"`
}

// DefaultQueries returns the built-in evaluation set.
func DefaultQueries() []Query {
	return []Query{
		{Name: "ecs-creation", Text: "How do I create an ECS instance?", ExpectedServices: []string{"ecs"}},
		{Name: "storage-pricing", Text: "What are pricing options for storage?", ExpectedServices: []string{"obs", "evs", "sfs"}},
		{Name: "authentication", Text: "API authentication methods", ExpectedServices: []string{"iam", "security", "identity"}},
		{Name: "vpc-configuration", Text: "How to configure VPC network?", ExpectedServices: []string{"vpc"}},
		{Name: "database-backup", Text: "Database backup and restore", ExpectedServices: []string{"rds", "taurusdb", "gaussdb"}},
		{Name: "api-gateway", Text: "How do I set up API Gateway?", ExpectedServices: []string{"apig", "api-gateway"}},
		{Name: "load-balancing", Text: "Load balancing configuration", ExpectedServices: []string{"elb", "loadbalancer"}},
		{Name: "kubernetes-cluster", Text: "How to create a Kubernetes cluster?", ExpectedServices: []string{"cce", "cloud-container-engine"}},
		{Name: "redis-cache", Text: "Redis cache setup", ExpectedServices: []string{"redis", "dcs"}},
		{Name: "obs-bucket", Text: "Object storage bucket creation", ExpectedServices: []string{"obs"}},
	}
}

// QueryResult is the outcome of one evaluation query.
type QueryResult struct {
	Name             string        `json:"name"`
	Query            string        `json:"query"`
	ExpectedServices []string      `json:"expectedServices"`
	ResultServices   []string      `json:"resultServices"`
	RelevantFound    bool          `json:"relevantFound"`
	TopRelevantRank  int           `json:"topRelevantRank"` // 1-based, 0 when no relevant result
	Latency          time.Duration `json:"latency"`
	Error            string        `json:"error,omitempty"`
}

// Report aggregates the evaluation run.
type Report struct {
	RunAt       time.Time     `json:"runAt"`
	TopK        int           `json:"topK"`
	Total       int           `json:"total"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Precision   float64       `json:"precision"`
	MRR         float64       `json:"mrr"`
	MeanLatency time.Duration `json:"meanLatency"`
	Queries     []QueryResult `json:"queries"`
}

// Harness runs the evaluation set against a search service.
type Harness struct {
	search  docdex.SearchService
	queries []Query
	topK    int
	now     func() time.Time
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithQueries replaces the built-in query set.
func WithQueries(queries []Query) HarnessOption {
	return func(h *Harness) {
		h.queries = queries
	}
}

// WithTopK sets the number of results retrieved per query.
func WithTopK(topK int) HarnessOption {
	return func(h *Harness) {
		h.topK = topK
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) HarnessOption {
	return func(h *Harness) {
		h.now = now
	}
}

// NewHarness creates a harness over search.
func NewHarness(search docdex.SearchService, opts ...HarnessOption) *Harness {
	h := &Harness{
		search:  search,
		queries: DefaultQueries(),
		topK:    DefaultTopK,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run evaluates the query set. A non-empty only restricts the run to the
// named query. When more than half of the queries fail, Run returns the
// report along with a non-nil error so callers can exit non-zero.
func (h *Harness) Run(ctx context.Context, only string) (*Report, error) {
	queries := h.queries
	if only != "" {
		queries = nil
		for _, q := range h.queries {
			if q.Name == only {
				queries = []Query{q}
				break
			}
		}
		if queries == nil {
			return nil, docdex.Errorf(docdex.ENOTFOUND, "no evaluation query named %q", only)
		}
	}

	report := &Report{
		RunAt: h.now(),
		TopK:  h.topK,
		Total: len(queries),
	}

	var totalLatency time.Duration
	var reciprocalSum float64
	for _, q := range queries {
		result := h.runQuery(ctx, q)
		report.Queries = append(report.Queries, result)
		totalLatency += result.Latency
		if result.RelevantFound {
			report.Passed++
			reciprocalSum += 1 / float64(result.TopRelevantRank)
		} else {
			report.Failed++
		}
	}

	if report.Total > 0 {
		report.Precision = float64(report.Passed) / float64(report.Total)
		report.MRR = reciprocalSum / float64(report.Total)
		report.MeanLatency = totalLatency / time.Duration(report.Total)
	}

	if report.Failed*2 > report.Total {
		return report, docdex.Errorf(docdex.EINTERNAL, "evaluation failed: %d of %d queries missed their expected services",
			report.Failed, report.Total)
	}
	return report, nil
}

func (h *Harness) runQuery(ctx context.Context, q Query) QueryResult {
	result := QueryResult{
		Name:             q.Name,
		Query:            q.Text,
		ExpectedServices: q.ExpectedServices,
	}

	begin := time.Now()
	matches, err := h.search.Search(ctx, q.Text, docdex.SearchOptions{TopK: h.topK})
	result.Latency = time.Since(begin)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	for rank, match := range matches {
		result.ResultServices = append(result.ResultServices, match.Chunk.Service)
		if result.RelevantFound {
			continue
		}
		if relevant(match.Chunk.Service, q.ExpectedServices) {
			result.RelevantFound = true
			result.TopRelevantRank = rank + 1
		}
	}
	return result
}

// relevant reports whether a result service matches any expected service by
// case-insensitive substring.
func relevant(service string, expected []string) bool {
	service = strings.ToLower(service)
	for _, e := range expected {
		if strings.Contains(service, strings.ToLower(e)) {
			return true
		}
	}
	return false
}
