// Package bloom provides probabilistic URL deduplication for crawl
// frontiers.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter tracks which page URLs have been seen. False positives are possible
// at the configured rate; false negatives are not, so a seen page never
// reports unseen.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected URLs with the given false
// positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add marks a URL as seen.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Test reports whether the URL might have been seen.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// TestAndAdd marks a URL as seen and reports whether it had already been
// seen before this call.
func (f *Filter) TestAndAdd(url string) bool {
	return f.f.TestAndAddString(url)
}

// EstimatedCount returns the approximate number of URLs in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
