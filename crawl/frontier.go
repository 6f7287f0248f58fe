package crawl

import (
	"container/heap"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/bloom"
)

// Frontier queues discovered pages for fetching. Pages come out shallowest
// navigation level first; within a level, discovery order is preserved.
// Canonical URLs deduplicate pushes, so a page discovered through two
// navigation paths is fetched once.
//
// Frontier is not safe for concurrent use; discovery is single-threaded.
type Frontier struct {
	q    pageQueue
	seen *bloom.Filter
	next int
}

// NewFrontier creates a frontier sized for the expected number of pages.
func NewFrontier(expectedPages uint) *Frontier {
	if expectedPages == 0 {
		expectedPages = 1000
	}
	return &Frontier{seen: bloom.NewFilter(expectedPages, 0.001)}
}

// Push queues a page. Returns false if the page's canonical URL has already
// been seen.
func (f *Frontier) Push(page docdex.DocumentPage) bool {
	url := docdex.CanonicalURL(page.URL)
	if f.seen.TestAndAdd(url) {
		return false
	}
	heap.Push(&f.q, frontierItem{page: page, seq: f.next})
	f.next++
	return true
}

// Pop returns the next page by priority. Returns false when empty.
func (f *Frontier) Pop() (docdex.DocumentPage, bool) {
	if f.q.Len() == 0 {
		return docdex.DocumentPage{}, false
	}
	item := heap.Pop(&f.q).(frontierItem)
	return item.page, true
}

// Drain pops all queued pages in priority order.
func (f *Frontier) Drain() []docdex.DocumentPage {
	pages := make([]docdex.DocumentPage, 0, f.q.Len())
	for {
		page, ok := f.Pop()
		if !ok {
			return pages
		}
		pages = append(pages, page)
	}
}

// Len returns the number of queued pages.
func (f *Frontier) Len() int {
	return f.q.Len()
}

// Seen reports whether a URL has been pushed before, modulo the dedup
// filter's false positive rate.
func (f *Frontier) Seen(url string) bool {
	return f.seen.Test(docdex.CanonicalURL(url))
}

type frontierItem struct {
	page docdex.DocumentPage
	seq  int
}

type pageQueue []frontierItem

func (q pageQueue) Len() int { return len(q) }

func (q pageQueue) Less(i, j int) bool {
	if q[i].page.Level != q[j].page.Level {
		return q[i].page.Level < q[j].page.Level
	}
	return q[i].seq < q[j].seq
}

func (q pageQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *pageQueue) Push(x any) {
	*q = append(*q, x.(frontierItem))
}

func (q *pageQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
