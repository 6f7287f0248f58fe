package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/docdex/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.Test("https://docs.example.com/ecs/overview"))

	f.Add("https://docs.example.com/ecs/overview")

	assert.True(t, f.Test("https://docs.example.com/ecs/overview"))
	assert.False(t, f.Test("https://docs.example.com/obs/overview"))
}

func TestFilter_TestAndAdd(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	url := "https://docs.example.com/ecs/overview"

	assert.False(t, f.TestAndAdd(url), "first call should report unseen")
	assert.True(t, f.TestAndAdd(url), "second call should report seen")
	assert.True(t, f.Test(url))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.Equal(t, uint(0), f.EstimatedCount())

	f.Add("https://docs.example.com/ecs/overview")
	f.Add("https://docs.example.com/obs/overview")
	f.Add("https://docs.example.com/vpc/overview")

	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_AddIsIdempotent(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	url := "https://docs.example.com/ecs/overview"

	f.Add(url)
	countAfterFirst := f.EstimatedCount()

	f.Add(url)
	f.Add(url)
	f.Add(url)

	assert.Equal(t, countAfterFirst, f.EstimatedCount())
	assert.True(t, f.Test(url))
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems   = 10000
		fpRate     = 0.01
		testProbes = 10000
	)

	f := bloom.NewFilter(numItems, fpRate)

	for i := range numItems {
		f.Add(fmt.Sprintf("https://docs.example.com/added/%d", i))
	}

	falsePositives := 0
	for i := range testProbes {
		url := fmt.Sprintf("https://docs.example.com/notadded/%d", i)
		if f.Test(url) {
			falsePositives++
		}
	}

	// Allow up to 2% to account for statistical variance around the
	// configured 1% rate.
	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}
