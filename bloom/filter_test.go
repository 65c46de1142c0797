package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/adcrawl/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.Test("https://www.kijiji.ca/v-cars-trucks/toronto/civic/1700000001"))

	f.Add("https://www.kijiji.ca/v-cars-trucks/toronto/civic/1700000001")

	assert.True(t, f.Test("https://www.kijiji.ca/v-cars-trucks/toronto/civic/1700000001"))
	assert.False(t, f.Test("https://www.kijiji.ca/v-cars-trucks/toronto/civic/1700000002"))
}

func TestFilter_SameListingUnderDifferentSlug(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	f.Add("https://www.kijiji.ca/v-cars-trucks/toronto/2015-honda-civic/1700000001")

	assert.True(t, f.Test("https://www.kijiji.ca/v-cars-trucks/mississauga/honda-civic-lx/1700000001?src=featured"))
}

func TestFilter_TestAndAdd(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.TestAndAdd("https://example.com/v/1"))
	assert.True(t, f.TestAndAdd("https://example.com/v/1#gallery"))
	assert.False(t, f.TestAndAdd("https://example.com/v/2"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.Equal(t, uint(0), f.EstimatedCount())

	f.Add("https://example.com/v/1")
	f.Add("https://example.com/v/2")
	f.Add("https://example.com/v/3")

	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_AddIsIdempotent(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	link := "https://example.com/v/1"

	f.Add(link)
	countAfterFirst := f.EstimatedCount()

	f.Add(link)
	f.Add(link + "?page=2")
	f.Add(link + "#top")

	assert.Equal(t, countAfterFirst, f.EstimatedCount())
	assert.True(t, f.Test(link))
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
		f.Add(fmt.Sprintf("https://www.kijiji.ca/v-cars-trucks/canada/car/%d", 1700000000+i))
	}

	falsePositives := 0
	for i := range testProbes {
		link := fmt.Sprintf("https://www.kijiji.ca/v-cars-trucks/canada/car/%d", 1800000000+i)
		if f.Test(link) {
			falsePositives++
		}
	}

	// Allow up to 2% to account for statistical variance.
	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		link string
		want string
	}{
		{"listing id", "https://www.kijiji.ca/v-cars-trucks/toronto/civic/1700000001", "www.kijiji.ca/1700000001"},
		{"query and fragment dropped", "https://www.kijiji.ca/v-cars-trucks/toronto/civic/1700000001?a=b#c", "www.kijiji.ca/1700000001"},
		{"host case folded", "https://WWW.Kijiji.ca/v/1700000001/", "www.kijiji.ca/1700000001"},
		{"non-numeric path kept", "https://example.com/v/listing-1?x=1", "example.com/v/listing-1"},
		{"root path", "https://example.com", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, bloom.Key(tt.link))
		})
	}
}
