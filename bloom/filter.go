// Package bloom provides markup fragment deduplication using Bloom filters.
package bloom

import (
	"encoding/binary"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter remembers 64-bit fragment fingerprints. It is safe for concurrent use.
type Filter struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected fingerprints
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records fp.
func (f *Filter) Add(fp uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.f.Add(key(fp))
}

// Test reports whether fp might have been recorded.
// False positives are possible; false negatives are not.
func (f *Filter) Test(fp uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.Test(key(fp))
}

// EstimatedCount returns the approximate number of fingerprints recorded.
func (f *Filter) EstimatedCount() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint(f.f.ApproximatedSize())
}

func key(fp uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], fp)
	return b[:]
}
