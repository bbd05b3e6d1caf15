package authentication

import (
	"hash/fnv"
	"math"
	"sync"
)

// UsernameFilter is a bloom filter over registered usernames.
// MightContain never returns false for an added username.
type UsernameFilter struct {
	mu     sync.RWMutex
	words  []uint64
	size   uint64
	hashes uint64
}

func NewUsernameFilter(expected uint, falsePositiveRate float64) *UsernameFilter {
	if expected == 0 {
		expected = 1
	}

	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}

	n := float64(expected)
	size := uint64(math.Ceil(-n * math.Log(falsePositiveRate) / (math.Ln2 * math.Ln2)))
	hashes := max(uint64(math.Round(float64(size)/n*math.Ln2)), 1)

	return &UsernameFilter{
		words:  make([]uint64, (size+63)/64),
		size:   size,
		hashes: hashes,
	}
}

func (f *UsernameFilter) positions(username string) []uint64 {
	h1 := fnv.New64a()
	_, _ = h1.Write([]byte(username))
	a := h1.Sum64()

	h2 := fnv.New64()
	_, _ = h2.Write([]byte(username))
	b := h2.Sum64() | 1

	res := make([]uint64, f.hashes)
	for i := range f.hashes {
		res[i] = (a + i*b) % f.size
	}

	return res
}

func (f *UsernameFilter) Add(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, pos := range f.positions(username) {
		f.words[pos/64] |= 1 << (pos % 64)
	}
}

func (f *UsernameFilter) MightContain(username string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, pos := range f.positions(username) {
		if f.words[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}

	return true
}
