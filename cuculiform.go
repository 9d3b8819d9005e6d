/*
Package cuculiform implements a cuckoo filter: an approximate membership
structure that, unlike a Bloom filter, supports deletion. It stores short
fingerprints of items in a single flat byte buffer partitioned into
fixed-width buckets of four slots each.

Every item is first reduced to a 64-bit weak hash by a caller-supplied
function, then mixed through two pluggable strong hashes to produce a
bucket index and a fingerprint. Each fingerprint has exactly two candidate
buckets, related by XORing the index with the masked hash of the
fingerprint itself. Because that relation is an involution, an evicted
fingerprint can always be moved to its other bucket without knowing the
original item (partial-key cuckoo hashing).

A false return from Insert means the relocation budget ran out. The filter
stays internally consistent, but the fingerprint evicted on the final swap
is dropped, so one previously-stored item may have become unrepresented.
Callers that cannot tolerate that should treat false as a signal to
rebuild with a larger capacity.

The filter is not safe for concurrent mutation; callers sharing one across
goroutines must serialize access to the whole filter.
*/
package cuculiform

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"unsafe"

	"github.com/raulk/clock"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/kit-dsn/cuculiform/hash"
	"github.com/kit-dsn/cuculiform/lib/utils/math"
)

// bucketSize is the number of fingerprint slots per bucket.
const bucketSize = 4

type Filter[T any] struct {
	// data is the only backing storage: bucketCount * bucketSize * fpSize
	// bytes, zero-initialized. Buckets are views into it.
	data           []byte
	size           atomic.Uint64
	capacity       uint
	mask           uint // bucketCount - 1, bucketCount is a power of two
	fpSize         int
	maxRelocations int

	weakHash        func(T) uint64
	indexHash       hash.Fn
	fingerprintHash hash.Fn

	// rng picks the first candidate bucket and eviction slots. It is
	// per-instance state so that seeded filters behave reproducibly.
	rng *rand.Rand

	name  string
	stats Stats
}

// New returns a filter sized for capacity items with fingerprints of
// opts.FingerprintSize bytes. weakHash normalizes items to 64-bit hashes; it
// only needs to be deterministic, not uniform (the strong hashes restore
// uniformity). The bucket count is rounded up to the next power of two, so
// the filter may hold somewhat more than capacity fingerprints.
func New[T any](capacity uint, weakHash func(T) uint64, opts Options) (*Filter[T], error) {
	if capacity == 0 {
		return nil, fmt.Errorf("capacity must be positive")
	}
	if opts.FingerprintSize < minFingerprintSize || opts.FingerprintSize > maxFingerprintSize {
		return nil, fmt.Errorf("fingerprint size must be between %d and %d bytes, got %d",
			minFingerprintSize, maxFingerprintSize, opts.FingerprintSize)
	}
	if opts.MaxRelocations < 0 {
		return nil, fmt.Errorf("max relocations can not be negative, got %d", opts.MaxRelocations)
	}
	if weakHash == nil {
		return nil, fmt.Errorf("weak hash function can not be nil")
	}
	if opts.IndexHash == nil || opts.FingerprintHash == nil {
		return nil, fmt.Errorf("index and fingerprint hash functions can not be nil")
	}
	seed := opts.Seed
	if seed == 0 {
		var b [8]byte
		if _, err := crand.Read(b[:]); err != nil {
			return nil, fmt.Errorf("seeding eviction rng: %w", err)
		}
		seed = int64(binary.LittleEndian.Uint64(b[:]))
	}
	bucketCount := math.NextPowerOf2(uint64(capacity) / bucketSize)
	f := &Filter[T]{
		data:            make([]byte, uint(bucketCount)*bucketSize*uint(opts.FingerprintSize)),
		capacity:        capacity,
		mask:            uint(bucketCount - 1),
		fpSize:          opts.FingerprintSize,
		maxRelocations:  opts.MaxRelocations,
		weakHash:        weakHash,
		indexHash:       opts.IndexHash,
		fingerprintHash: opts.FingerprintHash,
		rng:             rand.New(rand.NewSource(seed)),
		name:            opts.Name,
	}
	if opts.ReportStats {
		go f.reportStats(clock.New())
	}
	return f, nil
}

// Insert adds item to the filter. Returns false if the relocation cascade was
// exhausted; see the package comment for what that implies.
func (f *Filter[T]) Insert(item T) bool {
	f.stats.Inserts.Inc()
	i1, i2, fp := f.derive(f.weakHash(item))
	target := i1
	if f.rng.Intn(2) == 1 {
		target = i2
	}
	if f.bucket(target).insert(fp) {
		f.size.Inc()
		return true
	}
	return f.relocate(target, fp)
}

// relocate kicks fingerprints between their candidate buckets until one finds
// an empty slot or the step budget runs out. The chain starts at the other
// candidate of the bucket that was already found full; each failed step swaps
// the carried fingerprint into a random slot and carries on with the evictee.
func (f *Filter[T]) relocate(target uint, fp fingerprint) bool {
	i := f.altIndex(target, fp)
	for n := 0; n < f.maxRelocations; n++ {
		if f.bucket(i).insert(fp) {
			f.size.Inc()
			return true
		}
		f.stats.Relocations.Inc()
		fp = f.bucket(i).swap(fp, f.rng.Intn(bucketSize))
		i = f.altIndex(i, fp)
	}
	// The fingerprint evicted on the last swap is dropped here.
	f.stats.FailedInserts.Inc()
	zap.L().Warn("cuckoo filter relocation budget exhausted",
		zap.String("name", f.name),
		zap.Int("max_relocations", f.maxRelocations),
		zap.Uint64("size", f.size.Load()),
		zap.Float64("load_factor", f.LoadFactor()))
	return false
}

// Contains reports whether item is in the filter. False positives occur at a
// rate bounded by the fingerprint width and bucket size; false negatives only
// happen after some earlier Insert returned false.
func (f *Filter[T]) Contains(item T) bool {
	f.stats.Lookups.Inc()
	i1, i2, fp := f.derive(f.weakHash(item))
	if f.bucket(i1).contains(fp) || f.bucket(i2).contains(fp) {
		f.stats.Hits.Inc()
		return true
	}
	return false
}

// Erase removes at most one stored occurrence of item and reports whether one
// was found. Erasing an item that was never inserted can drop another item's
// colliding fingerprint, so callers should only erase items they previously
// inserted.
func (f *Filter[T]) Erase(item T) bool {
	i1, i2, fp := f.derive(f.weakHash(item))
	if f.bucket(i1).erase(fp) || f.bucket(i2).erase(fp) {
		f.size.Dec()
		f.stats.Erases.Inc()
		return true
	}
	return false
}

// Clear resets the filter to empty without reallocating the buffer.
func (f *Filter[T]) Clear() {
	for i := uint(0); i <= f.mask; i++ {
		f.bucket(i).clear()
	}
	f.size.Store(0)
}

// Size returns the number of fingerprints currently stored.
func (f *Filter[T]) Size() uint64 {
	return f.size.Load()
}

// Capacity returns the capacity the filter was constructed with. The actual
// slot count is BucketCount() * 4 and may be larger.
func (f *Filter[T]) Capacity() uint {
	return f.capacity
}

// BucketCount returns the number of buckets. Always a power of two.
func (f *Filter[T]) BucketCount() uint {
	return f.mask + 1
}

// LoadFactor returns the fraction of slots that are occupied.
func (f *Filter[T]) LoadFactor() float64 {
	return float64(f.size.Load()) / float64(f.BucketCount()*bucketSize)
}

// MemoryUsage returns the bytes owned by the filter: the backing buffer plus
// the struct itself. Diagnostic only.
func (f *Filter[T]) MemoryUsage() int {
	return len(f.data) + int(unsafe.Sizeof(*f))
}

// Stats returns the filter's operation counters.
func (f *Filter[T]) Stats() *Stats {
	return &f.stats
}

// bucket returns a view over bucket i's slots in the backing buffer.
func (f *Filter[T]) bucket(i uint) bucket {
	w := bucketSize * f.fpSize
	off := int(i) * w
	return bucket{slots: f.data[off : off+w], width: f.fpSize}
}
