package cuculiform

import (
	"github.com/detailyang/fastrand-go"
	"go.uber.org/zap"
)

// fingerprint is the integer value of a stored fingerprint. Only the low
// fpSize*8 bits are ever set. Zero is reserved as the empty-slot sentinel.
type fingerprint uint32

const emptyFp fingerprint = 0

// Sample rate for the sentinel-remap debug log. Needs to be a power of 2.
const remapLogSampleRate = 1024

// loadFingerprint decodes the little-endian fingerprint stored in slot.
func loadFingerprint(slot []byte) fingerprint {
	var fp fingerprint
	for i := 0; i < len(slot); i++ {
		fp |= fingerprint(slot[i]) << (i * 8)
	}
	return fp
}

// storeFingerprint encodes fp little-endian into slot.
func storeFingerprint(slot []byte, fp fingerprint) {
	for i := 0; i < len(slot); i++ {
		slot[i] = byte(fp >> (i * 8))
	}
}

// derive computes the two candidate bucket indices and the fingerprint for a
// weak hash. The bucket mask is applied to the index here, before any XOR
// combination; deferring it would break the altIndex involution.
func (f *Filter[T]) derive(h uint64) (i1, i2 uint, fp fingerprint) {
	i1 = uint(f.indexHash(h)) & f.mask
	// Fingerprints keep the topmost bits of the hash.
	fp = fingerprint(f.fingerprintHash(h) >> (64 - uint(f.fpSize)*8))
	if fp == emptyFp {
		// Truncated to the reserved sentinel; remap to one. Costs a sliver of
		// extra collision probability, nothing more.
		fp = 1
		f.stats.SentinelRemaps.Inc()
		sentinelRemaps.WithLabelValues(f.name).Inc()
		if fastrand.FastRand()&(remapLogSampleRate-1) == 0 {
			zap.L().Debug("fingerprint collided with the empty sentinel, remapped to one",
				zap.String("name", f.name))
		}
	}
	i2 = f.altIndex(i1, fp)
	return i1, i2, fp
}

// altIndex returns the other candidate bucket for fp. It is an involution:
// altIndex(altIndex(i, fp), fp) == i, which is what lets relocation recompute
// an evicted fingerprint's other bucket without the original item.
func (f *Filter[T]) altIndex(i uint, fp fingerprint) uint {
	return i ^ (uint(f.indexHash(uint64(fp))) & f.mask)
}
