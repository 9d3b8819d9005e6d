// Package hash provides the strong mixing functions and weak item hashes used
// by the cuckoo filter. Any Fn with a near-uniform output distribution works;
// the filter only requires determinism.
package hash

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/fasthash/fnv1a"
	"github.com/zeebo/xxh3"
)

// Fn mixes a 64-bit value into a pseudorandom 64-bit value.
type Fn func(uint64) uint64

// MultiplyShift is a two-independent multiply-shift universal hash with a
// 128-bit multiplier and addend. See Dietzfelbinger, "Universal hashing and
// k-wise independent random variables via integer arithmetic without primes".
type MultiplyShift struct {
	mulHi, mulLo uint64
	addHi, addLo uint64
}

// NewMultiplyShift draws the multiplier and addend from crypto/rand.
func NewMultiplyShift() MultiplyShift {
	var b [32]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("hash: reading crypto/rand: %v", err))
	}
	return MultiplyShift{
		mulHi: binary.LittleEndian.Uint64(b[0:8]),
		mulLo: binary.LittleEndian.Uint64(b[8:16]),
		addHi: binary.LittleEndian.Uint64(b[16:24]),
		addLo: binary.LittleEndian.Uint64(b[24:32]),
	}
}

// NewMultiplyShiftFrom expands seed into the hash state deterministically,
// for reproducible filters in tests.
func NewMultiplyShiftFrom(seed uint64) MultiplyShift {
	return MultiplyShift{
		mulHi: splitmix64(&seed),
		mulLo: splitmix64(&seed),
		addHi: splitmix64(&seed),
		addLo: splitmix64(&seed),
	}
}

// Hash returns the high 64 bits of add + multiply * v, computed in 128-bit
// arithmetic.
func (m MultiplyShift) Hash(v uint64) uint64 {
	hi, lo := bits.Mul64(m.mulLo, v)
	hi += m.mulHi * v
	_, carry := bits.Add64(lo, m.addLo, 0)
	return hi + m.addHi + carry
}

func splitmix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// XXHash mixes v through xxhash of its little-endian bytes.
func XXHash(v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return xxhash.Sum64(b[:])
}

// XXH3 mixes v through xxh3 of its little-endian bytes.
func XXH3(v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return xxh3.Hash(b[:])
}

// FNV1a mixes v through 64-bit FNV-1a.
func FNV1a(v uint64) uint64 {
	return fnv1a.HashUint64(v)
}

// The weak hashes below normalize application items to the 64-bit value the
// filter derives from. They don't need to be uniform, only deterministic;
// the filter's strong hashes restore uniformity. Uint64 being the identity
// matches what the filter expects from integer keys.

func Uint64(v uint64) uint64 {
	return v
}

func String(s string) uint64 {
	return xxh3.HashString(s)
}

func Bytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}
