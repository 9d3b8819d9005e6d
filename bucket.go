package cuculiform

// bucket is a transient view over one bucket's slots inside the filter's
// backing buffer, analogous to a slice: it borrows bucketSize fixed-width
// slots and owns no memory. All behavior is a pure function of the backing
// bytes at call time.
type bucket struct {
	slots []byte // bucketSize * width bytes, borrowed from the filter
	width int    // fingerprint width in bytes
}

func (b bucket) slot(i int) []byte {
	return b.slots[i*b.width : (i+1)*b.width]
}

// insert copies fp into the first empty slot. Returns false without mutating
// anything if the bucket is full. Duplicate fingerprints are allowed.
func (b bucket) insert(fp fingerprint) bool {
	for i := 0; i < bucketSize; i++ {
		s := b.slot(i)
		if loadFingerprint(s) == emptyFp {
			storeFingerprint(s, fp)
			return true
		}
	}
	return false
}

// contains reports whether any slot holds fp.
func (b bucket) contains(fp fingerprint) bool {
	for i := 0; i < bucketSize; i++ {
		if loadFingerprint(b.slot(i)) == fp {
			return true
		}
	}
	return false
}

// erase clears the first slot holding fp. At most one occurrence is removed.
func (b bucket) erase(fp fingerprint) bool {
	for i := 0; i < bucketSize; i++ {
		s := b.slot(i)
		if loadFingerprint(s) == fp {
			storeFingerprint(s, emptyFp)
			return true
		}
	}
	return false
}

// swap unconditionally exchanges fp with the fingerprint at slot i and
// returns the previous occupant. It does not check occupancy; the relocation
// protocol only swaps into full buckets.
func (b bucket) swap(fp fingerprint, i int) fingerprint {
	s := b.slot(i)
	prev := loadFingerprint(s)
	storeFingerprint(s, fp)
	return prev
}

// clear overwrites every slot with the empty sentinel.
func (b bucket) clear() {
	for i := range b.slots {
		b.slots[i] = 0
	}
}
