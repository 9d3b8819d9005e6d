package math

// NextPowerOf2 returns the smallest power of two >= n. NextPowerOf2(0) is 1.
func NextPowerOf2(n uint64) uint64 {
	if IsPowerOf2(n) {
		return n
	}
	p := uint64(1)
	for p < n {
		p = p << 1
	}
	return p
}

func IsPowerOf2(n uint64) bool {
	return n > 0 && (n&(n-1) == 0)
}
