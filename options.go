package cuculiform

import "github.com/kit-dsn/cuculiform/hash"

const (
	minFingerprintSize = 1
	maxFingerprintSize = 4

	// defaultMaxRelocations bounds the eviction cascade per insert. 500 steps
	// is enough to reach ~95% load factor before inserts start failing.
	defaultMaxRelocations = 500
)

// Options configure a filter at construction. The zero value is not usable;
// start from DefaultOptions.
type Options struct {
	// FingerprintSize is the stored fingerprint width in bytes (1 to 4).
	// Smaller fingerprints use less memory and raise the false-positive rate.
	FingerprintSize int

	// MaxRelocations bounds the eviction cascade per insert. Larger values
	// push inserts through at higher load factors at the cost of worst-case
	// insert latency.
	MaxRelocations int

	// IndexHash mixes weak hashes into bucket indices and drives the
	// alternate-index computation. FingerprintHash derives fingerprints.
	// They may be the same function; both must be near-uniform.
	IndexHash       hash.Fn
	FingerprintHash hash.Fn

	// Seed seeds the eviction rng, making bucket and slot choices
	// reproducible. Zero means seed from crypto/rand.
	Seed int64

	// Name labels this filter in exported metrics. ReportStats starts a
	// background goroutine publishing the filter's counters to prometheus.
	Name        string
	ReportStats bool
}

func DefaultOptions() Options {
	ms := hash.NewMultiplyShift()
	return Options{
		FingerprintSize: 2,
		MaxRelocations:  defaultMaxRelocations,
		IndexHash:       ms.Hash,
		FingerprintHash: ms.Hash,
	}
}

func (o Options) WithFingerprintSize(bytes int) Options {
	o.FingerprintSize = bytes
	return o
}

func (o Options) WithMaxRelocations(n int) Options {
	o.MaxRelocations = n
	return o
}

func (o Options) WithHashes(index, fingerprint hash.Fn) Options {
	o.IndexHash = index
	o.FingerprintHash = fingerprint
	return o
}

func (o Options) WithSeed(seed int64) Options {
	o.Seed = seed
	return o
}

func (o Options) WithName(name string) Options {
	o.Name = name
	return o
}

func (o Options) WithReportStats(report bool) Options {
	o.ReportStats = report
	return o
}
