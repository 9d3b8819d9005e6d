package cuculiform

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/raulk/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kit-dsn/cuculiform/hash"
)

func TestStatsCounters(t *testing.T) {
	filter, err := New[uint64](1024, hash.Uint64, testOptions())
	require.NoError(t, err)

	for i := uint64(0); i < 10; i++ {
		require.True(t, filter.Insert(i))
	}
	filter.Contains(1)
	filter.Contains(1 << 40) // miss, with overwhelming probability
	filter.Erase(2)

	s := filter.Stats()
	assert.EqualValues(t, 10, s.Inserts.Load())
	assert.EqualValues(t, 0, s.FailedInserts.Load())
	assert.EqualValues(t, 2, s.Lookups.Load())
	assert.EqualValues(t, 1, s.Hits.Load())
	assert.EqualValues(t, 1, s.Erases.Load())
}

func TestPublishStats(t *testing.T) {
	opts := testOptions().WithName("publish-test")
	filter, err := New[uint64](1024, hash.Uint64, opts)
	require.NoError(t, err)

	for i := uint64(0); i < 5; i++ {
		require.True(t, filter.Insert(i))
	}
	filter.publishStats()

	assert.Equal(t, 5.0, testutil.ToFloat64(stats.WithLabelValues("inserts", "publish-test")))
	assert.Equal(t, 5.0, testutil.ToFloat64(stats.WithLabelValues("size", "publish-test")))
	assert.Equal(t, filter.LoadFactor(), testutil.ToFloat64(stats.WithLabelValues("load_factor", "publish-test")))
}

func TestStatsReporter(t *testing.T) {
	opts := testOptions().WithName("reporter-test")
	filter, err := New[uint64](1024, hash.Uint64, opts)
	require.NoError(t, err)
	require.True(t, filter.Insert(1))

	mock := clock.NewMock()
	go filter.reportStats(mock)

	assert.Eventually(t, func() bool {
		mock.Add(statsReportInterval)
		return testutil.ToFloat64(stats.WithLabelValues("inserts", "reporter-test")) >= 1
	}, 2*time.Second, 10*time.Millisecond)
}
