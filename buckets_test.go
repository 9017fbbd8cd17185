package tally

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearValueBuckets(t *testing.T) {
	buckets, err := LinearValueBuckets(10, 5, 4)
	require.NoError(t, err)
	assert.Equal(t, ValueBuckets{10, 15, 20, 25}, buckets)

	_, err = LinearValueBuckets(10, 5, 0)
	assert.Error(t, err)
}

func TestLinearDurationBuckets(t *testing.T) {
	buckets, err := LinearDurationBuckets(time.Second, time.Second, 3)
	require.NoError(t, err)
	assert.Equal(t, DurationBuckets{time.Second, 2 * time.Second, 3 * time.Second}, buckets)

	_, err = LinearDurationBuckets(time.Second, time.Second, -1)
	assert.Error(t, err)
}

func TestExponentialValueBuckets(t *testing.T) {
	buckets, err := ExponentialValueBuckets(1, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, ValueBuckets{1, 2, 4, 8, 16}, buckets)
}

func TestExponentialValueBucketsErrors(t *testing.T) {
	_, err := ExponentialValueBuckets(1, 2, 0)
	assert.Error(t, err)

	_, err = ExponentialValueBuckets(0, 2, 3)
	assert.Error(t, err)

	_, err = ExponentialValueBuckets(1, 1, 3)
	assert.Error(t, err)
}

func TestExponentialDurationBuckets(t *testing.T) {
	buckets, err := ExponentialDurationBuckets(time.Second, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, DurationBuckets{time.Second, 2 * time.Second, 4 * time.Second}, buckets)
}

func TestMustMakeBucketsPanics(t *testing.T) {
	assert.Panics(t, func() { MustMakeLinearValueBuckets(1, 1, 0) })
	assert.Panics(t, func() { MustMakeExponentialDurationBuckets(time.Second, 1, 3) })
	assert.NotPanics(t, func() { MustMakeLinearDurationBuckets(time.Second, time.Second, 2) })
	assert.NotPanics(t, func() { MustMakeExponentialValueBuckets(1, 2, 2) })
}

func TestBucketPairs(t *testing.T) {
	pairs := BucketPairs(ValueBuckets{10, 20, 30})
	require.Len(t, pairs, 4)

	assert.Equal(t, -math.MaxFloat64, pairs[0].LowerBoundValue())
	assert.Equal(t, float64(10), pairs[0].UpperBoundValue())
	assert.Equal(t, float64(10), pairs[1].LowerBoundValue())
	assert.Equal(t, float64(20), pairs[1].UpperBoundValue())
	assert.Equal(t, float64(30), pairs[3].LowerBoundValue())
	assert.Equal(t, math.MaxFloat64, pairs[3].UpperBoundValue())
}

func TestBucketPairsSortsInput(t *testing.T) {
	pairs := BucketPairs(ValueBuckets{30, 10, 20})
	require.Len(t, pairs, 4)
	assert.Equal(t, float64(10), pairs[0].UpperBoundValue())
	assert.Equal(t, float64(20), pairs[1].UpperBoundValue())
	assert.Equal(t, float64(30), pairs[2].UpperBoundValue())
}

func TestBucketPairsNilAndEmpty(t *testing.T) {
	for _, buckets := range []Buckets{nil, ValueBuckets{}, DurationBuckets{}} {
		pairs := BucketPairs(buckets)
		require.Len(t, pairs, 1)
		assert.Equal(t, -math.MaxFloat64, pairs[0].LowerBoundValue())
		assert.Equal(t, math.MaxFloat64, pairs[0].UpperBoundValue())
		assert.Equal(t, time.Duration(math.MinInt64), pairs[0].LowerBoundDuration())
		assert.Equal(t, time.Duration(math.MaxInt64), pairs[0].UpperBoundDuration())
	}
}

func TestBucketPairsDurations(t *testing.T) {
	pairs := BucketPairs(DurationBuckets{time.Second, time.Minute})
	require.Len(t, pairs, 3)
	assert.Equal(t, time.Second, pairs[0].UpperBoundDuration())
	assert.Equal(t, time.Second, pairs[1].LowerBoundDuration())
	assert.Equal(t, time.Minute, pairs[1].UpperBoundDuration())
	assert.Equal(t, time.Duration(math.MaxInt64), pairs[2].UpperBoundDuration())
}

func TestValueBucketsAsDurations(t *testing.T) {
	buckets := ValueBuckets{0.5, 2}
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 2 * time.Second}, buckets.AsDurations())
}

func TestDurationBucketsAsValues(t *testing.T) {
	buckets := DurationBuckets{500 * time.Millisecond, 2 * time.Second}
	assert.Equal(t, []float64{0.5, 2}, buckets.AsValues())
}

func TestBucketsEqual(t *testing.T) {
	assert.True(t, bucketsEqual(ValueBuckets{1, 2}, ValueBuckets{1, 2}))
	assert.False(t, bucketsEqual(ValueBuckets{1, 2}, ValueBuckets{1, 3}))
	assert.False(t, bucketsEqual(ValueBuckets{1, 2}, ValueBuckets{1}))
	assert.False(t, bucketsEqual(ValueBuckets{1, 2}, DurationBuckets{1, 2}))
	assert.True(t, bucketsEqual(DurationBuckets{time.Second}, DurationBuckets{time.Second}))
	assert.True(t, bucketsEqual(nil, nil))
	assert.False(t, bucketsEqual(nil, ValueBuckets{1}))
}

func TestBucketCacheSharesStorage(t *testing.T) {
	cache := newBucketCache()

	a := cache.Get(ValueBuckets{1, 2, 3})
	b := cache.Get(ValueBuckets{1, 2, 3})
	require.Len(t, a.pairs, 4)

	// same derived layout is shared, not re-derived
	assert.Same(t, &a.pairs[0], &b.pairs[0])

	c := cache.Get(ValueBuckets{4, 5})
	assert.Len(t, c.pairs, 3)
}

func TestBucketsIdentityDistinguishes(t *testing.T) {
	assert.NotEqual(t,
		bucketsIdentity(ValueBuckets{1, 2, 3}),
		bucketsIdentity(ValueBuckets{1, 2, 4}),
	)
	assert.Equal(t,
		bucketsIdentity(DurationBuckets{time.Second}),
		bucketsIdentity(DurationBuckets{time.Second}),
	)
	assert.Zero(t, bucketsIdentity(nil))
}
