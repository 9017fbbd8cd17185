package tally

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/twmb/murmur3"
)

var (
	errBucketsCountNeedsGreaterThanZero = errors.New("n needs to be > 0")
	errBucketsStartNeedsGreaterThanZero = errors.New("start needs to be > 0")
	errBucketsFactorNeedsGreaterThanOne = errors.New("factor needs to be > 1")
)

// ValueBuckets is a set of float64 bucket boundaries implementing Buckets.
type ValueBuckets []float64

func (v ValueBuckets) Len() int { return len(v) }
func (v ValueBuckets) Swap(i, j int) { v[i], v[j] = v[j], v[i] }
func (v ValueBuckets) Less(i, j int) bool { return v[i] < v[j] }

func (v ValueBuckets) String() string {
	values := make([]string, len(v))
	for i := range v {
		values[i] = fmt.Sprintf("%f", v[i])
	}
	return fmt.Sprint(values)
}

// AsValues implements Buckets.
func (v ValueBuckets) AsValues() []float64 {
	return v
}

// AsDurations implements Buckets, interpreting the values as seconds.
func (v ValueBuckets) AsDurations() []time.Duration {
	durations := make([]time.Duration, len(v))
	for i := range v {
		durations[i] = time.Duration(v[i] * float64(time.Second))
	}
	return durations
}

// DurationBuckets is a set of duration bucket boundaries implementing
// Buckets.
type DurationBuckets []time.Duration

func (v DurationBuckets) Len() int { return len(v) }
func (v DurationBuckets) Swap(i, j int) { v[i], v[j] = v[j], v[i] }
func (v DurationBuckets) Less(i, j int) bool { return v[i] < v[j] }

func (v DurationBuckets) String() string {
	values := make([]string, len(v))
	for i := range v {
		values[i] = v[i].String()
	}
	return fmt.Sprintf("%v", values)
}

// AsValues implements Buckets, expressing the durations in seconds.
func (v DurationBuckets) AsValues() []float64 {
	values := make([]float64, len(v))
	for i := range v {
		values[i] = float64(v[i]) / float64(time.Second)
	}
	return values
}

// AsDurations implements Buckets.
func (v DurationBuckets) AsDurations() []time.Duration {
	return v
}

func bucketsEqual(x, y Buckets) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	switch b1 := x.(type) {
	case DurationBuckets:
		b2, ok := y.(DurationBuckets)
		if !ok || len(b1) != len(b2) {
			return false
		}
		for i := range b1 {
			if b1[i] != b2[i] {
				return false
			}
		}
	case ValueBuckets:
		b2, ok := y.(ValueBuckets)
		if !ok || len(b1) != len(b2) {
			return false
		}
		for i := range b1 {
			if b1[i] != b2[i] {
				return false
			}
		}
	}
	return true
}

type bucketPair struct {
	lowerBoundValue    float64
	upperBoundValue    float64
	lowerBoundDuration time.Duration
	upperBoundDuration time.Duration
}

func (p bucketPair) LowerBoundValue() float64 { return p.lowerBoundValue }
func (p bucketPair) UpperBoundValue() float64 { return p.upperBoundValue }
func (p bucketPair) LowerBoundDuration() time.Duration { return p.lowerBoundDuration }
func (p bucketPair) UpperBoundDuration() time.Duration { return p.upperBoundDuration }

var _singleBucket = bucketPair{
	lowerBoundValue:    -math.MaxFloat64,
	upperBoundValue:    math.MaxFloat64,
	lowerBoundDuration: time.Duration(math.MinInt64),
	upperBoundDuration: time.Duration(math.MaxInt64),
}

// BucketPairs derives lower/upper bound pairs from a set of bucket
// boundaries. The derived set always has one more bucket than there are
// boundaries: an extra pair at each end extends to -inf and +inf, so every
// sample lands in some bucket. A nil or empty Buckets yields the single
// catch-all bucket.
func BucketPairs(buckets Buckets) []BucketPair {
	if buckets == nil || buckets.Len() == 0 {
		return []BucketPair{_singleBucket}
	}

	values := make([]float64, len(buckets.AsValues()))
	copy(values, buckets.AsValues())
	sort.Float64s(values)

	durations := make([]time.Duration, len(buckets.AsDurations()))
	copy(durations, buckets.AsDurations())
	sort.Sort(DurationBuckets(durations))

	pairs := make([]BucketPair, 0, len(values)+1)
	pairs = append(pairs, bucketPair{
		lowerBoundValue:    _singleBucket.lowerBoundValue,
		upperBoundValue:    values[0],
		lowerBoundDuration: _singleBucket.lowerBoundDuration,
		upperBoundDuration: durations[0],
	})

	for i := 1; i < len(values); i++ {
		pairs = append(pairs, bucketPair{
			lowerBoundValue:    values[i-1],
			upperBoundValue:    values[i],
			lowerBoundDuration: durations[i-1],
			upperBoundDuration: durations[i],
		})
	}

	pairs = append(pairs, bucketPair{
		lowerBoundValue:    values[len(values)-1],
		upperBoundValue:    _singleBucket.upperBoundValue,
		lowerBoundDuration: durations[len(durations)-1],
		upperBoundDuration: _singleBucket.upperBoundDuration,
	})

	return pairs
}

// LinearValueBuckets creates n evenly spaced value buckets starting at
// start with the given width.
func LinearValueBuckets(start, width float64, n int) (ValueBuckets, error) {
	if n <= 0 {
		return nil, errBucketsCountNeedsGreaterThanZero
	}
	buckets := make([]float64, n)
	for i := range buckets {
		buckets[i] = start + (float64(i) * width)
	}
	return buckets, nil
}

// MustMakeLinearValueBuckets creates linear value buckets or panics.
func MustMakeLinearValueBuckets(start, width float64, n int) ValueBuckets {
	buckets, err := LinearValueBuckets(start, width, n)
	if err != nil {
		panic(err)
	}
	return buckets
}

// LinearDurationBuckets creates n evenly spaced duration buckets starting
// at start with the given width.
func LinearDurationBuckets(start, width time.Duration, n int) (DurationBuckets, error) {
	if n <= 0 {
		return nil, errBucketsCountNeedsGreaterThanZero
	}
	buckets := make([]time.Duration, n)
	for i := range buckets {
		buckets[i] = start + (time.Duration(i) * width)
	}
	return buckets, nil
}

// MustMakeLinearDurationBuckets creates linear duration buckets or panics.
func MustMakeLinearDurationBuckets(start, width time.Duration, n int) DurationBuckets {
	buckets, err := LinearDurationBuckets(start, width, n)
	if err != nil {
		panic(err)
	}
	return buckets
}

// ExponentialValueBuckets creates n value buckets starting at start, each
// boundary the previous multiplied by factor.
func ExponentialValueBuckets(start, factor float64, n int) (ValueBuckets, error) {
	if n <= 0 {
		return nil, errBucketsCountNeedsGreaterThanZero
	}
	if start <= 0 {
		return nil, errBucketsStartNeedsGreaterThanZero
	}
	if factor <= 1 {
		return nil, errBucketsFactorNeedsGreaterThanOne
	}
	buckets := make([]float64, n)
	curr := start
	for i := range buckets {
		buckets[i] = curr
		curr *= factor
	}
	return buckets, nil
}

// MustMakeExponentialValueBuckets creates exponential value buckets or
// panics.
func MustMakeExponentialValueBuckets(start, factor float64, n int) ValueBuckets {
	buckets, err := ExponentialValueBuckets(start, factor, n)
	if err != nil {
		panic(err)
	}
	return buckets
}

// ExponentialDurationBuckets creates n duration buckets starting at start,
// each boundary the previous multiplied by factor.
func ExponentialDurationBuckets(start time.Duration, factor float64, n int) (DurationBuckets, error) {
	if n <= 0 {
		return nil, errBucketsCountNeedsGreaterThanZero
	}
	if start <= 0 {
		return nil, errBucketsStartNeedsGreaterThanZero
	}
	if factor <= 1 {
		return nil, errBucketsFactorNeedsGreaterThanOne
	}
	buckets := make([]time.Duration, n)
	curr := start
	for i := range buckets {
		buckets[i] = curr
		curr = time.Duration(float64(curr) * factor)
	}
	return buckets, nil
}

// MustMakeExponentialDurationBuckets creates exponential duration buckets
// or panics.
func MustMakeExponentialDurationBuckets(start time.Duration, factor float64, n int) DurationBuckets {
	buckets, err := ExponentialDurationBuckets(start, factor, n)
	if err != nil {
		panic(err)
	}
	return buckets
}

const (
	_bucketHashSeed uint64 = 23
	_bucketHashFold uint64 = 31
)

// bucketsIdentity hashes a bucket specification for use as a cache key.
// Collisions are tolerated: cache hits are re-validated with bucketsEqual.
func bucketsIdentity(buckets Buckets) uint64 {
	if buckets == nil || buckets.Len() == 0 {
		return 0
	}
	return _bucketHashSeed + murmur3.StringSum64(buckets.String())*_bucketHashFold
}

// bucketStorage is the derived per-specification bucket layout shared by
// all histograms allocated with equal boundaries.
type bucketStorage struct {
	buckets Buckets
	pairs   []BucketPair
}

func newBucketStorage(buckets Buckets) bucketStorage {
	return bucketStorage{
		buckets: buckets,
		pairs:   BucketPairs(buckets),
	}
}

// bucketCache shares derived bucket layouts across a scope tree so that
// repeated histogram allocations with equal boundaries do not re-derive
// pairs.
type bucketCache struct {
	mtx   sync.RWMutex
	cache map[uint64]bucketStorage
}

func newBucketCache() *bucketCache {
	return &bucketCache{cache: make(map[uint64]bucketStorage)}
}

func (c *bucketCache) Get(buckets Buckets) bucketStorage {
	id := bucketsIdentity(buckets)

	c.mtx.RLock()
	storage, ok := c.cache[id]
	c.mtx.RUnlock()

	if !ok {
		storage = newBucketStorage(buckets)
		c.mtx.Lock()
		c.cache[id] = storage
		c.mtx.Unlock()
		return storage
	}

	if !bucketsEqual(buckets, storage.buckets) {
		// hash collision, derive fresh without caching
		storage = newBucketStorage(buckets)
	}
	return storage
}
