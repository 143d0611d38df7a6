package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/namefreezers/weather-etl/internal/weather/types"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// fakeRedis implements the two commands CachingFetcher uses.
type fakeRedis struct {
	redis.Cmdable
	data   map[string]string
	getErr error
	setErr error
	ttls   map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func strp(s string) *string { return &s }

func countingFetcher(calls *int, rec types.RawRecord, err error) Fetcher {
	return FetcherFunc(func(ctx context.Context, city string) (types.RawRecord, error) {
		*calls++
		return rec, err
	})
}

func TestCachingFetcher_MissThenHit(t *testing.T) {
	rdb := newFakeRedis()
	calls := 0
	want := types.RawRecord{Name: strp("Lahore"), Weather: []types.Condition{{Description: strp("clear sky")}}}
	cf := NewCachingFetcher(countingFetcher(&calls, want, nil), rdb, time.Minute, zap.NewNop())

	for i := 0; i < 2; i++ {
		got, err := cf.FetchCurrent(context.Background(), "Lahore")
		if err != nil {
			t.Fatalf("FetchCurrent() #%d unexpected error: %v", i, err)
		}
		if got.Name == nil || *got.Name != "Lahore" {
			t.Fatalf("FetchCurrent() #%d Name = %v", i, got.Name)
		}
	}
	if calls != 1 {
		t.Errorf("inner calls = %d, want 1", calls)
	}
	if ttl := rdb.ttls[cacheKey("lahore")]; ttl != time.Minute {
		t.Errorf("ttl = %s, want 1m", ttl)
	}
}

func TestCachingFetcher_InnerErrorNotCached(t *testing.T) {
	rdb := newFakeRedis()
	calls := 0
	boom := errors.New("boom")
	cf := NewCachingFetcher(countingFetcher(&calls, types.RawRecord{}, boom), rdb, time.Minute, zap.NewNop())

	if _, err := cf.FetchCurrent(context.Background(), "Karachi"); !errors.Is(err, boom) {
		t.Fatalf("FetchCurrent() error = %v, want %v", err, boom)
	}
	if len(rdb.data) != 0 {
		t.Errorf("cache holds %d entries after failure, want 0", len(rdb.data))
	}
}

func TestCachingFetcher_RedisDownFallsThrough(t *testing.T) {
	rdb := newFakeRedis()
	rdb.getErr = errors.New("connection refused")
	rdb.setErr = errors.New("connection refused")
	calls := 0
	cf := NewCachingFetcher(countingFetcher(&calls, types.RawRecord{Name: strp("Dubai")}, nil), rdb, time.Minute, zap.NewNop())

	got, err := cf.FetchCurrent(context.Background(), "Dubai")
	if err != nil {
		t.Fatalf("FetchCurrent() unexpected error: %v", err)
	}
	if got.Name == nil || *got.Name != "Dubai" {
		t.Errorf("Name = %v, want Dubai", got.Name)
	}
	if calls != 1 {
		t.Errorf("inner calls = %d, want 1", calls)
	}
}

func TestCachingFetcher_CorruptEntryRefetched(t *testing.T) {
	rdb := newFakeRedis()
	rdb.data[cacheKey("London")] = "{not json"
	calls := 0
	cf := NewCachingFetcher(countingFetcher(&calls, types.RawRecord{Name: strp("London")}, nil), rdb, time.Minute, zap.NewNop())

	if _, err := cf.FetchCurrent(context.Background(), "London"); err != nil {
		t.Fatalf("FetchCurrent() unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("inner calls = %d, want 1", calls)
	}
}
