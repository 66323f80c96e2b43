package source

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// fakeRedis is an in-memory RedisClient.
type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	ttl     map[string]time.Duration
	readErr error
	sets    int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return redis.NewStringResult("", f.readErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttl[key] = expiration
	f.sets++
	return redis.NewStatusResult("OK", nil)
}

// countingSource counts fetches.
type countingSource struct {
	records []grid.Record
	err     error
	calls   int
}

func (s *countingSource) Records(context.Context) ([]grid.Record, error) {
	s.calls++
	return s.records, s.err
}

func cacheRecords() []grid.Record {
	return []grid.Record{
		{"name": grid.Text("deploy"), "iat": grid.Number(1700000000), "token": grid.Text("secret")},
		{"name": grid.Text("backup"), "iat": grid.Number(1600000000)},
	}
}

func TestCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	next := &countingSource{records: cacheRecords()}
	c := &Cache{Client: rdb, Key: "k", TTL: time.Minute, Next: next}

	first, err := c.Records(ctx)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	second, err := c.Records(ctx)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}

	if next.calls != 1 {
		t.Errorf("source fetched %d times, want 1", next.calls)
	}
	if rdb.ttl["k"] != time.Minute {
		t.Errorf("ttl = %v", rdb.ttl["k"])
	}
	if len(second) != len(first) {
		t.Fatalf("cached %d records, fetched %d", len(second), len(first))
	}
	if got := second[0].Get("name").String(); got != "deploy" {
		t.Errorf("cached name = %q", got)
	}
	if f, _ := second[0].Get("iat").Float(); f != 1700000000 {
		t.Errorf("cached iat = %v", f)
	}
	if !second[1].Get("token").IsAbsent() {
		t.Error("absent token should stay absent through the cache")
	}
}

func TestCache_Refresh(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	next := &countingSource{records: cacheRecords()}
	c := &Cache{Client: rdb, Key: "k", TTL: time.Minute, Next: next}

	if _, err := c.Records(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := Fresh(ctx, c); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 || rdb.sets != 2 {
		t.Errorf("calls=%d sets=%d, want 2 and 2", next.calls, rdb.sets)
	}

	// The refreshed snapshot serves the next read.
	if _, err := c.Records(ctx); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 {
		t.Errorf("calls after refresh = %d, want 2", next.calls)
	}
}


func TestCache_Fallthrough(t *testing.T) {
	ctx := context.Background()

	t.Run("redis down", func(t *testing.T) {
		rdb := newFakeRedis()
		rdb.readErr = errors.New("connection refused")
		next := &countingSource{records: cacheRecords()}
		c := &Cache{Client: rdb, Key: "k", TTL: time.Minute, Next: next}

		records, err := c.Records(ctx)
		if err != nil || len(records) != 2 {
			t.Fatalf("Records = %d, %v", len(records), err)
		}
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		rdb := newFakeRedis()
		rdb.data["k"] = "{not json"
		next := &countingSource{records: cacheRecords()}
		c := &Cache{Client: rdb, Key: "k", TTL: time.Minute, Next: next}

		if _, err := c.Records(ctx); err != nil {
			t.Fatal(err)
		}
		if next.calls != 1 {
			t.Errorf("source fetched %d times, want 1", next.calls)
		}
	})

	t.Run("source error not cached", func(t *testing.T) {
		rdb := newFakeRedis()
		boom := errors.New("boom")
		c := &Cache{Client: rdb, Key: "k", TTL: time.Minute, Next: &countingSource{err: boom}}

		if _, err := c.Records(ctx); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if rdb.sets != 0 {
			t.Error("failed fetch should not be cached")
		}
	})
}

func TestFresh_PlainSource(t *testing.T) {
	next := &countingSource{records: cacheRecords()}
	if _, err := Fresh(context.Background(), next); err != nil || next.calls != 1 {
		t.Errorf("Fresh = %v, calls %d", err, next.calls)
	}
}
