package rescache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGet_CachesWithinTTL(t *testing.T) {
	c := New()
	calls := 0
	fetch := func(context.Context) (string, error) {
		calls++
		return "value", nil
	}

	ctx := context.Background()
	key := Key{"documents", "f1"}
	for i := 0; i < 3; i++ {
		v, err := Get(ctx, c, key, time.Minute, fetch)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if v != "value" {
			t.Fatalf("Unexpected value %q", v)
		}
	}
	if calls != 1 {
		t.Errorf("Expected 1 fetch, got %d", calls)
	}
}

func TestGet_RefetchesWhenStale(t *testing.T) {
	now := time.Now()
	c := NewWithClock(func() time.Time { return now })
	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	ctx := context.Background()
	key := Key{"documents"}
	if v, _ := Get(ctx, c, key, time.Minute, fetch); v != 1 {
		t.Fatalf("Expected first fetch result, got %d", v)
	}

	now = now.Add(2 * time.Minute)
	if v, _ := Get(ctx, c, key, time.Minute, fetch); v != 2 {
		t.Errorf("Expected refetch after staleness, got %d", v)
	}
}

func TestGet_StaleValueOnFetchError(t *testing.T) {
	now := time.Now()
	c := NewWithClock(func() time.Time { return now })

	key := Key{"documents", "f1"}
	ctx := context.Background()
	Get(ctx, c, key, time.Minute, func(context.Context) (string, error) {
		return "old", nil
	})

	now = now.Add(2 * time.Minute)
	failing := errors.New("backend down")
	v, err := Get(ctx, c, key, time.Minute, func(context.Context) (string, error) {
		return "", failing
	})
	if !errors.Is(err, failing) {
		t.Errorf("Expected fetch error surfaced, got %v", err)
	}
	if v != "old" {
		t.Errorf("Expected stale value alongside error, got %q", v)
	}
}

func TestInvalidate_Prefix(t *testing.T) {
	c := New()
	ctx := context.Background()
	fetch := func(v string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) { return v, nil }
	}

	Get(ctx, c, Key{"documents", "f1"}, time.Hour, fetch("a"))
	Get(ctx, c, Key{"documents", "f2"}, time.Hour, fetch("b"))
	Get(ctx, c, Key{"folders", "tree"}, time.Hour, fetch("c"))

	c.Invalidate(Key{"documents"})

	if c.Len() != 1 {
		t.Fatalf("Expected only the folders entry to survive, got %d", c.Len())
	}

	calls := 0
	Get(ctx, c, Key{"documents", "f1"}, time.Hour, func(context.Context) (string, error) {
		calls++
		return "fresh", nil
	})
	if calls != 1 {
		t.Errorf("Expected refetch after invalidation")
	}
}

func TestInvalidate_EmptyPrefixDropsAll(t *testing.T) {
	c := New()
	ctx := context.Background()
	Get(ctx, c, Key{"a"}, time.Hour, func(context.Context) (int, error) { return 1, nil })
	Get(ctx, c, Key{"b"}, time.Hour, func(context.Context) (int, error) { return 2, nil })

	c.Invalidate(Key{})

	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", c.Len())
	}
}

func TestKey_HasPrefix(t *testing.T) {
	tests := []struct {
		key    Key
		prefix Key
		want   bool
	}{
		{Key{"documents", "f1"}, Key{"documents"}, true},
		{Key{"documents", "f1"}, Key{"documents", "f1"}, true},
		{Key{"documents"}, Key{"documents", "f1"}, false},
		{Key{"folders"}, Key{"documents"}, false},
		{Key{"documents", "f1"}, Key{}, true},
	}
	for _, tt := range tests {
		if got := tt.key.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("%v.HasPrefix(%v) = %v, want %v", tt.key, tt.prefix, got, tt.want)
		}
	}
}
