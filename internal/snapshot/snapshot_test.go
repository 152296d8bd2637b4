package snapshot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoadFallsBackToLastGoodValue(t *testing.T) {
	var c Cache[[]string]
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	v, stale, err := c.Load(ctx, now, func(context.Context) ([]string, error) {
		return []string{"Salt"}, nil
	})
	if err != nil || stale || len(v) != 1 {
		t.Fatalf("first load = %v, %v, %v", v, stale, err)
	}

	offline := errors.New("offline")
	v, stale, err = c.Load(ctx, now.Add(time.Hour), func(context.Context) ([]string, error) {
		return nil, offline
	})
	if !stale || !errors.Is(err, offline) || len(v) != 1 || v[0] != "Salt" {
		t.Fatalf("fallback load = %v, %v, %v", v, stale, err)
	}

	_, at, _ := c.Get()
	if !at.Equal(now) {
		t.Fatalf("failed load must not move the snapshot time, got %v", at)
	}
}

func TestLoadWithoutCacheReturnsError(t *testing.T) {
	var c Cache[int]
	_, stale, err := c.Load(context.Background(), time.Now(), func(context.Context) (int, error) {
		return 0, errors.New("offline")
	})
	if err == nil || stale {
		t.Fatalf("expected hard error, got stale=%v err=%v", stale, err)
	}
}

func TestLoadReplaysHeldChanges(t *testing.T) {
	var c Cache[[]string]
	ctx := context.Background()
	fetch := func(context.Context) ([]string, error) { return []string{"Salt"}, nil }
	appendOnce := func(name string) func([]string) []string {
		return func(v []string) []string {
			for _, s := range v {
				if s == name {
					return v
				}
			}
			return append(append([]string{}, v...), name)
		}
	}

	c.Hold("cumin", appendOnce("Cumin"))
	c.Hold("pepper", appendOnce("Pepper"))
	c.Hold("cumin", func(v []string) []string { return append(append([]string{}, v...), "Cumin again") })

	v, stale, err := c.Load(ctx, time.Now(), fetch)
	if err != nil || stale {
		t.Fatalf("Load = %v, %v", stale, err)
	}
	want := []string{"Salt", "Cumin", "Cumin again", "Pepper"}
	if len(v) != len(want) {
		t.Fatalf("Load = %v, want %v", v, want)
	}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("Load = %v, want %v", v, want)
		}
	}

	c.Release("cumin")
	c.Release("missing")
	if c.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", c.Pending())
	}
	v, _, _ = c.Load(ctx, time.Now(), fetch)
	if len(v) != 2 || v[1] != "Pepper" {
		t.Fatalf("after release Load = %v", v)
	}
}

func TestLoadCollapsesConcurrentFetches(t *testing.T) {
	var (
		c     Cache[int]
		calls atomic.Int32
		wg    sync.WaitGroup
	)
	release := make(chan struct{})
	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, _, err := c.Load(context.Background(), time.Now(), fetch); err != nil || v != 7 {
				t.Errorf("Load = %d, %v", v, err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n < 1 || n > 5 {
		t.Fatalf("unexpected fetch count %d", n)
	}
}
