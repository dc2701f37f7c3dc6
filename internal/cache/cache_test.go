package cache

import (
	"context"
	"testing"
	"time"
)

func TestSearchKeyIgnoresKeywordOrder(t *testing.T) {
	t.Parallel()

	a := SearchKey("remotive", "software-dev", []string{"go", "kubernetes", "grpc"})
	b := SearchKey("remotive", "software-dev", []string{"kubernetes", "grpc", "go"})
	if a != b {
		t.Fatalf("keys differ for reordered keywords: %q vs %q", a, b)
	}

	c := SearchKey("remotive", "software-dev", []string{"go", "kubernetes"})
	if a == c {
		t.Fatal("keys must differ for different keyword sets")
	}

	d := SearchKey("hackernews", "software-dev", []string{"go", "kubernetes", "grpc"})
	if a == d {
		t.Fatal("keys must differ per source")
	}
}

func TestMemoryStoreExpiryBeforeEviction(t *testing.T) {
	t.Parallel()

	current := time.Now()
	store := NewMemoryStore(time.Hour, 1024, nil)
	store.now = func() time.Time { return current }

	ctx := context.Background()
	if err := store.Put(ctx, "k1", []byte("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok := store.Get(ctx, "k1"); !ok {
		t.Fatal("expected hit for fresh entry")
	}

	// Past the TTL the entry is absent even though the size budget would
	// never have evicted it.
	current = current.Add(time.Hour + time.Second)
	if _, ok := store.Get(ctx, "k1"); ok {
		t.Fatal("expected miss for expired entry")
	}

	stats := store.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.TotalSize != 0 {
		t.Fatalf("expired entry still counted in size: %d", stats.TotalSize)
	}
}

func TestMemoryStoreEvictsOldestFirst(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour, 20, nil)
	ctx := context.Background()

	if err := store.Put(ctx, "old", []byte("0123456789")); err != nil {
		t.Fatalf("put old: %v", err)
	}
	if err := store.Put(ctx, "mid", []byte("0123456789")); err != nil {
		t.Fatalf("put mid: %v", err)
	}

	// A third entry exceeds the 20-byte budget and must push out "old".
	if err := store.Put(ctx, "new", []byte("0123456789")); err != nil {
		t.Fatalf("put new: %v", err)
	}

	if _, ok := store.Get(ctx, "old"); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, ok := store.Get(ctx, "mid"); !ok {
		t.Fatal("expected mid entry to survive")
	}
	if _, ok := store.Get(ctx, "new"); !ok {
		t.Fatal("expected new entry to survive")
	}

	stats := store.Stats()
	if stats.Evictions != 1 {
		t.Fatalf("expected 1 eviction, got %d", stats.Evictions)
	}
	if stats.TotalSize != 20 {
		t.Fatalf("expected 20 bytes resident, got %d", stats.TotalSize)
	}
}

func TestMemoryStoreReplaceDoesNotDouble(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour, 100, nil)
	ctx := context.Background()

	if err := store.Put(ctx, "k", []byte("first")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "k", []byte("second!")); err != nil {
		t.Fatalf("replace: %v", err)
	}

	payload, ok := store.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(payload) != "second!" {
		t.Fatalf("expected latest payload, got %q", payload)
	}

	if stats := store.Stats(); stats.TotalSize != int64(len("second!")) {
		t.Fatalf("replacement double-counted: %d bytes", stats.TotalSize)
	}
}

func TestMemoryStoreUnreadableEntryIsMiss(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour, 100, nil)
	ctx := context.Background()

	if err := store.Put(ctx, "k", nil); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("empty payload must read as a miss")
	}
	// The broken entry is discarded, not returned again.
	if _, ok := store.entries["k"]; ok {
		t.Fatal("unreadable entry should have been dropped")
	}
}
