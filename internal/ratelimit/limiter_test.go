package ratelimit

import (
	"context"
	"testing"
	"time"
)

func testLimiter(configs map[string]Config) (*Limiter, *time.Time, *[]time.Duration) {
	l := New(configs, nil)

	current := time.Now()
	waits := []time.Duration{}

	l.now = func() time.Time { return current }
	l.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		current = current.Add(d)
		return nil
	}

	return l, &current, &waits
}

func TestAdmitBlocksWhenWindowFull(t *testing.T) {
	t.Parallel()

	l, current, waits := testLimiter(map[string]Config{
		"remotive": {MaxRequests: 2, TimeWindow: time.Minute, BurstLimit: 5, RetryAfter: time.Second},
	})

	ctx := context.Background()
	start := *current

	for i := 0; i < 2; i++ {
		if err := l.Admit(ctx, "remotive"); err != nil {
			t.Fatalf("admit %d: %v", i, err)
		}
	}
	if len(*waits) != 0 {
		t.Fatalf("first two admits should not wait, got %v", *waits)
	}

	// Third request arrives 10s into the window; it must wait the remaining
	// 50s until the oldest timestamp ages out.
	*current = start.Add(10 * time.Second)
	if err := l.Admit(ctx, "remotive"); err != nil {
		t.Fatalf("third admit: %v", err)
	}

	if len(*waits) != 1 {
		t.Fatalf("expected one wait, got %v", *waits)
	}
	if got, want := (*waits)[0], 50*time.Second; got != want {
		t.Fatalf("expected wait of %v, got %v", want, got)
	}
}

func TestAdmitCancelledWhileWaiting(t *testing.T) {
	t.Parallel()

	l, _, _ := testLimiter(map[string]Config{
		"remotive": {MaxRequests: 1, TimeWindow: time.Minute, BurstLimit: 1, RetryAfter: time.Second},
	})
	l.wait = func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := l.Admit(ctx, "remotive"); err != nil {
		t.Fatalf("first admit: %v", err)
	}

	cancel()
	if err := l.Admit(ctx, "remotive"); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSourcesDoNotBlockEachOther(t *testing.T) {
	t.Parallel()

	l, _, waits := testLimiter(map[string]Config{
		"default": {MaxRequests: 1, TimeWindow: time.Minute, BurstLimit: 1, RetryAfter: time.Second},
	})

	ctx := context.Background()
	if err := l.Admit(ctx, "remotive"); err != nil {
		t.Fatalf("remotive admit: %v", err)
	}
	// remotive's window is now full, but hackernews has its own.
	if err := l.Admit(ctx, "hackernews"); err != nil {
		t.Fatalf("hackernews admit: %v", err)
	}
	if len(*waits) != 0 {
		t.Fatalf("independent sources must not wait, got %v", *waits)
	}
}

func TestRecordOutcomeAdaptiveDelay(t *testing.T) {
	t.Parallel()

	cfg := Config{MaxRequests: 100, TimeWindow: time.Minute, BurstLimit: 50, RetryAfter: 2 * time.Second}
	ctx := context.Background()

	t.Run("low success rate increases delay", func(t *testing.T) {
		t.Parallel()

		l, _, _ := testLimiter(map[string]Config{"default": cfg})
		for i := 0; i < 2; i++ {
			if err := l.Admit(ctx, "s"); err != nil {
				t.Fatalf("admit: %v", err)
			}
		}
		l.RecordOutcome("s", true)
		delay := l.RecordOutcome("s", false)

		// rate 0.5 -> base * (1.5 - 0.5) = 2s
		if delay != 2*time.Second {
			t.Fatalf("expected 2s delay at 50%% success, got %v", delay)
		}
	})

	t.Run("perfect success rate shortens delay", func(t *testing.T) {
		t.Parallel()

		l, _, _ := testLimiter(map[string]Config{"default": cfg})
		if err := l.Admit(ctx, "s"); err != nil {
			t.Fatalf("admit: %v", err)
		}
		delay := l.RecordOutcome("s", true)

		// rate 1.0 -> base * max(0.5, 0.5) = 1s
		if delay != time.Second {
			t.Fatalf("expected 1s delay at full success, got %v", delay)
		}
	})

	t.Run("middling rate keeps base delay", func(t *testing.T) {
		t.Parallel()

		l, _, _ := testLimiter(map[string]Config{"default": cfg})
		for i := 0; i < 10; i++ {
			if err := l.Admit(ctx, "s"); err != nil {
				t.Fatalf("admit: %v", err)
			}
		}
		for i := 0; i < 9; i++ {
			l.RecordOutcome("s", true)
		}
		delay := l.RecordOutcome("s", false)

		// rate 0.9 falls between the two thresholds.
		if delay != 2*time.Second {
			t.Fatalf("expected base delay at 90%% success, got %v", delay)
		}
	})
}

func TestRecordOutcomeBurstPenalty(t *testing.T) {
	t.Parallel()

	l, _, _ := testLimiter(map[string]Config{
		"default": {MaxRequests: 10, TimeWindow: time.Minute, BurstLimit: 2, RetryAfter: time.Second},
	})

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if err := l.Admit(ctx, "s"); err != nil {
			t.Fatalf("admit: %v", err)
		}
	}

	// Every admission gets an outcome, so the rate stays at 1.0.
	for i := 0; i < 3; i++ {
		l.RecordOutcome("s", true)
	}
	delay := l.RecordOutcome("s", true)

	// rate 1.0 -> 0.5s base, plus 0.5s for each of the 2 slots past the
	// burst limit.
	want := 1500 * time.Millisecond
	if delay != want {
		t.Fatalf("expected %v with burst penalty, got %v", want, delay)
	}
}

func TestRecordOutcomeFloor(t *testing.T) {
	t.Parallel()

	l, _, _ := testLimiter(map[string]Config{
		"default": {MaxRequests: 100, TimeWindow: time.Minute, BurstLimit: 50, RetryAfter: 100 * time.Millisecond},
	})

	if err := l.Admit(context.Background(), "s"); err != nil {
		t.Fatalf("admit: %v", err)
	}
	delay := l.RecordOutcome("s", true)

	// 100ms * 0.5 would be 50ms; the floor holds it at 100ms.
	if delay != minDelay {
		t.Fatalf("expected floor of %v, got %v", minDelay, delay)
	}
}

func TestStatsSnapshot(t *testing.T) {
	t.Parallel()

	l, _, _ := testLimiter(map[string]Config{
		"default": {MaxRequests: 10, TimeWindow: time.Minute, BurstLimit: 5, RetryAfter: time.Second},
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := l.Admit(ctx, "s"); err != nil {
			t.Fatalf("admit: %v", err)
		}
	}
	l.RecordOutcome("s", true)
	l.RecordOutcome("s", true)
	l.RecordOutcome("s", false)

	stats := l.Stats("s")
	if stats.Requests != 3 || stats.Successes != 2 || stats.Failures != 1 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if stats.WindowOccupancy != 3 {
		t.Fatalf("expected 3 window slots, got %d", stats.WindowOccupancy)
	}
	if want := 2.0 / 3.0; stats.SuccessRate != want {
		t.Fatalf("expected success rate %v, got %v", want, stats.SuccessRate)
	}

	all := l.StatsAll()
	if len(all) != 1 {
		t.Fatalf("expected one source, got %d", len(all))
	}
	if _, ok := all["s"]; !ok {
		t.Fatal("missing source in StatsAll")
	}
}
