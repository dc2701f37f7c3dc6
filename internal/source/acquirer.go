package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jobsift/jobsift/internal/cache"
	"github.com/jobsift/jobsift/internal/extract"
	"github.com/jobsift/jobsift/internal/logger"
	"github.com/jobsift/jobsift/internal/ratelimit"
	"github.com/jobsift/jobsift/internal/utils"

	"go.uber.org/zap"
)

// AcquirerConfig bounds one source fetch.
type AcquirerConfig struct {
	// Timeout caps a single source fetch.
	Timeout time.Duration `mapstructure:"timeout"`
	// MinSearchInterval skips a fresh fetch when the same source succeeded
	// recently. Cached reads are unaffected.
	MinSearchInterval time.Duration `mapstructure:"min-search-interval"`
}

func DefaultAcquirerConfig() AcquirerConfig {
	return AcquirerConfig{
		Timeout:           45 * time.Second,
		MinSearchInterval: 5 * time.Minute,
	}
}

// Acquirer turns source fetches into extracted records, going through the
// cache and the rate limiter on the way. Acquiring the same terms twice is an
// idempotent no-op within the cache TTL.
type Acquirer struct {
	sources []Source
	limiter *ratelimit.Limiter
	store   cache.Store
	cfg     AcquirerConfig
	logger  *zap.Logger

	mu        sync.Mutex
	lastFetch map[string]time.Time

	// Overridable in tests.
	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

func NewAcquirer(sources []Source, limiter *ratelimit.Limiter, store cache.Store, cfg AcquirerConfig, log *zap.Logger) *Acquirer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Acquirer{
		sources:   sources,
		limiter:   limiter,
		store:     store,
		cfg:       cfg,
		logger:    log,
		lastFetch: make(map[string]time.Time),
		now:       time.Now,
		wait:      utils.WaitFor,
	}
}

func (a *Acquirer) Sources() []Source {
	return a.sources
}

// Acquire returns the extracted records for one source and search terms.
// Cache first; on a miss the fetch is admitted through the rate limiter,
// extracted, written back, and the adaptive delay is served before returning.
func (a *Acquirer) Acquire(ctx context.Context, src Source, terms SearchTerms) ([]extract.Record, error) {
	name := src.Name()
	log := logger.WithFields(a.logger, zap.String(logger.FieldSource, name))

	key := cache.SearchKey(name, terms.Category, terms.Keywords)
	if payload, ok := a.store.Get(ctx, key); ok {
		var records []extract.Record
		if err := json.Unmarshal(payload, &records); err == nil {
			log.Debug("serving search from cache", zap.Int("postings", len(records)))
			return records, nil
		}
		log.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	if a.recentlyFetched(name) {
		log.Debug("skipping fetch inside min search interval")
		return nil, nil
	}

	if err := a.limiter.Admit(ctx, name); err != nil {
		return nil, err
	}

	fetchCtx := ctx
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	raws, err := src.Fetch(fetchCtx, terms)
	delay := a.limiter.RecordOutcome(name, err == nil)
	if err != nil {
		return nil, fmt.Errorf("fetching from %s: %w", name, err)
	}

	records := make([]extract.Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, extract.Posting(raw))
	}

	if payload, err := json.Marshal(records); err == nil {
		if err := a.store.Put(ctx, key, payload); err != nil {
			log.Warn("cache write failed", zap.Error(err))
		}
	}

	a.markFetched(name)
	log.Info("acquired postings",
		zap.Int("postings", len(records)),
		zap.Duration("next_delay", delay),
	)

	// Serve the adaptive delay now so back-to-back acquisitions against the
	// same source stay paced.
	if err := a.wait(ctx, delay); err != nil {
		return records, err
	}
	return records, nil
}

func (a *Acquirer) recentlyFetched(name string) bool {
	if a.cfg.MinSearchInterval <= 0 {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	last, ok := a.lastFetch[name]
	return ok && a.now().Sub(last) < a.cfg.MinSearchInterval
}

func (a *Acquirer) markFetched(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastFetch[name] = a.now()
}
