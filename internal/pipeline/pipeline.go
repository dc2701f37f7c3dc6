// Package pipeline orchestrates one search cycle: acquisition across sources,
// preference filtering, scoring and ranking.
package pipeline

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/jobsift/jobsift/internal/cache"
	"github.com/jobsift/jobsift/internal/extract"
	"github.com/jobsift/jobsift/internal/logger"
	"github.com/jobsift/jobsift/internal/match"
	"github.com/jobsift/jobsift/internal/ratelimit"
	"github.com/jobsift/jobsift/internal/source"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config bounds cycle execution.
type Config struct {
	MaxConcurrency int `mapstructure:"max-concurrency" validate:"gte=1"`
}

func DefaultConfig() Config {
	return Config{MaxConcurrency: 3}
}

// Ranked is one scored posting in the cycle result, ordered best first.
type Ranked struct {
	Posting     extract.Record `json:"posting"`
	Score       match.Score    `json:"score"`
	Recommended bool           `json:"recommended"`
}

// Pipeline wires the acquisition, filtering and matching stages together.
// All dependencies are explicit; a Pipeline holds no global state.
type Pipeline struct {
	acquirer *source.Acquirer
	matcher  *match.Matcher
	store    cache.Store
	limiter  *ratelimit.Limiter
	filters  []Filter
	terms    source.SearchTerms
	cfg      Config
	logger   *zap.Logger
}

func New(
	acquirer *source.Acquirer,
	matcher *match.Matcher,
	store cache.Store,
	limiter *ratelimit.Limiter,
	filters []Filter,
	terms source.SearchTerms,
	cfg Config,
	log *zap.Logger,
) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	return &Pipeline{
		acquirer: acquirer,
		matcher:  matcher,
		store:    store,
		limiter:  limiter,
		filters:  filters,
		terms:    terms,
		cfg:      cfg,
		logger:   log,
	}
}

// RunCycle executes one full search cycle for the candidate and returns the
// postings ranked by descending total score. A failing source degrades to an
// empty contribution; the cycle itself fails only on cancellation.
func (p *Pipeline) RunCycle(ctx context.Context, candidate *extract.CandidateProfile, candidateHash string) ([]Ranked, error) {
	cycleID := uuid.NewString()
	log := logger.WithCycleFields(p.logger, cycleID, "")

	sources := p.acquirer.Sources()
	log.Info("starting search cycle",
		zap.Int("sources", len(sources)),
		zap.Strings("keywords", p.terms.Keywords),
	)

	results := make([][]extract.Record, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			records, err := p.acquirer.Acquire(gctx, src, p.terms)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// A broken source must not sink the cycle.
				logger.WithCycleFields(p.logger, cycleID, src.Name()).
					Warn("source failed, continuing without it", zap.Error(err))
				return nil
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := mergeRecords(results)
	log.Info("merged source results", zap.Int("postings", len(merged)))

	filtered := RunFilters(log, p.filters, merged)

	ranked := make([]Ranked, 0, len(filtered))
	for i := range filtered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		score := p.scoreCached(ctx, log, candidate, candidateHash, &filtered[i])
		ranked = append(ranked, Ranked{
			Posting:     filtered[i],
			Score:       score,
			Recommended: p.matcher.Recommended(score),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Total > ranked[j].Score.Total
	})

	p.logCycleStats(log, ranked)
	return ranked, nil
}

// mergeRecords flattens per-source results in discovery order, dropping
// duplicate identities.
func mergeRecords(results [][]extract.Record) []extract.Record {
	var merged []extract.Record
	seen := make(map[string]bool)
	for _, records := range results {
		for _, record := range records {
			id := record.ID()
			if seen[id] {
				continue
			}
			seen[id] = true
			merged = append(merged, record)
		}
	}
	return merged
}

// scoreCached consults the match cache before scoring. Scoring is pure, so a
// cached result for the same candidate and posting identity is always valid
// within its TTL.
func (p *Pipeline) scoreCached(ctx context.Context, log *zap.Logger, candidate *extract.CandidateProfile, candidateHash string, record *extract.Record) match.Score {
	key := cache.MatchKey(candidateHash, record.ID())

	if payload, ok := p.store.Get(ctx, key); ok {
		var score match.Score
		if err := json.Unmarshal(payload, &score); err == nil {
			return score
		}
		log.Warn("discarding undecodable match cache entry", zap.String("key", key))
	}

	score := p.matcher.Score(record, candidate)
	if payload, err := json.Marshal(score); err == nil {
		if err := p.store.Put(ctx, key, payload); err != nil {
			log.Warn("match cache write failed", zap.Error(err))
		}
	}
	return score
}

func (p *Pipeline) logCycleStats(log *zap.Logger, ranked []Ranked) {
	recommended := 0
	for _, r := range ranked {
		if r.Recommended {
			recommended++
		}
	}

	cacheStats := p.store.Stats()
	log.Info("search cycle finished",
		zap.Int("ranked", len(ranked)),
		zap.Int("recommended", recommended),
		zap.Int64("cache_hits", cacheStats.Hits),
		zap.Int64("cache_misses", cacheStats.Misses),
		zap.Int64("cache_evictions", cacheStats.Evictions),
		zap.Int64("cache_size", cacheStats.TotalSize),
	)

	for name, stats := range p.limiter.StatsAll() {
		log.Debug("limiter stats",
			zap.String(logger.FieldSource, name),
			zap.Int("requests", stats.Requests),
			zap.Float64("success_rate", stats.SuccessRate),
			zap.Duration("current_delay", stats.CurrentDelay),
			zap.Int("window_occupancy", stats.WindowOccupancy),
		)
	}
}
