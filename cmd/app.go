package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jobsift/jobsift/internal/cache"
	"github.com/jobsift/jobsift/internal/extract"
	"github.com/jobsift/jobsift/internal/match"
	"github.com/jobsift/jobsift/internal/pipeline"
	"github.com/jobsift/jobsift/internal/ratelimit"
	"github.com/jobsift/jobsift/internal/secrets"
	"github.com/jobsift/jobsift/internal/source"

	"go.uber.org/zap"
)

const (
	defaultCacheTTL     = time.Hour
	defaultCacheMaxSize = 64 << 20 // 64 MiB
)

// application holds everything a search cycle needs, built once from the
// config.
type application struct {
	pipeline      *pipeline.Pipeline
	store         cache.Store
	candidate     *extract.CandidateProfile
	candidateHash string
	logger        *zap.Logger
}

func newApplication(ctx context.Context, config *Config, logger *zap.Logger) (*application, error) {
	store, err := buildStore(ctx, config.Cache, logger)
	if err != nil {
		return nil, err
	}

	sources, err := buildSources(config, logger)
	if err != nil {
		return nil, err
	}

	matcher, err := buildMatcher(config.Matching, logger)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(config.RateLimits, logger)

	acquirerCfg := source.DefaultAcquirerConfig()
	if config.Acquirer != nil {
		acquirerCfg = *config.Acquirer
	}
	acquirer := source.NewAcquirer(sources, limiter, store, acquirerCfg, logger)

	candidate, candidateHash, err := loadCandidate(ctx, config.Profile, store, logger)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(
		acquirer,
		matcher,
		store,
		limiter,
		pipeline.FiltersFromPreferences(config.Preferences),
		config.Search,
		config.Pipeline,
		logger,
	)

	return &application{
		pipeline:      p,
		store:         store,
		candidate:     candidate,
		candidateHash: candidateHash,
		logger:        logger,
	}, nil
}

func buildStore(ctx context.Context, cfg CacheConfig, logger *zap.Logger) (cache.Store, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	if cfg.Backend == "redis" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting cache backend: %w", err)
		}
		return cache.NewRedisStore(client, ttl, logger), nil
	}

	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = defaultCacheMaxSize
	}
	return cache.NewMemoryStore(ttl, maxSize, logger), nil
}

func buildSources(config *Config, logger *zap.Logger) ([]source.Source, error) {
	tokens := map[string]secrets.TokenSource{}
	enabled := []string{"remotive", "hackernews", "weworkremotely"}
	if config.Sources != nil {
		if config.Sources.Tokens != nil {
			tokens = config.Sources.Tokens
		}
		if len(config.Sources.Enabled) > 0 {
			enabled = config.Sources.Enabled
		}
	}

	sources := make([]source.Source, 0, len(enabled))
	for _, name := range enabled {
		token, err := secrets.Resolve(name, tokens[name])
		if err != nil {
			return nil, err
		}

		client := source.NewClient(logger, token)
		switch name {
		case "remotive":
			sources = append(sources, source.NewRemotive(client))
		case "hackernews":
			sources = append(sources, source.NewHackerNews(client))
		case "weworkremotely":
			sources = append(sources, source.NewWeWorkRemotely(client))
		default:
			return nil, fmt.Errorf("unknown source: %s", name)
		}
	}
	return sources, nil
}

func buildMatcher(cfg MatchingConfig, logger *zap.Logger) (*match.Matcher, error) {
	weights := match.DefaultWeights()
	if cfg.Weights != nil {
		weights = *cfg.Weights
		if math.Abs(weights.Sum()-1.0) > 1e-6 {
			return nil, fmt.Errorf("matching weights must sum to 1.0, got %.4f", weights.Sum())
		}
	}

	thresholds := match.DefaultThresholds()
	if cfg.Thresholds != nil {
		thresholds = *cfg.Thresholds
	}

	return match.New(weights, thresholds, logger), nil
}

// loadCandidate reads the résumé, extracting the profile once per content
// hash and caching the result.
func loadCandidate(ctx context.Context, path string, store cache.Store, logger *zap.Logger) (*extract.CandidateProfile, string, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading résumé: %w", err)
	}

	hash := extract.Hash(string(text))
	key := "profile:" + hash

	if payload, ok := store.Get(ctx, key); ok {
		var candidate extract.CandidateProfile
		if err := json.Unmarshal(payload, &candidate); err == nil {
			logger.Debug("loaded candidate profile from cache")
			return &candidate, hash, nil
		}
	}

	candidate := extract.Profile(string(text))
	if payload, err := json.Marshal(candidate); err == nil {
		if err := store.Put(ctx, key, payload); err != nil {
			logger.Warn("profile cache write failed", zap.Error(err))
		}
	}

	logger.Info("extracted candidate profile",
		zap.String("name", candidate.Name),
		zap.Int("skills", candidate.Skills.Len()),
		zap.Int("experience_entries", len(candidate.Experience)),
	)
	return &candidate, hash, nil
}
