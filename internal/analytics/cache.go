package analytics

import (
	"context"
	"time"

	"surveyhub/internal/database"
	"surveyhub/internal/logger"
)

const (
	analysisCacheKey = "analytics:results"
	analysisCacheTTL = 6 * time.Hour
)

// AnalysisResults is the cached output of the offline analysis passes.
type AnalysisResults struct {
	Sentiments map[string]string `json:"sentiments"` // response ID -> label
	Topics     map[string]int    `json:"topics"`     // response ID -> cluster
	ComputedAt time.Time         `json:"computedAt"`
}

// AnalysisCache is an injected cache handle for analysis results. Callers
// share one instance wired at startup rather than a package-level global, so
// tests can substitute their own.
type AnalysisCache struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewAnalysisCache(cache database.CacheClient) *AnalysisCache {
	return &AnalysisCache{
		cache: cache,
		log:   logger.New("AnalysisCache"),
	}
}

func (c *AnalysisCache) Get(ctx context.Context) (*AnalysisResults, bool) {
	var results AnalysisResults
	found, err := database.NewCacheBuilder(c.cache, analysisCacheKey).
		WithContext(ctx).Get(&results)
	if err != nil || !found {
		return nil, false
	}
	return &results, true
}

// Refresh replaces the cached results wholesale.
func (c *AnalysisCache) Refresh(ctx context.Context, results *AnalysisResults) error {
	return database.NewCacheBuilder(c.cache, analysisCacheKey).
		WithStruct(results).
		WithTTL(analysisCacheTTL).
		WithContext(ctx).
		Set()
}

func (c *AnalysisCache) Invalidate() error {
	return database.NewCacheBuilder(c.cache, analysisCacheKey).Delete()
}
