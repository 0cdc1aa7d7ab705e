// Package retrieval ranks chunks for a query with a tiered fallback over a search index.
package retrieval

import (
	"context"
	"fmt"
	"sort"

	"resumechat/internal/domain"
)

// Defaults for the acceptance thresholds. They are tuned on the Postgres
// ts_rank and pg_trgm similarity scales.
const (
	DefaultPrimaryThreshold = 0.03
	DefaultFuzzyThreshold   = 0.15
	DefaultSalvageThreshold = 0.015
	DefaultLimit            = 6
)

// Thresholds are the score cut-offs for each tier.
type Thresholds struct {
	// Primary is the minimum top rank score for rank hits to be accepted outright.
	Primary float64
	// Fuzzy is the minimum similarity for a fuzzy hit to be kept.
	Fuzzy float64
	// Salvage is the minimum rank score for rank hits to be used when fuzzy finds nothing.
	Salvage float64
}

// DefaultThresholds returns the documented default cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Primary: DefaultPrimaryThreshold,
		Fuzzy:   DefaultFuzzyThreshold,
		Salvage: DefaultSalvageThreshold,
	}
}

// Tier names the strategy that produced a result.
type Tier string

const (
	TierExact   Tier = "exact"
	TierFuzzy   Tier = "fuzzy"
	TierSalvage Tier = "salvage"
	TierNone    Tier = "none"
)

// Outcome is the ranked hit list and the tier that produced it.
type Outcome struct {
	Hits []domain.Hit
	Tier Tier
}

// Engine runs rank search, then fuzzy search, then rank salvage.
type Engine struct {
	index      domain.SearchIndex
	thresholds Thresholds
}

func NewEngine(index domain.SearchIndex, thresholds Thresholds) *Engine {
	return &Engine{index: index, thresholds: thresholds}
}

// Thresholds returns the engine's cut-offs.
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// Search returns hits for query in rank order. An empty Outcome means every tier came up empty.
func (e *Engine) Search(ctx context.Context, query string, limit int) (Outcome, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ranked, err := e.index.RankSearch(ctx, query, limit)
	if err != nil {
		return Outcome{}, fmt.Errorf("rank search: %w", err)
	}
	exact := toHits(ranked, domain.MethodExact)
	sortByScore(exact)
	if len(exact) > 0 && exact[0].Score >= e.thresholds.Primary {
		return Outcome{Hits: truncate(exact, limit), Tier: TierExact}, nil
	}

	similar, err := e.index.SimilaritySearch(ctx, query, limit)
	if err != nil {
		return Outcome{}, fmt.Errorf("similarity search: %w", err)
	}
	fuzzy := make([]domain.Hit, 0, len(similar))
	for _, h := range toHits(similar, domain.MethodFuzzy) {
		if h.Score >= e.thresholds.Fuzzy {
			fuzzy = append(fuzzy, h)
		}
	}
	if len(fuzzy) > 0 {
		sortByScore(fuzzy)
		return Outcome{Hits: truncate(fuzzy, limit), Tier: TierFuzzy}, nil
	}

	salvaged := make([]domain.Hit, 0, len(exact))
	for _, h := range exact {
		if h.Score >= e.thresholds.Salvage {
			salvaged = append(salvaged, h)
		}
	}
	if len(salvaged) > 0 {
		return Outcome{Hits: truncate(salvaged, limit), Tier: TierSalvage}, nil
	}
	return Outcome{Tier: TierNone}, nil
}

func toHits(rows []domain.Row, method domain.Method) []domain.Hit {
	hits := make([]domain.Hit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, domain.Hit{
			ChunkID: r.ID,
			Section: r.Section,
			Content: r.Content,
			Score:   r.Score,
			Method:  method,
			Type:    r.Type,
		})
	}
	return hits
}

// sortByScore orders hits by descending score, keeping index order for ties.
func sortByScore(hits []domain.Hit) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
}

func truncate(hits []domain.Hit, limit int) []domain.Hit {
	if len(hits) > limit {
		return hits[:limit]
	}
	return hits
}
