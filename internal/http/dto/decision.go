package dto

import (
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/store"
)

type DecisionSearchHit struct {
	Decision model.Decision `json:"decision"`
	Score    float64        `json:"score"`
}

type DecisionSearchResponse struct {
	Query string              `json:"query"`
	Hits  []DecisionSearchHit `json:"hits"`
}

type DecisionListResponse struct {
	Decisions []model.Decision `json:"decisions"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
}

func ToDecisionSearchHits(scored []store.Scored[model.Decision]) []DecisionSearchHit {
	hits := make([]DecisionSearchHit, 0, len(scored))
	for _, s := range scored {
		hits = append(hits, DecisionSearchHit{Decision: s.Item, Score: s.Score})
	}
	return hits
}
