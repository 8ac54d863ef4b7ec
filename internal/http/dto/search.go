package dto

import (
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/retriever"
)

type SearchResponse struct {
	Kind  model.EntityKind  `json:"kind"`
	Query string            `json:"query"`
	Hits  []model.SearchHit `json:"hits"`
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
	// Sources defaults to every source family.
	Sources *retriever.Filter `json:"sources"`
	// SessionID continues an earlier conversation; the answer returns it.
	SessionID string `json:"session_id"`
}
