package dto

import "basegraph.app/correlate/internal/model"

type BackfillRequest struct {
	// Kinds defaults to every kind.
	Kinds      []model.EntityKind `json:"kinds"`
	OnlyFailed bool               `json:"only_failed"`
}

type IndexStatusResponse struct {
	Kinds []model.IndexStatusCounts `json:"kinds"`
}

type ClearCacheResponse struct {
	Cleared int `json:"cleared"`
}
