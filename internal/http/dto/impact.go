package dto

import "basegraph.app/correlate/internal/model"

type SuggestReviewersRequest struct {
	Paths []string `json:"paths" binding:"required,min=1,max=100"`
}

type SuggestReviewersResponse struct {
	Reviewers []model.Reviewer `json:"reviewers"`
}
