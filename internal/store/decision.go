package store

import (
	"context"
	"encoding/json"
	"fmt"

	"basegraph.app/correlate/common/id"
	"basegraph.app/correlate/core/db/sqlc"
	"basegraph.app/correlate/internal/model"
)

type decisionStore struct {
	queries *sqlc.Queries
}

func newDecisionStore(queries *sqlc.Queries) DecisionStore {
	return &decisionStore{queries: queries}
}

// Upsert keeps the id and created_at of an existing decision for the same ticket.
func (s *decisionStore) Upsert(ctx context.Context, d *model.Decision) (*model.Decision, error) {
	if d.ID == 0 {
		d.ID = id.New()
	}
	risks := d.Risks
	if risks == nil {
		risks = []model.Risk{}
	}
	risksJSON, err := json.Marshal(risks)
	if err != nil {
		return nil, fmt.Errorf("marshaling risks: %w", err)
	}

	row, err := s.queries.UpsertDecision(ctx, sqlc.UpsertDecisionParams{
		ID:                     d.ID,
		OrganizationID:         d.OrganizationID,
		TicketKey:              d.TicketKey,
		Summary:                d.Summary,
		ProblemStatement:       d.ProblemStatement,
		AlternativesConsidered: nonNil(d.AlternativesConsidered),
		ChosenApproach:         d.ChosenApproach,
		Rationale:              d.Rationale,
		Constraints:            nonNil(d.Constraints),
		Risks:                  risksJSON,
		Tradeoffs:              nonNil(d.Tradeoffs),
		Stakeholders:           nonNil(d.Stakeholders),
		CommitSHAs:             nonNil(d.CommitSHAs),
		PullRequestRefs:        nonNil(d.PullRequestRefs),
		RelatedDocuments:       nonNil(d.RelatedDocuments),
		ConfidenceScore:        d.ConfidenceScore,
		RawAnalysis:            d.RawAnalysis,
		AnalyzedAt:             toTimestamp(d.AnalyzedAt),
	})
	if err != nil {
		return nil, err
	}
	return toDecisionModel(row)
}

func (s *decisionStore) Get(ctx context.Context, orgID int64, decisionID int64) (*model.Decision, error) {
	row, err := s.queries.GetDecision(ctx, sqlc.GetDecisionParams{
		OrganizationID: orgID,
		ID:             decisionID,
	})
	if err != nil {
		return nil, notFound(err)
	}
	return toDecisionModel(row)
}

func (s *decisionStore) GetByTicket(ctx context.Context, orgID int64, ticketKey string) (*model.Decision, error) {
	row, err := s.queries.GetDecisionByTicket(ctx, sqlc.GetDecisionByTicketParams{
		OrganizationID: orgID,
		TicketKey:      ticketKey,
	})
	if err != nil {
		return nil, notFound(err)
	}
	return toDecisionModel(row)
}

func (s *decisionStore) List(ctx context.Context, orgID int64, limit, offset int32) ([]model.Decision, error) {
	rows, err := s.queries.ListDecisions(ctx, sqlc.ListDecisionsParams{
		OrganizationID: orgID,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return nil, err
	}
	return toDecisionModels(rows)
}

func (s *decisionStore) Search(ctx context.Context, orgID int64, query string, limit int32) ([]Scored[model.Decision], error) {
	rows, err := s.queries.SearchDecisions(ctx, sqlc.SearchDecisionsParams{
		Query:          query,
		OrganizationID: orgID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	result := make([]Scored[model.Decision], 0, len(rows))
	for _, row := range rows {
		d, err := toDecisionModel(row.Decision)
		if err != nil {
			return nil, err
		}
		result = append(result, Scored[model.Decision]{Item: *d, Score: row.Rank})
	}
	return result, nil
}

func toDecisionModel(row sqlc.Decision) (*model.Decision, error) {
	var risks []model.Risk
	if len(row.Risks) > 0 {
		if err := json.Unmarshal(row.Risks, &risks); err != nil {
			return nil, fmt.Errorf("unmarshaling risks for decision %d: %w", row.ID, err)
		}
	}
	return &model.Decision{
		ID:                     row.ID,
		OrganizationID:         row.OrganizationID,
		TicketKey:              row.TicketKey,
		Summary:                row.Summary,
		ProblemStatement:       row.ProblemStatement,
		AlternativesConsidered: row.AlternativesConsidered,
		ChosenApproach:         row.ChosenApproach,
		Rationale:              row.Rationale,
		Constraints:            row.Constraints,
		Risks:                  risks,
		Tradeoffs:              row.Tradeoffs,
		Stakeholders:           row.Stakeholders,
		CommitSHAs:             row.CommitSHAs,
		PullRequestRefs:        row.PullRequestRefs,
		RelatedDocuments:       row.RelatedDocuments,
		ConfidenceScore:        row.ConfidenceScore,
		RawAnalysis:            row.RawAnalysis,
		AnalyzedAt:             row.AnalyzedAt.Time,
		CreatedAt:              row.CreatedAt.Time,
		UpdatedAt:              row.UpdatedAt.Time,
	}, nil
}

func toDecisionModels(rows []sqlc.Decision) ([]model.Decision, error) {
	result := make([]model.Decision, 0, len(rows))
	for _, row := range rows {
		d, err := toDecisionModel(row)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, nil
}
