package model

import "time"

type AnalysisState string

const (
	AnalysisStateUnanalyzed AnalysisState = "unanalyzed"
	AnalysisStateAnalyzing  AnalysisState = "analyzing"
	AnalysisStateAnalyzed   AnalysisState = "analyzed"
)

type Risk struct {
	Risk       string `json:"risk"`
	Mitigation string `json:"mitigation"`
}

// Decision is the extracted design rationale behind a ticket. At most one exists
// per (organization, ticket key); re-analysis replaces it in place.
type Decision struct {
	ID                     int64     `json:"id"`
	OrganizationID         int64     `json:"organization_id"`
	TicketKey              string    `json:"ticket_key"`
	Summary                string    `json:"summary"`
	ProblemStatement       string    `json:"problem_statement"`
	AlternativesConsidered []string  `json:"alternatives_considered"`
	ChosenApproach         string    `json:"chosen_approach"`
	Rationale              string    `json:"rationale"`
	Constraints            []string  `json:"constraints"`
	Risks                  []Risk    `json:"risks"`
	Tradeoffs              []string  `json:"tradeoffs"`
	Stakeholders           []string  `json:"stakeholders"`
	CommitSHAs             []string  `json:"commit_shas"`
	PullRequestRefs        []string  `json:"pull_request_refs"`
	RelatedDocuments       []string  `json:"related_documents"`
	ConfidenceScore        float64   `json:"confidence_score"`
	RawAnalysis            string    `json:"raw_analysis"`
	AnalyzedAt             time.Time `json:"analyzed_at"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// DecisionStatus reports where a ticket sits in the analysis lifecycle.
type DecisionStatus struct {
	TicketKey       string        `json:"ticket_key"`
	State           AnalysisState `json:"state"`
	ConfidenceScore *float64      `json:"confidence_score,omitempty"`
	AnalyzedAt      *time.Time    `json:"analyzed_at,omitempty"`
}
