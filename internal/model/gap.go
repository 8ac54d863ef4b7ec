package model

import "time"

type StaleSeverity string

const (
	StaleSeverityWarning  StaleSeverity = "warning"  // past the stale window (>30d by default)
	StaleSeverityCritical StaleSeverity = "critical" // untouched for more than 60 days
)

// GapStats are the breakdowns the gap reports carry for dashboards.
type GapStats struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"by_status,omitempty"`
	ByPriority   map[string]int `json:"by_priority,omitempty"`
	ByAssignee   map[string]int `json:"by_assignee,omitempty"`
	ByAuthor     map[string]int `json:"by_author,omitempty"`
	ByRepository map[string]int `json:"by_repository,omitempty"`
	ByIssueType  map[string]int `json:"by_issue_type,omitempty"`
	BySeverity   map[string]int `json:"by_severity,omitempty"`
}

type OrphanedTicketsReport struct {
	Tickets       []Ticket  `json:"tickets"`
	Stats         GapStats  `json:"stats"`
	TimeframeDays int       `json:"timeframe_days"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// UndocumentedChange is a commit or pull request that references no ticket.
type UndocumentedChange struct {
	Kind       EntityKind `json:"kind"`
	Repository string     `json:"repository"`
	Ref        string     `json:"ref"` // sha or pr number
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	Date       time.Time  `json:"date"`
	Additions  int32      `json:"additions,omitempty"`
	Deletions  int32      `json:"deletions,omitempty"`
	URL        *string    `json:"url,omitempty"`
}

type UndocumentedReport struct {
	Changes     []UndocumentedChange `json:"changes"`
	Stats       GapStats             `json:"stats"`
	GeneratedAt time.Time            `json:"generated_at"`
}

type MissingDecision struct {
	Ticket      Ticket `json:"ticket"`
	CommitCount int    `json:"commit_count"`
}

type MissingDecisionsReport struct {
	Tickets     []MissingDecision `json:"tickets"`
	Stats       GapStats          `json:"stats"`
	GeneratedAt time.Time         `json:"generated_at"`
}

type StaleTicket struct {
	Ticket          Ticket        `json:"ticket"`
	DaysSinceUpdate int           `json:"days_since_update"`
	Severity        StaleSeverity `json:"severity"`
}

type StaleWorkReport struct {
	Tickets       []StaleTicket `json:"tickets"`
	Stats         GapStats      `json:"stats"`
	ThresholdDays int           `json:"threshold_days"`
	GeneratedAt   time.Time     `json:"generated_at"`
}

type GapSummary struct {
	OrphanedTickets     int `json:"orphaned_tickets"`
	UndocumentedChanges int `json:"undocumented_changes"`
	MissingDecisions    int `json:"missing_decisions"`
	StaleTickets        int `json:"stale_tickets"`
	TotalGaps           int `json:"total_gaps"`
}

type ComprehensiveGapReport struct {
	Orphaned         OrphanedTicketsReport  `json:"orphaned_tickets"`
	Undocumented     UndocumentedReport     `json:"undocumented_changes"`
	MissingDecisions MissingDecisionsReport `json:"missing_decisions"`
	Stale            StaleWorkReport        `json:"stale_work"`
	Summary          GapSummary             `json:"summary"`
	GeneratedAt      time.Time              `json:"generated_at"`
}
