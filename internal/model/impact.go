package model

import "time"

type BlastRadius string

const (
	BlastRadiusSmall     BlastRadius = "small"
	BlastRadiusMedium    BlastRadius = "medium"
	BlastRadiusLarge     BlastRadius = "large"
	BlastRadiusVeryLarge BlastRadius = "very_large"
)

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

type FileCategory string

const (
	FileCategorySource        FileCategory = "source_code"
	FileCategoryTests         FileCategory = "tests"
	FileCategoryDocumentation FileCategory = "documentation"
	FileCategoryConfig        FileCategory = "config"
	FileCategoryMigration     FileCategory = "migration"
	FileCategoryOther         FileCategory = "other"
)

type Reviewer struct {
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CommitCount    int       `json:"commit_count"`
	LastCommitDate time.Time `json:"last_commit_date"`
}

type CoChange struct {
	FilePath string `json:"file_path"`
	Count    int    `json:"count"`
}

type FileImpact struct {
	FilePath           string     `json:"file_path"`
	TotalCommits       int        `json:"total_commits"`
	RelatedTickets     []Ticket   `json:"related_tickets"`
	RecentCommits      []Commit   `json:"recent_commits"`
	Developers         []Reviewer `json:"developers"`
	CoChangedFiles     []CoChange `json:"co_changed_files"`
	SuggestedReviewers []Reviewer `json:"suggested_reviewers"`
}

type SimilarTicket struct {
	Ticket           Ticket   `json:"ticket"`
	Similarity       float64  `json:"similarity"`
	SharedComponents []string `json:"shared_components,omitempty"`
}

type TicketImpact struct {
	Ticket             Ticket          `json:"ticket"`
	Commits            []Commit        `json:"commits"`
	PullRequests       []PullRequest   `json:"pull_requests"`
	AffectedFiles      []string        `json:"affected_files"`
	TotalAdditions     int             `json:"total_additions"`
	TotalDeletions     int             `json:"total_deletions"`
	BlastRadius        BlastRadius     `json:"blast_radius"`
	SimilarTickets     []SimilarTicket `json:"similar_tickets"`
	DependentTickets   []string        `json:"dependent_tickets"`
	AlreadyImplemented bool            `json:"already_implemented"`
}

type RiskFactor struct {
	Factor string `json:"factor"`
	Points int    `json:"points"`
}

type CommitImpact struct {
	Commit         Commit                    `json:"commit"`
	FileCategories map[FileCategory][]string `json:"file_categories"`
	RiskScore      int                       `json:"risk_score"`
	RiskLevel      RiskLevel                 `json:"risk_level"`
	RiskFactors    []RiskFactor              `json:"risk_factors"`
	RelatedTickets []Ticket                  `json:"related_tickets"`
	Reviewers      []Reviewer                `json:"suggested_reviewers"`
}
