package dto

import "time"

type ImportGitLabRequest struct {
	InstanceURL  string     `json:"instance_url" binding:"omitempty,url"`
	Token        string     `json:"token"`
	Project      string     `json:"project" binding:"required"`
	Ref          string     `json:"ref"`
	Since        *time.Time `json:"since"`
	MaxCommits   int        `json:"max_commits" binding:"omitempty,min=1,max=10000"`
	MaxMerges    int        `json:"max_merge_requests" binding:"omitempty,min=1,max=10000"`
	IncludeWiki  bool       `json:"include_wiki"`
	IncludeFiles bool       `json:"include_files"`
}
