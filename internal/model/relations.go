package model

import "time"

type TimelineEvent struct {
	Kind  EntityKind `json:"kind"`
	Ref   string     `json:"ref"`
	Title string     `json:"title"`
	Actor string     `json:"actor,omitempty"`
	At    time.Time  `json:"at"`
}

// TicketRelationships is the one-hop neighbourhood of a ticket in the entity store.
type TicketRelationships struct {
	TicketKey    string          `json:"ticket_key"`
	Commits      []Commit        `json:"commits"`
	PullRequests []PullRequest   `json:"pull_requests"`
	Documents    []Document      `json:"documents"`
	CodeFiles    []string        `json:"code_files"`
	Developers   []string        `json:"developers"`
	Timeline     []TimelineEvent `json:"timeline"`
}

// GraphNode is an entity reached through the correlation graph projection.
type GraphNode struct {
	Kind  EntityKind `json:"kind"`
	Key   string     `json:"key"`
	Title string     `json:"title,omitempty"`
	Depth int        `json:"depth"`
}

type GraphEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

type RelatedEntities struct {
	Start GraphNode   `json:"start"`
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
