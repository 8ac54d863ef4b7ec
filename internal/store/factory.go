package store

import (
	"basegraph.app/correlate/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Tickets() TicketStore {
	return newTicketStore(s.queries)
}

func (s *Stores) Commits() CommitStore {
	return newCommitStore(s.queries)
}

func (s *Stores) PullRequests() PullRequestStore {
	return newPullRequestStore(s.queries)
}

func (s *Stores) CodeFiles() CodeFileStore {
	return newCodeFileStore(s.queries)
}

func (s *Stores) Documents() DocumentStore {
	return newDocumentStore(s.queries)
}

func (s *Stores) Decisions() DecisionStore {
	return newDecisionStore(s.queries)
}

func (s *Stores) IndexStates() IndexStateStore {
	return newIndexStateStore(s.queries)
}
