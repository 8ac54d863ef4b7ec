package model

// EntityKind names one of the artifact kinds the engine correlates. Each kind has
// its own table in the entity store and its own vector collection.
type EntityKind string

const (
	KindTicket      EntityKind = "ticket"
	KindCommit      EntityKind = "commit"
	KindPullRequest EntityKind = "pull_request"
	KindCodeFile    EntityKind = "code_file"
	KindDocument    EntityKind = "document"
)

// AllKinds lists every indexable kind in retrieval order.
var AllKinds = []EntityKind{KindDocument, KindTicket, KindCommit, KindPullRequest, KindCodeFile}

func (k EntityKind) Valid() bool {
	switch k {
	case KindTicket, KindCommit, KindPullRequest, KindCodeFile, KindDocument:
		return true
	}
	return false
}

// RefPrefix is the token prefix used in reference ids such as TICKET-1 or PR-3.
func (k EntityKind) RefPrefix() string {
	switch k {
	case KindTicket:
		return "TICKET"
	case KindCommit:
		return "COMMIT"
	case KindPullRequest:
		return "PR"
	case KindCodeFile:
		return "CODE"
	case KindDocument:
		return "DOC"
	}
	return "REF"
}

// KindFromRefPrefix is the inverse of RefPrefix.
func KindFromRefPrefix(prefix string) (EntityKind, bool) {
	for _, k := range AllKinds {
		if k.RefPrefix() == prefix {
			return k, true
		}
	}
	return "", false
}
