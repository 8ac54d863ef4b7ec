package model

// SearchHit is one ranked match from the vector index, optionally fused with a
// keyword score from the entity store.
type SearchHit struct {
	Kind          EntityKind     `json:"kind"`
	Key           string         `json:"key"`
	Title         string         `json:"title"`
	Excerpt       string         `json:"excerpt"`
	URL           *string        `json:"url,omitempty"`
	Score         float64        `json:"score"`
	SemanticScore float64        `json:"semantic_score"`
	KeywordScore  float64        `json:"keyword_score,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// SourceRef is a retrieved source addressed by a reference id such as TICKET-1.
type SourceRef struct {
	RefID   string     `json:"ref_id"`
	Kind    EntityKind `json:"kind"`
	Key     string     `json:"key"`
	Title   string     `json:"title"`
	Excerpt string     `json:"excerpt"`
	URL     *string    `json:"url,omitempty"`
	Score   float64    `json:"score"`
}

// SourceAttribution counts contributing sources per kind.
type SourceAttribution map[EntityKind]int

type RetrievalResult struct {
	Query       string            `json:"query"`
	Sources     []SourceRef       `json:"sources"`
	Context     string            `json:"context"`
	Attribution SourceAttribution `json:"source_attribution"`
	// Degraded lists kinds whose search failed or timed out.
	Degraded []EntityKind `json:"degraded,omitempty"`
}

// Links maps reference ids to their source URL for every source that has one.
func (r RetrievalResult) Links() map[string]string {
	links := make(map[string]string, len(r.Sources))
	for _, s := range r.Sources {
		if s.URL != nil && *s.URL != "" {
			links[s.RefID] = *s.URL
		}
	}
	return links
}

type Answer struct {
	Question      string            `json:"question"`
	SessionID     string            `json:"session_id"`
	RawAnswer     string            `json:"raw_answer"`
	Answer        string            `json:"answer"`
	Sources       []SourceRef       `json:"sources"`
	Attribution   SourceAttribution `json:"source_attribution"`
	ResolvedLinks map[string]string `json:"resolved_links"`
	Degraded      []EntityKind      `json:"degraded,omitempty"`
}
