// Package synth answers natural-language questions from retrieved sources and
// turns the model's reference tokens into links.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/common/llm"
	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/retriever"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultMaxTokens   = 1000
	defaultTemperature = 0.2
	maxQuestionRunes   = 2000
	maxCorrelated      = 3
	maxNeighbours      = 8

	noSourcesAnswer = "No relevant tickets, commits, pull requests, code or documents were found for this question."
)

type Retriever interface {
	Retrieve(ctx context.Context, orgID int64, query string, filter retriever.Filter) (*model.RetrievalResult, error)
}

// Correlator expands a retrieved ticket into the entities linked to it.
type Correlator interface {
	Related(ctx context.Context, orgID int64, kind model.EntityKind, key string, depth int) (*model.RelatedEntities, error)
}

type Deps struct {
	Retriever     Retriever
	LLM           llm.Client
	Correlator    Correlator // optional
	// Conversations defaults to an in-process store.
	Conversations Conversations
}

type Config struct {
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

type Synthesizer struct {
	retriever     Retriever
	llm           llm.Client
	correlator    Correlator
	conversations Conversations
	cfg           Config
}

// Query is one question. An empty SessionID starts a new conversation; the
// answer carries the id to send with follow-ups.
type Query struct {
	Question  string
	Filter    retriever.Filter
	SessionID string
}

func New(deps Deps, cfg Config) (*Synthesizer, error) {
	if deps.Retriever == nil {
		return nil, errors.New("synthesizer requires a retriever")
	}
	if deps.LLM == nil {
		return nil, errors.New("synthesizer requires an llm client")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if deps.Conversations == nil {
		deps.Conversations = NewMemoryConversations()
	}
	return &Synthesizer{
		retriever:     deps.Retriever,
		llm:           deps.LLM,
		correlator:    deps.Correlator,
		conversations: deps.Conversations,
		cfg:           cfg,
	}, nil
}

// Ask retrieves sources for the question, asks the model to answer from them
// only and resolves the [KIND-n] tokens it cites. Sources that failed to load
// are reported in Degraded rather than failing the call. The last two turns
// of the session are part of the prompt.
func (s *Synthesizer) Ask(ctx context.Context, orgID int64, q Query) (*model.Answer, error) {
	question := strings.TrimSpace(q.Question)
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	if question == "" {
		return nil, domain.Invalid("question", "required")
	}
	if utf8.RuneCountInString(question) > maxQuestionRunes {
		return nil, domain.Invalid("question", fmt.Sprintf("must be at most %d characters", maxQuestionRunes))
	}
	sessionID := strings.TrimSpace(q.SessionID)
	if sessionID != "" && !sessionIDPattern.MatchString(sessionID) {
		return nil, domain.Invalid("session_id", "must be 1-64 letters, digits, dashes or underscores")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		OrganizationID: &orgID,
		Operation:      logger.Ptr("ask"),
		Component:      "correlate.synth",
	})
	span := logger.StartSpan(ctx, "synth.ask")
	defer span.End()
	ctx = span.Context()

	res, err := s.retriever.Retrieve(ctx, orgID, question, q.Filter)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("retrieve sources: %w", err)
	}

	var history []Turn
	if sessionID == "" {
		sessionID = newSessionID()
	} else {
		history = s.history(ctx, orgID, sessionID)
	}

	answer := &model.Answer{
		Question:      question,
		SessionID:     sessionID,
		Sources:       res.Sources,
		Attribution:   res.Attribution,
		ResolvedLinks: map[string]string{},
		Degraded:      res.Degraded,
	}
	if len(res.Sources) == 0 {
		answer.RawAnswer = noSourcesAnswer
		answer.Answer = noSourcesAnswer
		s.remember(ctx, orgID, sessionID, Turn{Question: question, Answer: noSourcesAnswer})
		return answer, nil
	}

	prompt := buildPrompt(question, res.Context, s.correlatedFacts(ctx, orgID, res.Sources), history)

	llmCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	raw, resp, err := s.llm.Complete(llmCtx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    s.cfg.MaxTokens,
		Temperature:  llm.Temp(s.cfg.Temperature),
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.Timeout("llm", err)
		}
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty answer: %w", domain.ErrAnalysisFailure)
	}

	links := res.Links()
	answer.RawAnswer = raw
	answer.Answer = retriever.InjectLinks(raw, links)
	for _, ref := range retriever.References(raw) {
		if url, ok := links[ref]; ok {
			answer.ResolvedLinks[ref] = url
		}
	}

	attrs := []any{
		"sources", len(res.Sources),
		"cited", len(answer.ResolvedLinks),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if resp != nil {
		attrs = append(attrs, "prompt_tokens", resp.PromptTokens, "completion_tokens", resp.CompletionTokens)
	}
	slog.InfoContext(ctx, "answer generated", attrs...)

	s.remember(ctx, orgID, sessionID, Turn{Question: question, Answer: common.Excerpt(raw, maxTurnAnswer)})
	return answer, nil
}

// history is best effort: a lost session only loses follow-up context.
func (s *Synthesizer) history(ctx context.Context, orgID int64, sessionID string) []Turn {
	turns, err := s.conversations.History(ctx, orgID, sessionID, historyTurns)
	if err != nil {
		slog.WarnContext(ctx, "conversation history unavailable", "error", err, "session_id", sessionID)
		return nil
	}
	return turns
}

func (s *Synthesizer) remember(ctx context.Context, orgID int64, sessionID string, turn Turn) {
	if err := s.conversations.Append(ctx, orgID, sessionID, turn); err != nil {
		slog.WarnContext(ctx, "conversation turn not saved", "error", err, "session_id", sessionID)
	}
}

// correlatedFacts lists what the first few retrieved tickets are linked to.
// It is best effort: lookup failures only shrink the prompt.
func (s *Synthesizer) correlatedFacts(ctx context.Context, orgID int64, sources []model.SourceRef) []string {
	if s.correlator == nil {
		return nil
	}
	var facts []string
	for _, src := range sources {
		if src.Kind != model.KindTicket {
			continue
		}
		if len(facts) == maxCorrelated {
			break
		}
		rel, err := s.correlator.Related(ctx, orgID, src.Kind, src.Key, 1)
		if err != nil {
			slog.DebugContext(ctx, "correlation lookup skipped", "ticket_key", src.Key, "error", err)
			continue
		}
		var linked []string
		for _, n := range rel.Nodes {
			if len(linked) == maxNeighbours {
				break
			}
			linked = append(linked, fmt.Sprintf("%s %s", n.Kind, n.Key))
		}
		if len(linked) == 0 {
			continue
		}
		facts = append(facts, fmt.Sprintf("[%s] %s is linked to: %s", src.RefID, src.Key, strings.Join(linked, ", ")))
	}
	return facts
}

func buildPrompt(question, sources string, facts []string, history []Turn) string {
	var sb strings.Builder
	if len(history) > 0 {
		sb.WriteString("## Conversation\n\n")
		for _, t := range history {
			sb.WriteString("Q: ")
			sb.WriteString(t.Question)
			sb.WriteString("\nA: ")
			sb.WriteString(t.Answer)
			sb.WriteString("\n\n")
		}
	}
	sb.WriteString("## Sources\n\n")
	sb.WriteString(sources)
	sb.WriteString("\n")
	if len(facts) > 0 {
		sb.WriteString("\n## Correlations\n")
		for _, f := range facts {
			sb.WriteString("- ")
			sb.WriteString(f)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n## Question\n")
	sb.WriteString(question)
	sb.WriteString("\n")
	return sb.String()
}

const systemPrompt = `You answer questions about an engineering organization using only the sources provided.

Each source starts with a reference id in square brackets, such as [TICKET-1], [COMMIT-2], [PR-1],
[CODE-3] or [DOC-1]. Cite a source by writing its reference id in square brackets right after the
statement it supports. Cite only ids that appear in the sources. Do not write URLs.

If the sources do not contain the answer, say so plainly instead of guessing. Prefer short paragraphs
and bullet lists.

A Conversation section, when present, holds earlier questions in this session. Use it to resolve what a
follow-up refers to, but cite only the sources listed for the current question.`
