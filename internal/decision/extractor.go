package decision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/correlate/common/llm"
	"basegraph.app/correlate/internal/domain"
)

// Extraction is the structured rationale returned by the model.
type Extraction struct {
	ProblemStatement       string     `json:"problem_statement" jsonschema_description:"The problem the ticket set out to solve"`
	AlternativesConsidered []string   `json:"alternatives_considered" jsonschema_description:"Approaches that were discussed but not chosen"`
	ChosenApproach         string     `json:"chosen_approach" jsonschema_description:"The approach that was implemented"`
	Rationale              string     `json:"rationale" jsonschema_description:"Why the chosen approach won over the alternatives"`
	Constraints            []string   `json:"constraints" jsonschema_description:"Technical or business constraints that shaped the decision"`
	Risks                  []RiskItem `json:"risks" jsonschema_description:"Known risks and how they are mitigated"`
	Tradeoffs              []string   `json:"tradeoffs" jsonschema_description:"What was given up in exchange for the chosen approach"`
	ConfidenceScore        float64    `json:"confidence_score" jsonschema_description:"How well the evidence supports this reading, 0.0-1.0"`
}

type RiskItem struct {
	Risk       string `json:"risk"`
	Mitigation string `json:"mitigation"`
}

// Extractor turns a bounded context into an Extraction. Implementations
// return a domain timeout when ctx expires.
type Extractor interface {
	Extract(ctx context.Context, in Context) (*Extraction, error)
}

var extractionSchema = llm.GenerateSchema[Extraction]()

const (
	extractAttempts    = 3
	extractMaxTokens   = 2000
	extractTemperature = 0.1
)

type LLMExtractor struct {
	llm llm.Client
}

func NewLLMExtractor(client llm.Client) *LLMExtractor {
	return &LLMExtractor{llm: client}
}

func (e *LLMExtractor) Extract(ctx context.Context, in Context) (*Extraction, error) {
	prompt := in.Render()

	var out Extraction
	var resp *llm.Response
	var err error
	start := time.Now()

	for attempt := 0; attempt < extractAttempts; attempt++ {
		resp, err = e.llm.Chat(ctx, llm.Request{
			SystemPrompt: extractionSystemPrompt,
			UserPrompt:   prompt,
			SchemaName:   "decision_extraction",
			Schema:       extractionSchema,
			MaxTokens:    extractMaxTokens,
			Temperature:  llm.Temp(extractTemperature),
		}, &out)
		if err == nil {
			break
		}
		if malformed(err) {
			return nil, fmt.Errorf("decode extraction: %w: %w", domain.ErrAnalysisFailure, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.Timeout("llm", err)
		}
		if !llm.IsRetryable(ctx, err) {
			return nil, fmt.Errorf("decision extraction: %w", err)
		}
		slog.WarnContext(ctx, "decision extraction retry",
			"ticket_key", in.Ticket.Key,
			"attempt", attempt+1,
			"error", err)

		select {
		case <-ctx.Done():
			return nil, domain.Timeout("llm", ctx.Err())
		case <-time.After(time.Duration(1<<attempt) * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decision extraction after %d attempts: %w", extractAttempts, err)
	}

	attrs := []any{
		"ticket_key", in.Ticket.Key,
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if resp != nil {
		attrs = append(attrs, "prompt_tokens", resp.PromptTokens, "completion_tokens", resp.CompletionTokens)
	}
	slog.InfoContext(ctx, "decision extracted", attrs...)

	return &out, nil
}

func malformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

const extractionSystemPrompt = `You reconstruct the design decision behind a software ticket from the
evidence around it: the ticket itself, the commits and pull requests that implemented it, and related
documentation.

Fill every field from the evidence only. When a field is not supported by the evidence, answer
"Not explicitly documented" for text fields and an empty list for list fields.

- problem_statement: what was broken or missing, in one or two sentences
- alternatives_considered: other approaches mentioned anywhere in the evidence
- chosen_approach: what was actually built, as seen in commits and pull requests
- rationale: why this approach, quoting reasons given in the evidence
- constraints: deadlines, compatibility, compliance, performance limits
- risks: each risk with its mitigation, or "None documented" as the mitigation
- tradeoffs: what the team accepted in exchange
- confidence_score: 0.9+ when the rationale is stated outright, 0.5 when inferred from code changes,
  below 0.3 when the evidence is thin`
