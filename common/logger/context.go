package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers and workers enrich the context once; every slog.*Context call below them
// picks the fields up without passing them around.
type LogFields struct {
	OrganizationID *int64  // Tenant the request or task is scoped to
	EntityKind     *string // ticket, commit, pull_request, code_file, document
	EntityKey      *string // Natural key of the entity (ticket key, sha, pr number, path)
	TicketKey      *string // Ticket under decision analysis
	MessageID      *string // Redis stream message ID
	Operation      *string // Logical operation (ingest, backfill, ask, analyze)
	Component      string  // Component name, e.g. "correlate.indexer"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.OrganizationID != nil {
		result.OrganizationID = new.OrganizationID
	}
	if new.EntityKind != nil {
		result.EntityKind = new.EntityKind
	}
	if new.EntityKey != nil {
		result.EntityKey = new.EntityKey
	}
	if new.TicketKey != nil {
		result.TicketKey = new.TicketKey
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.Operation != nil {
		result.Operation = new.Operation
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

func (f LogFields) attrs() []slog.Attr {
	var attrs []slog.Attr
	if f.OrganizationID != nil {
		attrs = append(attrs, slog.Int64("organization_id", *f.OrganizationID))
	}
	if f.EntityKind != nil {
		attrs = append(attrs, slog.String("entity_kind", *f.EntityKind))
	}
	if f.EntityKey != nil {
		attrs = append(attrs, slog.String("entity_key", *f.EntityKey))
	}
	if f.TicketKey != nil {
		attrs = append(attrs, slog.String("ticket_key", *f.TicketKey))
	}
	if f.MessageID != nil {
		attrs = append(attrs, slog.String("message_id", *f.MessageID))
	}
	if f.Operation != nil {
		attrs = append(attrs, slog.String("operation", *f.Operation))
	}
	if f.Component != "" {
		attrs = append(attrs, slog.String("component", f.Component))
	}
	return attrs
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{EntityKey: logger.Ptr(key)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
