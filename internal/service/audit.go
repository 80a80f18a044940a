package service

import (
	"context"

	"github.com/ury-pos/pos-core/internal/logger"
	"github.com/ury-pos/pos-core/internal/repository"
)

// Audit titles.
const (
	AuditManagerValidation = "Manager Validation Error"
	AuditVoidProcessing    = "Void Processing Error"
	AuditTimestampParse    = "KOT Timestamp Parse Error"
)

// AuditSink records unexpected internal errors under a title.
type AuditSink interface {
	LogError(ctx context.Context, title, message string)
}

// ErrorLogStore persists audit entries.
type ErrorLogStore interface {
	Append(ctx context.Context, entry *repository.ErrorLogEntry) error
}

// AuditLogger writes every entry to the log and to the error log store.
// A store failure is logged and otherwise ignored.
type AuditLogger struct {
	store ErrorLogStore
	log   *logger.Logger
}

// NewAuditLogger creates an AuditLogger. A nil store only logs.
func NewAuditLogger(store ErrorLogStore, log *logger.Logger) *AuditLogger {
	return &AuditLogger{store: store, log: log}
}

func (a *AuditLogger) LogError(ctx context.Context, title, message string) {
	a.log.Error().
		Str("title", title).
		Str("detail", message).
		Msg("Internal error recorded")

	if a.store == nil {
		return
	}
	entry := &repository.ErrorLogEntry{Title: title, Message: message}
	if err := a.store.Append(ctx, entry); err != nil {
		a.log.Warn().Err(err).
			Str("title", title).
			Msg("audit: failed to persist error log entry (non-fatal)")
	}
}
