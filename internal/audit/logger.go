// Package audit records access decisions and session events, best-effort:
// a failed audit write never affects the request that produced it.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-gateway/internal/audit/domain"
	auditrepo "storefront-gateway/internal/audit/repository"
)

// Event is one access decision or session event to record.
type Event struct {
	App      string
	Path     string
	UserID   string
	Action   string
	Decision string
	Metadata string
}

// Actions and decisions recorded by the gateway.
const (
	ActionAccessCheck = "access_check"
	ActionSignIn      = "sign_in"
	ActionSignOut     = "sign_out"

	DecisionGranted               = "granted"
	DecisionDeniedUnauthenticated = "denied_unauthenticated"
	DecisionDeniedUnauthorized    = "denied_unauthorized"
)

// Recorder records audit events. Record is best-effort: implementations log
// failures and do not return them.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// Publisher forwards events to an external sink (e.g. Kafka). Optional.
type Publisher interface {
	Publish(ctx context.Context, e *domain.AuditLog) error
}

// Logger implements Recorder using the audit repository and an optional publisher.
type Logger struct {
	repo      auditrepo.Repository
	publisher Publisher
	logger    *zap.Logger
}

// NewLogger returns a Recorder that persists to repo and, when publisher is
// non-nil, also publishes each event. logger may be nil.
func NewLogger(repo auditrepo.Repository, publisher Publisher, logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{repo: repo, publisher: publisher, logger: logger}
}

// Record writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) Record(ctx context.Context, e Event) {
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		App:       e.App,
		Path:      e.Path,
		UserID:    e.UserID,
		Action:    e.Action,
		Decision:  e.Decision,
		Metadata:  e.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	if l.repo != nil {
		if err := l.repo.Create(ctx, entry); err != nil {
			l.logger.Warn("audit write failed", zap.String("action", e.Action), zap.Error(err))
		}
	}
	if l.publisher != nil {
		if err := l.publisher.Publish(ctx, entry); err != nil {
			l.logger.Warn("audit publish failed", zap.String("action", e.Action), zap.Error(err))
		}
	}
}
