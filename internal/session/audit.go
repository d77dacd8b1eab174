package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "finsync-advisor/internal/common/errors"
	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/conversation"
)

// Audit event kinds. Forced transitions are recorded distinctly so the
// escape hatch stays visible in the trail.
const (
	AuditTransition       = "transition"
	AuditForcedTransition = "forced_transition"
	AuditDecision         = "decision"
	AuditDelivery         = "delivery"
)

type AuditEvent struct {
	SessionID string                 `json:"sessionId"`
	Kind      string                 `json:"kind"`
	From      conversation.State     `json:"from,omitempty"`
	To        conversation.State     `json:"to,omitempty"`
	Decision  string                 `json:"decision,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Auditor appends conversation events to an Elasticsearch index. Audit
// writes never block a turn; callers log the returned error and move on.
type Auditor struct {
	es    *elasticsearch.Client
	index string
	log   logger.Logger
}

func NewAuditor(es *elasticsearch.Client, index string, log logger.Logger) *Auditor {
	return &Auditor{es: es, index: index, log: log}
}

func (a *Auditor) Record(ctx context.Context, event AuditEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewAuditWriteFailedError(fmt.Errorf("marshal audit event: %w", err))
	}

	res, err := a.es.Index(
		a.index,
		bytes.NewReader(payload),
		a.es.Index.WithContext(ctx),
	)
	if err != nil {
		return apperrors.NewAuditWriteFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewAuditWriteFailedError(fmt.Errorf("index %s: %s", a.index, res.Status()))
	}
	return nil
}

// record is the fire-and-forget wrapper used inside a turn.
func (a *Auditor) record(ctx context.Context, event AuditEvent) {
	if a == nil {
		return
	}
	if err := a.Record(ctx, event); err != nil {
		a.log.Warn("audit write failed", map[string]interface{}{
			"sessionId": event.SessionID,
			"kind":      event.Kind,
			"error":     err.Error(),
		})
	}
}
