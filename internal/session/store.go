// Package session owns conversation persistence, the audit trail, and
// the turn-processing engine that drives the advisor.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "finsync-advisor/internal/common/errors"
	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/conversation"
	"finsync-advisor/internal/conversation/spin"
)

const keyPrefix = "advisor:session:"

// Record is the persisted snapshot of one conversation.
type Record struct {
	SessionID string                `json:"sessionId"`
	State     conversation.State    `json:"state"`
	SPINStage spin.Stage            `json:"spinStage"`
	Context   *conversation.Context `json:"context"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
	log logger.Logger
}

func NewStore(rdb *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	return &Store{rdb: rdb, ttl: ttl, log: log}
}

// Save writes the snapshot and refreshes the idle TTL.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	rec.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(rec)
	if err != nil {
		return apperrors.NewSessionStoreFailedError(fmt.Errorf("marshal session: %w", err))
	}

	if err := s.rdb.Set(ctx, keyPrefix+rec.SessionID, payload, s.ttl).Err(); err != nil {
		s.log.Error("session save failed", map[string]interface{}{
			"sessionId": rec.SessionID,
			"error":     err.Error(),
		})
		return apperrors.NewSessionStoreFailedError(err)
	}
	return nil
}

// Load returns the stored snapshot, or nil when the session is unknown
// or has expired. A miss starts a fresh conversation, it is not an error.
func (s *Store) Load(ctx context.Context, sessionID string) (*Record, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// Corrupt snapshot: drop it rather than wedge the session.
		s.log.Warn("discarding corrupt session snapshot", map[string]interface{}{
			"sessionId": sessionID,
		})
		_ = s.rdb.Del(ctx, keyPrefix+sessionID).Err()
		return nil, nil
	}
	return &rec, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	return nil
}
