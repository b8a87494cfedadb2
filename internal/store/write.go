package store

import (
	"context"
	"fmt"
	"time"

	"github.com/streakd/streakd/internal/snapshot"
	"github.com/streakd/streakd/internal/streak"
)

// SaveSnapshot upserts the latest snapshot for a user. The body is the
// canonical JSON encoding, so saving the same state twice writes identical
// bytes (last-write-wins for concurrent sessions).
func (s *Store) SaveSnapshot(ctx context.Context, userID string, data streak.StreakData, now time.Time) error {
	body, err := snapshot.EncodeStreakData(data)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (user_id, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`,
		userID,
		string(body),
		now.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

// SaveRecoveryRequest upserts a manual recovery request. Requests are
// written on creation and again when processed; the id never changes, so
// the upsert covers both.
func (s *Store) SaveRecoveryRequest(ctx context.Context, req streak.ManualRecoveryRequest) error {
	body, err := snapshot.EncodeRecoveryRequest(req)
	if err != nil {
		return fmt.Errorf("save recovery request: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recovery_requests (id, user_id, status, submitted_at, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			body = excluded.body
	`,
		req.ID,
		req.UserID,
		string(req.Status),
		req.SubmittedAt.UTC().Format(time.RFC3339Nano),
		string(body),
	)
	if err != nil {
		return fmt.Errorf("save recovery request: %w", err)
	}

	return nil
}
