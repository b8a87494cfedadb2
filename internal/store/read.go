package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/streakd/streakd/internal/snapshot"
	"github.com/streakd/streakd/internal/streak"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// LoadSnapshot reads the latest snapshot for a user.
// Returns ErrNotFound when the user has no snapshot yet.
func (s *Store) LoadSnapshot(ctx context.Context, userID string) (streak.StreakData, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM snapshots WHERE user_id = ?`, userID,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return streak.StreakData{}, fmt.Errorf("load snapshot for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return streak.StreakData{}, fmt.Errorf("load snapshot: %w", err)
	}

	data, err := snapshot.DecodeStreakData([]byte(body))
	if err != nil {
		return streak.StreakData{}, fmt.Errorf("load snapshot: %w", err)
	}
	return data, nil
}

// GetRecoveryRequest reads one request by id.
// Returns ErrNotFound when no such request exists.
func (s *Store) GetRecoveryRequest(ctx context.Context, id string) (streak.ManualRecoveryRequest, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM recovery_requests WHERE id = ?`, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return streak.ManualRecoveryRequest{}, fmt.Errorf("recovery request %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return streak.ManualRecoveryRequest{}, fmt.Errorf("get recovery request: %w", err)
	}

	req, err := snapshot.DecodeRecoveryRequest([]byte(body))
	if err != nil {
		return streak.ManualRecoveryRequest{}, fmt.Errorf("get recovery request: %w", err)
	}
	return req, nil
}

// ListRecoveryRequests reads requests in submission order, oldest first.
// An empty status lists all requests; otherwise only those in that state.
func (s *Store) ListRecoveryRequests(ctx context.Context, status streak.RecoveryStatus) ([]streak.ManualRecoveryRequest, error) {
	query := `SELECT body FROM recovery_requests ORDER BY submitted_at, id`
	args := []any{}
	if status != "" {
		query = `SELECT body FROM recovery_requests WHERE status = ? ORDER BY submitted_at, id`
		args = append(args, string(status))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recovery requests: %w", err)
	}
	defer rows.Close()

	var out []streak.ManualRecoveryRequest
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("list recovery requests: %w", err)
		}
		req, err := snapshot.DecodeRecoveryRequest([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("list recovery requests: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recovery requests: %w", err)
	}
	return out, nil
}
