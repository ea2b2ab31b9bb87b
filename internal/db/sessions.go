package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-simulator/internal/types"
)

// SessionSummary is the listing row for a user's past sessions.
type SessionSummary struct {
	ID            string              `json:"id"`
	Position      string              `json:"position"`
	Mode          types.Mode          `json:"mode"`
	Status        types.SessionStatus `json:"status"`
	FinalScore    *float64            `json:"final_score,omitempty"`
	FinalDecision string              `json:"final_decision,omitempty"`
	StartedAt     time.Time           `json:"started_at"`
}

// SaveSession persists a finished session and folds it into the user's
// profile. The session record is stored whole as JSONB alongside the
// columns used for listing.
func (db *DB) SaveSession(ctx context.Context, s *types.Session) error {
	record, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, user_id, position, mode, status, final_score,
		        final_decision, weighted_score, record, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
		        status = $5, final_score = $6, final_decision = $7,
		        weighted_score = $8, record = $9, ended_at = $11`,
		s.ID, s.UserID, s.Position, s.Mode, s.Status, s.FinalScore,
		s.FinalDecision, s.WeightedScore, record, s.StartedAt, s.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if err := db.absorbIntoProfile(ctx, tx, s); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// GetSession retrieves a stored session by ID. Returns nil when no session
// exists.
func (db *DB) GetSession(ctx context.Context, id string) (*types.Session, error) {
	var record []byte
	err := db.pool.QueryRow(ctx,
		`SELECT record FROM sessions WHERE id = $1`, id,
	).Scan(&record)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s types.Session
	if err := json.Unmarshal(record, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// ListSessions returns a user's sessions, newest first.
func (db *DB) ListSessions(ctx context.Context, userID string, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, position, mode, status, final_score, final_decision, started_at
		 FROM sessions WHERE user_id = $1
		 ORDER BY started_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.Position, &s.Mode, &s.Status,
			&s.FinalScore, &s.FinalDecision, &s.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session rows: %w", err)
	}
	return out, nil
}
