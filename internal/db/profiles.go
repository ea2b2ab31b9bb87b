package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-simulator/internal/types"
)

// GetProfile retrieves a user's cumulative profile. Returns nil when the
// user has no history.
func (db *DB) GetProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	var data []byte
	err := db.pool.QueryRow(ctx,
		`SELECT profile FROM user_profiles WHERE user_id = $1`, userID,
	).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var p types.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &p, nil
}

// absorbIntoProfile reads the user's profile inside the transaction, folds
// the session into it, and writes it back. Runs under the SaveSession
// transaction so a session is never saved without its profile update.
func (db *DB) absorbIntoProfile(ctx context.Context, tx pgx.Tx, s *types.Session) error {
	var data []byte
	p := &types.UserProfile{UserID: s.UserID}

	err := tx.QueryRow(ctx,
		`SELECT profile FROM user_profiles WHERE user_id = $1 FOR UPDATE`,
		s.UserID,
	).Scan(&data)
	switch {
	case err == pgx.ErrNoRows:
		// first session for this user
	case err != nil:
		return fmt.Errorf("failed to lock profile: %w", err)
	default:
		if err := json.Unmarshal(data, p); err != nil {
			return fmt.Errorf("failed to unmarshal profile: %w", err)
		}
	}

	p.Absorb(s)

	updated, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO user_profiles (user_id, profile, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET profile = $2, updated_at = NOW()`,
		s.UserID, updated,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
