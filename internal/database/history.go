// internal/database/history.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/codebattle/arena/internal/models"
)

// History implements arena.HistoryRecorder directly against Postgres. The
// production server usually records through the Redis queue instead (see
// internal/cache) and lets the historian worker call InsertHistoryEntries.
type History struct{}

func (History) RecordMatch(ctx context.Context, entries []models.HistoryEntry) error {
	return InsertHistoryEntries(ctx, entries)
}

func (History) GetUserHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.HistoryEntry, error) {
	return GetUserHistory(ctx, userID, limit)
}

// InsertHistoryEntries appends the per-participant rows of one finished room
// in a single transaction. Rows are never updated afterward.
func InsertHistoryEntries(ctx context.Context, entries []models.HistoryEntry) error {
	q := `
	INSERT INTO match_history (
		room_id, user_id, opponent_id, challenge_id,
		result, xp_earned, coins_earned, time_taken, score, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, e := range entries {
			if _, execErr := tx.Exec(ctx, q,
				e.RoomID, e.UserID, e.OpponentID, e.ChallengeID,
				string(e.Result), e.XPEarned, e.CoinsEarned, e.TimeTaken, e.Score, e.CreatedAt,
			); execErr != nil {
				return execErr
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert history entries: %w", err)
	}
	return nil
}

// GetUserHistory returns a participant's most recent finished matches.
func GetUserHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `
	SELECT room_id, user_id, opponent_id, challenge_id,
	       result, xp_earned, coins_earned, time_taken, score, created_at
	FROM match_history
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`
	rows, err := DB.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.HistoryEntry
	for rows.Next() {
		var (
			e      models.HistoryEntry
			result string
		)
		if err := rows.Scan(
			&e.RoomID, &e.UserID, &e.OpponentID, &e.ChallengeID,
			&result, &e.XPEarned, &e.CoinsEarned, &e.TimeTaken, &e.Score, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Result = models.MatchResult(result)
		out = append(out, e)
	}
	return out, rows.Err()
}
