// internal/database/rank.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/codebattle/arena/internal/models"
)

// Ranks implements arena.RankStore over the rank_records table, keyed by
// (user_id, season_id).
type Ranks struct{}

func (Ranks) GetRankRecord(ctx context.Context, userID, seasonID uuid.UUID) (*models.RankRecord, error) {
	var r models.RankRecord
	q := `
	SELECT user_id, season_id, wins, losses, rank_points, rank_tier,
	       current_streak, best_streak
	FROM rank_records
	WHERE user_id = $1 AND season_id = $2
	`
	err := DB.QueryRow(ctx, q, userID, seasonID).Scan(
		&r.UserID, &r.SeasonID, &r.Wins, &r.Losses, &r.RankPoints, &r.RankTier,
		&r.CurrentStreak, &r.BestStreak,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (Ranks) PutRankRecord(ctx context.Context, rec *models.RankRecord) error {
	q := `
	INSERT INTO rank_records (
		user_id, season_id, wins, losses, rank_points, rank_tier,
		current_streak, best_streak
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (user_id, season_id) DO UPDATE SET
		wins           = EXCLUDED.wins,
		losses         = EXCLUDED.losses,
		rank_points    = EXCLUDED.rank_points,
		rank_tier      = EXCLUDED.rank_tier,
		current_streak = EXCLUDED.current_streak,
		best_streak    = EXCLUDED.best_streak
	`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q,
			rec.UserID, rec.SeasonID, rec.Wins, rec.Losses, rec.RankPoints,
			rec.RankTier, rec.CurrentStreak, rec.BestStreak,
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("failed to upsert rank record: %w", err)
	}
	return nil
}
