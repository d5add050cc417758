// internal/database/season.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codebattle/arena/internal/models"
)

// Seasons implements arena.SeasonSource. Exactly one season carries the
// active flag at any time; flipping it is an operator action, not engine
// logic.
type Seasons struct{}

func (Seasons) ActiveSeason(ctx context.Context) (*models.Season, error) {
	var (
		s       models.Season
		rewards []byte
	)
	q := `
	SELECT id, name, starts_at, ends_at, active, rewards
	FROM seasons
	WHERE active = TRUE
	LIMIT 1
	`
	err := DB.QueryRow(ctx, q).Scan(&s.ID, &s.Name, &s.StartsAt, &s.EndsAt, &s.Active, &rewards)
	if err != nil {
		return nil, fmt.Errorf("active season lookup: %w", err)
	}
	if len(rewards) > 0 {
		if err := json.Unmarshal(rewards, &s.Rewards); err != nil {
			return nil, fmt.Errorf("decode season rewards: %w", err)
		}
	}
	return &s, nil
}
