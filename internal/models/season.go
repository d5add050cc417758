package models

import (
	"time"

	"github.com/google/uuid"
)

// Season is a bounded ladder window. Exactly one season is active at a time.
type Season struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Active   bool      `json:"active"`

	// Rewards maps final ladder position to a coin payout at season end.
	Rewards map[int]int64 `json:"rewards,omitempty"`
}

// RankRecord is one participant's standing within one season. It is created
// lazily on the first ranked resolution and reset by a new season.
type RankRecord struct {
	UserID        uuid.UUID `json:"user_id"`
	SeasonID      uuid.UUID `json:"season_id"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	RankPoints    int       `json:"rank_points"`
	RankTier      string    `json:"rank_tier"`
	CurrentStreak int       `json:"current_streak"`
	BestStreak    int       `json:"best_streak"`
}
