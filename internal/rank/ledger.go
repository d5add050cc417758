// internal/rank/ledger.go
package rank

import (
	"github.com/google/uuid"

	"github.com/codebattle/arena/internal/models"
)

// Point movement per ranked result. Draws move nothing.
const (
	WinPoints  = 25
	LossPoints = 15
)

// tierThresholds lists ascending point floors for each tier. A record's tier
// is always recomputed from its points, never stored independently.
var tierThresholds = []struct {
	Min  int
	Name string
}{
	{0, "Bronze"},
	{500, "Silver"},
	{1000, "Gold"},
	{1500, "Platinum"},
	{2000, "Diamond"},
	{2500, "Master"},
}

// TierForPoints maps rank points to the highest tier whose floor is met.
func TierForPoints(points int) string {
	tier := tierThresholds[0].Name
	for _, t := range tierThresholds {
		if points >= t.Min {
			tier = t.Name
		}
	}
	return tier
}

// NewRecord returns a fresh season standing for a participant's first ranked
// resolution.
func NewRecord(userID, seasonID uuid.UUID) *models.RankRecord {
	return &models.RankRecord{
		UserID:   userID,
		SeasonID: seasonID,
		RankTier: TierForPoints(0),
	}
}

// ApplyResult mutates rec for one ranked match outcome. Points are clamped at
// zero, the streak resets on any non-win, and the best streak only ever grows.
func ApplyResult(rec *models.RankRecord, result models.MatchResult) {
	switch result {
	case models.ResultWin:
		rec.Wins++
		rec.CurrentStreak++
		if rec.CurrentStreak > rec.BestStreak {
			rec.BestStreak = rec.CurrentStreak
		}
		rec.RankPoints += WinPoints
	case models.ResultLose:
		rec.Losses++
		rec.CurrentStreak = 0
		rec.RankPoints -= LossPoints
		if rec.RankPoints < 0 {
			rec.RankPoints = 0
		}
	case models.ResultDraw:
		// no counter, streak, or point movement
	}
	rec.RankTier = TierForPoints(rec.RankPoints)
}
