package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLose MatchResult = "lose"
	ResultDraw MatchResult = "draw"
)

// HistoryEntry is one participant's view of a finished room. Entries are
// append-only; two are written per resolution, one per participant.
type HistoryEntry struct {
	RoomID      uuid.UUID   `json:"room_id"`
	UserID      uuid.UUID   `json:"user_id"`
	OpponentID  uuid.UUID   `json:"opponent_id"`
	ChallengeID uuid.UUID   `json:"challenge_id"`
	Result      MatchResult `json:"result"`
	XPEarned    int64       `json:"xp_earned"`
	CoinsEarned int64       `json:"coins_earned"` // signed net wager delta
	TimeTaken   int         `json:"time_taken"`
	Score       int         `json:"score"`
	CreatedAt   time.Time   `json:"created_at"`
}
