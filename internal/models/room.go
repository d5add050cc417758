// internal/models/room.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus tracks the room lifecycle. Transitions only ever move forward:
// waiting -> playing -> finished.
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

// Room is one two-player duel over a single challenge. Player2ID is uuid.Nil
// until someone joins; WinnerID is uuid.Nil for a draw (meaningful only once
// the room is finished). Once finished the record never changes again.
type Room struct {
	ID          uuid.UUID  `json:"id"`
	ChallengeID uuid.UUID  `json:"challenge_id"`
	Player1ID   uuid.UUID  `json:"player1_id"`
	Player2ID   uuid.UUID  `json:"player2_id,omitempty"`
	BetAmount   int64      `json:"bet_amount"`
	Status      RoomStatus `json:"status"`
	WinnerID    uuid.UUID  `json:"winner_id,omitempty"`

	// RoomCode is a short shareable join token, present only on manually
	// created rooms and unique among currently-waiting ones.
	RoomCode string `json:"room_code,omitempty"`

	Player1Code  string `json:"player1_code,omitempty"`
	Player2Code  string `json:"player2_code,omitempty"`
	Player1Score int    `json:"player1_score"`
	Player2Score int    `json:"player2_score"`
	Player1Time  int    `json:"player1_time"` // seconds taken
	Player2Time  int    `json:"player2_time"`

	// Submission markers: a zero score is a valid submission, so presence
	// cannot be derived from the score fields.
	Player1Submitted bool `json:"player1_submitted"`
	Player2Submitted bool `json:"player2_submitted"`

	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// Ranked reports whether this room moves rank points. Zero-wager rooms
// (quick-match fallback) record history and XP only.
func (r *Room) Ranked() bool {
	return r.BetAmount > 0
}

// Opponent returns the other participant's id, or uuid.Nil if userID is not
// in the room.
func (r *Room) Opponent(userID uuid.UUID) uuid.UUID {
	switch userID {
	case r.Player1ID:
		return r.Player2ID
	case r.Player2ID:
		return r.Player1ID
	}
	return uuid.Nil
}
