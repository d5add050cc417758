package models

import "github.com/google/uuid"

type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`

	IsEphemeral bool `json:"is_ephemeral"`
	IsAdmin     bool `json:"is_admin"`

	// Coins is the wallet balance wagered in ranked matches.
	Coins int64 `json:"coins"`
	// XP accumulates across every resolved match and is never wagered.
	XP int64 `json:"xp"`
}
