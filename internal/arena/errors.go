// internal/arena/errors.go
package arena

import "errors"

// Every failure below is a rejected operation that leaves the room in its
// prior, still-consistent state. None are retried by the engine itself.
var (
	ErrSelfJoin             = errors.New("cannot join your own room")
	ErrRoomUnavailable      = errors.New("room is not open to join")
	ErrInsufficientFunds    = errors.New("insufficient coin balance")
	ErrNoChallengeAvailable = errors.New("no challenge matches the filter")
	ErrCodeNotFound         = errors.New("no waiting room with that code")
	ErrAlreadyResolved      = errors.New("room already resolved")
	ErrRoomNotFound         = errors.New("room not found")
	ErrNotParticipant       = errors.New("user is not a participant of this room")
	ErrInvalidWager         = errors.New("wager must not be negative")
)
