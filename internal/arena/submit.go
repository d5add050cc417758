// internal/arena/submit.go
package arena

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/codebattle/arena/internal/models"
)

// Submit records one participant's finished attempt: opaque code, elapsed
// seconds, and a pre-computed score. A repeat submission from the same
// participant overwrites its earlier slot. When the second slot fills, the
// caller's goroutine drives resolution; the playing -> finished gate keeps
// that exactly-once no matter how many submit retries race here.
func (e *Engine) Submit(ctx context.Context, roomID, userID uuid.UUID, code string, elapsedSec, score int) (models.Room, error) {
	room, ok := e.store.Get(roomID)
	if !ok {
		return models.Room{}, ErrRoomNotFound
	}

	snap, both, err := room.putSubmission(userID, code, elapsedSec, score)
	if err != nil {
		return models.Room{}, err
	}

	e.persistRoom(ctx, snap)
	e.notify(ctx, room, Event{Type: EventSubmission, Room: snap})
	e.log.WithFields(logrus.Fields{
		"room_id": snap.ID,
		"user_id": userID,
		"score":   score,
		"both":    both,
	}).Info("submission recorded")

	if !both {
		// The opponent is still working; their client will call in.
		return snap, nil
	}

	if err := e.resolve(ctx, room); err != nil {
		if errors.Is(err, ErrAlreadyResolved) {
			// A concurrent submitter won the gate; their resolution stands.
			return room.Snapshot(), nil
		}
		return room.Snapshot(), err
	}
	return room.Snapshot(), nil
}
