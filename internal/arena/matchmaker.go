// internal/arena/matchmaker.go
package arena

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/codebattle/arena/internal/models"
)

// quickMatchAttempts bounds how often quick match retries a lost join race
// before falling back to creating a fresh room.
const quickMatchAttempts = 3

// CreateRoom opens a manually created room with a shareable join code. The
// wager is only checked against the creator's balance here, not debited;
// coins move at resolution.
func (e *Engine) CreateRoom(ctx context.Context, requesterID uuid.UUID, filter models.ChallengeFilter, wager int64) (models.Room, error) {
	return e.createRoom(ctx, requesterID, filter, wager, true)
}

func (e *Engine) createRoom(ctx context.Context, requesterID uuid.UUID, filter models.ChallengeFilter, wager int64, withCode bool) (models.Room, error) {
	if wager < 0 {
		return models.Room{}, ErrInvalidWager
	}
	if wager > 0 {
		bal, err := e.wallet.GetBalance(ctx, requesterID)
		if err != nil {
			return models.Room{}, fmt.Errorf("wallet balance check: %w", err)
		}
		if bal < wager {
			return models.Room{}, ErrInsufficientFunds
		}
	}

	challenges, err := e.catalog.ListChallenges(ctx, filter)
	if err != nil {
		return models.Room{}, fmt.Errorf("list challenges: %w", err)
	}
	if len(challenges) == 0 {
		return models.Room{}, ErrNoChallengeAvailable
	}
	challenge := challenges[rand.Intn(len(challenges))]

	room := newRoom(models.Room{
		ID:          uuid.New(),
		ChallengeID: challenge.ID,
		Player1ID:   requesterID,
		BetAmount:   wager,
		Status:      models.RoomWaiting,
		CreatedAt:   time.Now(),
	})
	snap, err := e.store.Add(room, withCode)
	if err != nil {
		return models.Room{}, err
	}

	e.persistRoom(ctx, snap)
	e.log.WithFields(logrus.Fields{
		"room_id":   snap.ID,
		"user_id":   requesterID,
		"challenge": snap.ChallengeID,
		"bet":       wager,
	}).Info("room created")
	return snap, nil
}

// QuickMatch finds any affordable waiting room, or creates an unranked one if
// none exists. A join race lost to another quick-matcher is retried a few
// times before falling back to create, so the call never blocks and never
// fails on affordability.
func (e *Engine) QuickMatch(ctx context.Context, requesterID uuid.UUID) (models.Room, error) {
	bal, err := e.wallet.GetBalance(ctx, requesterID)
	if err != nil {
		return models.Room{}, fmt.Errorf("wallet balance check: %w", err)
	}

	for attempt := 0; attempt < quickMatchAttempts; attempt++ {
		open := e.store.FindWaiting(requesterID, bal)
		if open == nil {
			break
		}
		snap, err := e.joinExisting(ctx, requesterID, open)
		if err == nil {
			return snap, nil
		}
		// Lost the race or the wager moved out of reach; look again.
		if errors.Is(err, ErrRoomUnavailable) || errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrSelfJoin) {
			continue
		}
		return models.Room{}, err
	}

	return e.createRoom(ctx, requesterID, models.ChallengeFilter{}, 0, false)
}

// JoinRoom takes the open slot of a waiting room.
func (e *Engine) JoinRoom(ctx context.Context, requesterID, roomID uuid.UUID) (models.Room, error) {
	room, ok := e.store.Get(roomID)
	if !ok {
		return models.Room{}, ErrRoomNotFound
	}
	return e.joinExisting(ctx, requesterID, room)
}

// JoinByCode resolves a join code case-insensitively, then joins. A room that
// was joined moments earlier reports ErrCodeNotFound rather than
// ErrRoomUnavailable, so callers cannot distinguish a lost race from a bad
// code.
func (e *Engine) JoinByCode(ctx context.Context, requesterID uuid.UUID, code string) (models.Room, error) {
	room, ok := e.store.GetByCode(code)
	if !ok {
		return models.Room{}, ErrCodeNotFound
	}
	snap, err := e.joinExisting(ctx, requesterID, room)
	if errors.Is(err, ErrRoomUnavailable) {
		return models.Room{}, ErrCodeNotFound
	}
	return snap, err
}

func (e *Engine) joinExisting(ctx context.Context, requesterID uuid.UUID, room *Room) (models.Room, error) {
	pre := room.Snapshot()
	if pre.Player1ID == requesterID {
		return models.Room{}, ErrSelfJoin
	}
	if pre.BetAmount > 0 {
		bal, err := e.wallet.GetBalance(ctx, requesterID)
		if err != nil {
			return models.Room{}, fmt.Errorf("wallet balance check: %w", err)
		}
		if bal < pre.BetAmount {
			return models.Room{}, ErrInsufficientFunds
		}
	}

	snap, err := room.tryJoin(requesterID, time.Now())
	if err != nil {
		return models.Room{}, err
	}
	if snap.RoomCode != "" {
		e.store.ReleaseCode(snap.RoomCode)
	}

	e.persistRoom(ctx, snap)
	e.notify(ctx, room, Event{Type: EventPlayerJoined, Room: snap})
	e.log.WithFields(logrus.Fields{
		"room_id": snap.ID,
		"user_id": requesterID,
	}).Info("room joined")
	return snap, nil
}
