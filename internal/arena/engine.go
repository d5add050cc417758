// internal/arena/engine.go
package arena

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/codebattle/arena/internal/models"
	"github.com/codebattle/arena/internal/rank"
)

// Config wires the engine's collaborators. Wallet, Catalog, Grader, Ranks,
// Seasons, History, and Users are required; Rooms and Events are optional
// write-through/fan-out hooks.
type Config struct {
	Wallet  Wallet
	Catalog Catalog
	Grader  Grader
	Ranks   RankStore
	Seasons SeasonSource
	History HistoryRecorder
	Users   UserStore
	Rooms   RoomPersister
	Events  EventPublisher
	Logger  *logrus.Logger
}

// Engine coordinates rooms from creation through resolution. It is
// event-driven: every method is a bounded request/response call made by a
// participant; waiting for an opponent happens client-side.
type Engine struct {
	wallet  Wallet
	catalog Catalog
	grader  Grader
	ranks   RankStore
	seasons SeasonSource
	history HistoryRecorder
	users   UserStore
	rooms   RoomPersister
	events  EventPublisher
	log     *logrus.Logger

	store *RoomStore
}

func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		wallet:  cfg.Wallet,
		catalog: cfg.Catalog,
		grader:  cfg.Grader,
		ranks:   cfg.Ranks,
		seasons: cfg.Seasons,
		history: cfg.History,
		users:   cfg.Users,
		rooms:   cfg.Rooms,
		events:  cfg.Events,
		log:     logger,
		store:   NewRoomStore(),
	}
}

// GetRoom returns a snapshot of any known room.
func (e *Engine) GetRoom(roomID uuid.UUID) (models.Room, error) {
	room, ok := e.store.Get(roomID)
	if !ok {
		return models.Room{}, ErrRoomNotFound
	}
	return room.Snapshot(), nil
}

// OpenRooms lists rooms still waiting for an opponent.
func (e *Engine) OpenRooms() []models.Room {
	return e.store.Waiting()
}

// SubscribeRoom attaches a buffered event channel to a room; the returned
// func detaches it.
func (e *Engine) SubscribeRoom(roomID uuid.UUID, buf int) (<-chan Event, func(), error) {
	room, ok := e.store.Get(roomID)
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	ch, cancel := room.Subscribe(buf)
	return ch, cancel, nil
}

// Grade runs the injected grader against a room's challenge.
func (e *Engine) Grade(ctx context.Context, challengeID uuid.UUID, code string) (score, passed int, err error) {
	ch, err := e.catalog.GetChallenge(ctx, challengeID)
	if err != nil {
		return 0, 0, fmt.Errorf("challenge lookup: %w", err)
	}
	return e.grader.Grade(ctx, code, ch)
}

// RankFor returns the caller's standing in the active season, or a zeroed
// record if they have not played a ranked match yet.
func (e *Engine) RankFor(ctx context.Context, userID uuid.UUID) (*models.RankRecord, error) {
	season, err := e.seasons.ActiveSeason(ctx)
	if err != nil {
		return nil, fmt.Errorf("active season lookup: %w", err)
	}
	rec, err := e.ranks.GetRankRecord(ctx, userID, season.ID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = rank.NewRecord(userID, season.ID)
	}
	return rec, nil
}

// persistRoom writes a snapshot through to durable storage, if configured.
// The in-memory registry stays authoritative; persistence failures are logged
// and never fail the participant's call.
func (e *Engine) persistRoom(ctx context.Context, snap models.Room) {
	if e.rooms == nil {
		return
	}
	if err := e.rooms.SaveRoom(ctx, snap); err != nil {
		e.log.WithError(err).WithField("room_id", snap.ID).Warn("room write-through failed")
	}
}

// notify fans an event out to in-process subscribers and, if configured, the
// cross-node publisher.
func (e *Engine) notify(ctx context.Context, room *Room, ev Event) {
	room.broadcast(ev)
	if e.events == nil {
		return
	}
	if err := e.events.PublishRoomEvent(ctx, ev.Room.ID, ev); err != nil {
		e.log.WithError(err).WithField("room_id", ev.Room.ID).Warn("room event publish failed")
	}
}
