// internal/handlers/api_server.go
package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/codebattle/arena/internal/arena"
	"github.com/codebattle/arena/internal/models"
)

// HistoryReader serves a participant's past matches. The production server
// plugs in the Postgres reader; tests use an in-memory one.
type HistoryReader interface {
	GetUserHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.HistoryEntry, error)
}

// GuestFactory mints ephemeral guest accounts for token-less callers, so a
// visitor can quick-match without registering first.
type GuestFactory interface {
	CreateGuest(ctx context.Context) (models.User, error)
}

// RoomReader serves rooms that predate this process, e.g. finished duels
// persisted before a restart.
type RoomReader interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
}

// ArenaServer bundles the engine and its read-side collaborators for the
// HTTP and WebSocket handlers. Guests and Rooms are optional; without them
// guest quick-match and post-restart room reads are disabled.
type ArenaServer struct {
	Engine  *arena.Engine
	History HistoryReader
	Guests  GuestFactory
	Rooms   RoomReader
	Logger  *logrus.Logger
}

func NewArenaServer(engine *arena.Engine, history HistoryReader, logger *logrus.Logger) *ArenaServer {
	if logger == nil {
		logger = logrus.New()
	}
	return &ArenaServer{
		Engine:  engine,
		History: history,
		Logger:  logger,
	}
}
