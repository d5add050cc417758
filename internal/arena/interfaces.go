// internal/arena/interfaces.go
package arena

import (
	"context"

	"github.com/google/uuid"

	"github.com/codebattle/arena/internal/models"
)

// Collaborator contracts consumed by the engine. Production implementations
// live in internal/database and internal/cache; the in-memory versions in
// memory.go back tests and coinless local play.

// Wallet is the virtual-currency gate. SettleWager must be atomic: either
// both deltas land or neither does, so a failed settlement never leaves a
// half-transferred wager.
type Wallet interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	ApplyDelta(ctx context.Context, userID uuid.UUID, delta int64) error
	SettleWager(ctx context.Context, winnerID, loserID uuid.UUID, amount int64) error
}

// Catalog serves challenge definitions. The engine only reads from it.
type Catalog interface {
	ListChallenges(ctx context.Context, filter models.ChallengeFilter) ([]models.Challenge, error)
	GetChallenge(ctx context.Context, id uuid.UUID) (models.Challenge, error)
}

// Grader scores submitted code against a challenge's test cases. The engine
// treats it as an opaque oracle and never inspects code content itself.
type Grader interface {
	Grade(ctx context.Context, code string, challenge models.Challenge) (score, passed int, err error)
}

// RankStore persists per-season standings. GetRankRecord returns (nil, nil)
// when the participant has no record yet; the engine creates one lazily.
type RankStore interface {
	GetRankRecord(ctx context.Context, userID, seasonID uuid.UUID) (*models.RankRecord, error)
	PutRankRecord(ctx context.Context, rec *models.RankRecord) error
}

// SeasonSource resolves the single currently-active season.
type SeasonSource interface {
	ActiveSeason(ctx context.Context) (*models.Season, error)
}

// HistoryRecorder appends the per-participant audit rows of a finished room.
type HistoryRecorder interface {
	RecordMatch(ctx context.Context, entries []models.HistoryEntry) error
}

// UserStore applies XP rewards; XP is unconditional and never wagered.
type UserStore interface {
	AddXP(ctx context.Context, userID uuid.UUID, amount int64) error
}

// RoomPersister writes room snapshots through to durable storage. Optional;
// the in-memory registry stays authoritative during play.
type RoomPersister interface {
	SaveRoom(ctx context.Context, room models.Room) error
}

// EventPublisher fans room events out beyond in-process subscribers, e.g. to
// a Redis channel other nodes listen on. Optional.
type EventPublisher interface {
	PublishRoomEvent(ctx context.Context, roomID uuid.UUID, ev Event) error
}
