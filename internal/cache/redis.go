// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/codebattle/arena/internal/arena"
	"github.com/codebattle/arena/internal/models"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list the historian worker drains.
var DefaultQueueName = "arena_match_history"

// MatchRecord is the queue payload for one resolved room: both participants'
// history rows plus the moment they were enqueued.
type MatchRecord struct {
	RoomID    uuid.UUID             `json:"room_id"`
	Entries   []models.HistoryEntry `json:"entries"`
	Timestamp int64                 `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// QueueName returns the history queue name, honoring HISTORIAN_QUEUE_NAME.
func QueueName() string {
	return getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName)
}

// HistoryQueue implements arena.HistoryRecorder by pushing records onto the
// Redis list. The historian worker persists them to Postgres asynchronously,
// keeping resolution latency off the participant's call path.
type HistoryQueue struct{}

func (HistoryQueue) RecordMatch(ctx context.Context, entries []models.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rec := MatchRecord{
		RoomID:    entries[0].RoomID,
		Entries:   entries,
		Timestamp: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal MatchRecord: %w", err)
	}
	if err := Rdb.RPush(ctx, QueueName(), data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", QueueName(), err)
	}
	return nil
}

// RoomChannel is the pub/sub channel carrying one room's events.
func RoomChannel(roomID uuid.UUID) string {
	return "room:" + roomID.String()
}

// Publisher implements arena.EventPublisher so other nodes and services can
// observe join/submit/resolve transitions without polling.
type Publisher struct{}

func (Publisher) PublishRoomEvent(ctx context.Context, roomID uuid.UUID, ev arena.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal room event: %w", err)
	}
	if err := Rdb.Publish(ctx, RoomChannel(roomID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish room event: %w", err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
