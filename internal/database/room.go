// internal/database/room.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/codebattle/arena/internal/models"
)

// Rooms implements arena.RoomPersister: the in-memory registry stays
// authoritative during play, and every transition is written through here so
// finished rooms survive restarts as read-only history context.
type Rooms struct{}

func (Rooms) SaveRoom(ctx context.Context, room models.Room) error {
	q := `
	INSERT INTO rooms (
		id, challenge_id, player1_id, player2_id, bet_amount, status,
		winner_id, room_code,
		player1_code, player2_code,
		player1_score, player2_score,
		player1_time, player2_time,
		created_at, started_at
	)
	VALUES ($1, $2, $3, $4, $5, $6,
	        $7, $8,
	        $9, $10, $11, $12, $13, $14,
	        $15, $16)
	ON CONFLICT (id) DO UPDATE SET
		player2_id    = EXCLUDED.player2_id,
		status        = EXCLUDED.status,
		winner_id     = EXCLUDED.winner_id,
		player1_code  = EXCLUDED.player1_code,
		player2_code  = EXCLUDED.player2_code,
		player1_score = EXCLUDED.player1_score,
		player2_score = EXCLUDED.player2_score,
		player1_time  = EXCLUDED.player1_time,
		player2_time  = EXCLUDED.player2_time,
		started_at    = EXCLUDED.started_at
	`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q,
			room.ID, room.ChallengeID, room.Player1ID, nullableUUID(room.Player2ID),
			room.BetAmount, string(room.Status),
			nullableUUID(room.WinnerID), nullableStr(room.RoomCode),
			nullableStr(room.Player1Code), nullableStr(room.Player2Code),
			room.Player1Score, room.Player2Score,
			room.Player1Time, room.Player2Time,
			room.CreatedAt, room.StartedAt,
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("failed to upsert room %s: %w", room.ID, err)
	}
	return nil
}

// GetRoom fetches a persisted room by id. The handlers fall back to it for
// rooms that finished before this process started.
func (Rooms) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var (
		r       models.Room
		player2 *uuid.UUID
		winner  *uuid.UUID
		code    *string
		p1Code  *string
		p2Code  *string
	)
	q := `
	SELECT id, challenge_id, player1_id, player2_id, bet_amount, status,
	       winner_id, room_code,
	       player1_code, player2_code,
	       player1_score, player2_score,
	       player1_time, player2_time,
	       created_at, started_at
	FROM rooms
	WHERE id = $1
	`
	var status string
	err := DB.QueryRow(ctx, q, id).Scan(
		&r.ID, &r.ChallengeID, &r.Player1ID, &player2, &r.BetAmount, &status,
		&winner, &code,
		&p1Code, &p2Code,
		&r.Player1Score, &r.Player2Score,
		&r.Player1Time, &r.Player2Time,
		&r.CreatedAt, &r.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = models.RoomStatus(status)
	if player2 != nil {
		r.Player2ID = *player2
	}
	if winner != nil {
		r.WinnerID = *winner
	}
	if code != nil {
		r.RoomCode = *code
	}
	if p1Code != nil {
		r.Player1Code = *p1Code
		r.Player1Submitted = true
	}
	if p2Code != nil {
		r.Player2Code = *p2Code
		r.Player2Submitted = true
	}
	return &r, nil
}

// MarkStaleWaitingRooms flags rooms nobody ever joined as abandoned. Called
// by the historian worker; the engine itself never expires rooms.
func MarkStaleWaitingRooms(ctx context.Context, cutoff time.Time) (int64, error) {
	q := `
	UPDATE rooms
	SET status = 'abandoned'
	WHERE status = 'waiting' AND created_at < $1
	`
	var n int64
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, e := tx.Exec(ctx, q, cutoff)
		if e != nil {
			return e
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale rooms: %w", err)
	}
	return n, nil
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func nullableStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
