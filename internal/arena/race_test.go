package arena

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/codebattle/arena/internal/models"
)

// Two (and more) simultaneous joiners against one waiting room: exactly one
// wins the waiting -> playing transition, the rest see ErrRoomUnavailable.
func TestJoinRaceExclusivity(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	creator := uuid.New()

	room, err := rig.engine.CreateRoom(ctx, creator, models.ChallengeFilter{}, 0)
	require.NoError(t, err)

	const contenders = 16
	var wg sync.WaitGroup
	results := make([]error, contenders)
	winners := make([]uuid.UUID, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := uuid.New()
			winners[i] = id
			_, results[i] = rig.engine.JoinRoom(ctx, id, room.ID)
		}(i)
	}
	wg.Wait()

	var succeeded int
	for i, err := range results {
		switch {
		case err == nil:
			succeeded++
			snap, getErr := rig.engine.GetRoom(room.ID)
			require.NoError(t, getErr)
			require.Equal(t, winners[i], snap.Player2ID, "winner must hold the second slot")
		case errors.Is(err, ErrRoomUnavailable):
		default:
			t.Errorf("unexpected join error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded, "exactly one joiner must win")
}

// N concurrent submit retries completing both slots: one resolution, one
// settlement, one history pair.
func TestExactlyOnceResolution(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	rig.wallet.Grant(a, 100)
	rig.wallet.Grant(b, 100)

	room := rig.playedRoom(t, a, b, 50)

	const retries = 10
	var wg sync.WaitGroup
	for i := 0; i < retries; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := rig.engine.Submit(ctx, room.ID, a, "loser code", 30, 10)
			if err != nil && !errors.Is(err, ErrAlreadyResolved) {
				t.Errorf("submit a: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_, err := rig.engine.Submit(ctx, room.ID, b, "winner code", 30, 90)
			if err != nil && !errors.Is(err, ErrAlreadyResolved) {
				t.Errorf("submit b: %v", err)
			}
		}()
	}
	wg.Wait()

	snap, err := rig.engine.GetRoom(room.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoomFinished, snap.Status)
	require.Equal(t, b, snap.WinnerID)

	require.Len(t, rig.history.Entries(), 2, "exactly one history pair")

	balA, _ := rig.wallet.GetBalance(ctx, a)
	balB, _ := rig.wallet.GetBalance(ctx, b)
	require.EqualValues(t, 50, balA, "wager settled exactly once")
	require.EqualValues(t, 150, balB, "wager settled exactly once")

	recB, err := rig.engine.RankFor(ctx, b)
	require.NoError(t, err)
	require.Equal(t, 1, recB.Wins, "rank applied exactly once")
}

// Quick-match storms must pair users without ever double-filling a slot.
func TestConcurrentQuickMatch(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	const players = 20
	var wg sync.WaitGroup
	rooms := make([]models.Room, players)
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := rig.engine.QuickMatch(ctx, uuid.New())
			if err != nil {
				t.Errorf("quick match: %v", err)
				return
			}
			rooms[i] = r
		}(i)
	}
	wg.Wait()

	// Every playing room seen by a joiner has two distinct participants.
	seats := map[uuid.UUID]map[uuid.UUID]bool{}
	for _, r := range rooms {
		if r.Status != models.RoomPlaying {
			continue
		}
		require.NotEqual(t, r.Player1ID, r.Player2ID)
		if seats[r.ID] == nil {
			seats[r.ID] = map[uuid.UUID]bool{}
		}
		seats[r.ID][r.Player2ID] = true
	}
	for id, joiners := range seats {
		require.Len(t, joiners, 1, "room %s was joined by more than one quick-matcher", id)
	}
}
