package arena

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/codebattle/arena/internal/models"
)

func TestCreateRoomValidatesWager(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	p1 := uuid.New()

	if _, err := rig.engine.CreateRoom(ctx, p1, models.ChallengeFilter{}, -1); !errors.Is(err, ErrInvalidWager) {
		t.Errorf("negative wager: got %v", err)
	}
	if _, err := rig.engine.CreateRoom(ctx, p1, models.ChallengeFilter{}, 50); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("unaffordable wager: got %v", err)
	}

	rig.wallet.Grant(p1, 50)
	room, err := rig.engine.CreateRoom(ctx, p1, models.ChallengeFilter{}, 50)
	if err != nil {
		t.Fatalf("affordable wager rejected: %v", err)
	}
	// Balance is only checked at creation, not debited.
	if bal, _ := rig.wallet.GetBalance(ctx, p1); bal != 50 {
		t.Errorf("creation debited the wallet: %d", bal)
	}
	if room.RoomCode == "" {
		t.Errorf("manually created room should carry a join code")
	}
}

func TestCreateRoomNoChallengeAvailable(t *testing.T) {
	rig := newTestRig(t)
	_, err := rig.engine.CreateRoom(context.Background(), uuid.New(), models.ChallengeFilter{Difficulty: "impossible"}, 0)
	if !errors.Is(err, ErrNoChallengeAvailable) {
		t.Errorf("got %v, want ErrNoChallengeAvailable", err)
	}
}

func TestSelfJoinRejected(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	p1 := uuid.New()

	room, err := rig.engine.CreateRoom(ctx, p1, models.ChallengeFilter{}, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if _, err := rig.engine.JoinRoom(ctx, p1, room.ID); !errors.Is(err, ErrSelfJoin) {
		t.Errorf("got %v, want ErrSelfJoin", err)
	}
}

func TestJoinChecksFundsAndAvailability(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
	rig.wallet.Grant(p1, 100)
	rig.wallet.Grant(p2, 100)

	room, err := rig.engine.CreateRoom(ctx, p1, models.ChallengeFilter{}, 100)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	if _, err := rig.engine.JoinRoom(ctx, p3, room.ID); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("broke joiner: got %v", err)
	}
	if _, err := rig.engine.JoinRoom(ctx, p2, room.ID); err != nil {
		t.Fatalf("funded join failed: %v", err)
	}

	// Room is full now.
	rig.wallet.Grant(p3, 500)
	if _, err := rig.engine.JoinRoom(ctx, p3, room.ID); !errors.Is(err, ErrRoomUnavailable) {
		t.Errorf("join on playing room: got %v", err)
	}

	if _, err := rig.engine.JoinRoom(ctx, p3, uuid.New()); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("unknown room: got %v", err)
	}
}

func TestJoinByCode(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	room, err := rig.engine.CreateRoom(ctx, p1, models.ChallengeFilter{}, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	// Lookup is case-insensitive.
	joined, err := rig.engine.JoinByCode(ctx, p2, strings.ToLower(room.RoomCode))
	if err != nil {
		t.Fatalf("JoinByCode: %v", err)
	}
	if joined.ID != room.ID || joined.Status != models.RoomPlaying {
		t.Fatalf("wrong room joined: %+v", joined)
	}

	// Once joined, the code is gone: indistinguishable from a bad code.
	if _, err := rig.engine.JoinByCode(ctx, p3, room.RoomCode); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("stale code: got %v, want ErrCodeNotFound", err)
	}
	if _, err := rig.engine.JoinByCode(ctx, p3, "NOSUCH"); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("bogus code: got %v, want ErrCodeNotFound", err)
	}
}

func TestQuickMatchJoinsOpenRoom(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	p1, p2 := uuid.New(), uuid.New()

	open, err := rig.engine.CreateRoom(ctx, p1, models.ChallengeFilter{}, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	matched, err := rig.engine.QuickMatch(ctx, p2)
	if err != nil {
		t.Fatalf("QuickMatch: %v", err)
	}
	if matched.ID != open.ID || matched.Status != models.RoomPlaying || matched.Player2ID != p2 {
		t.Fatalf("quick match did not join the open room: %+v", matched)
	}
}

func TestQuickMatchFallsBackToUnrankedRoom(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	p1 := uuid.New()

	room, err := rig.engine.QuickMatch(ctx, p1)
	if err != nil {
		t.Fatalf("QuickMatch: %v", err)
	}
	if room.Status != models.RoomWaiting || room.BetAmount != 0 {
		t.Fatalf("fallback room should wait with zero wager: %+v", room)
	}
	if room.RoomCode != "" {
		t.Errorf("quick-match room should not carry a join code")
	}
}

func TestQuickMatchSkipsUnaffordableAndOwnRooms(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	rich, poor := uuid.New(), uuid.New()
	rig.wallet.Grant(rich, 1000)

	// rich opens a high-stakes room poor cannot afford.
	if _, err := rig.engine.CreateRoom(ctx, rich, models.ChallengeFilter{}, 500); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	room, err := rig.engine.QuickMatch(ctx, poor)
	if err != nil {
		t.Fatalf("QuickMatch: %v", err)
	}
	if room.Status != models.RoomWaiting {
		t.Fatalf("poor player should have fallen back to a fresh room: %+v", room)
	}

	// The creator's own waiting room is never self-matched.
	again, err := rig.engine.QuickMatch(ctx, rich)
	if err != nil {
		t.Fatalf("QuickMatch: %v", err)
	}
	if again.Player1ID == rich && again.Player2ID == rich {
		t.Fatalf("quick match paired a user with themselves")
	}
}

func TestOpenRoomsListsWaitingOnly(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	a, _ := rig.engine.CreateRoom(ctx, p1, models.ChallengeFilter{}, 0)
	if _, err := rig.engine.CreateRoom(ctx, p3, models.ChallengeFilter{}, 0); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if _, err := rig.engine.JoinRoom(ctx, p2, a.ID); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	open := rig.engine.OpenRooms()
	if len(open) != 1 {
		t.Fatalf("expected 1 open room, got %d", len(open))
	}
	if open[0].Player1ID != p3 {
		t.Errorf("wrong room listed: %+v", open[0])
	}
}
