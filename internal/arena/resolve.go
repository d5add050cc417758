// internal/arena/resolve.go
package arena

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/codebattle/arena/internal/models"
	"github.com/codebattle/arena/internal/rank"
)

// Outcome is the pure product of comparing the two submissions.
type Outcome struct {
	WinnerID uuid.UUID // uuid.Nil for a draw
	Player1  models.MatchResult
	Player2  models.MatchResult
}

func (o Outcome) Draw() bool { return o.WinnerID == uuid.Nil }

// DecideOutcome compares scores descending, then elapsed time ascending
// (faster wins); equal on both means a draw.
func DecideOutcome(r models.Room) Outcome {
	switch {
	case r.Player1Score > r.Player2Score:
		return Outcome{r.Player1ID, models.ResultWin, models.ResultLose}
	case r.Player2Score > r.Player1Score:
		return Outcome{r.Player2ID, models.ResultLose, models.ResultWin}
	case r.Player1Time < r.Player2Time:
		return Outcome{r.Player1ID, models.ResultWin, models.ResultLose}
	case r.Player2Time < r.Player1Time:
		return Outcome{r.Player2ID, models.ResultLose, models.ResultWin}
	}
	return Outcome{uuid.Nil, models.ResultDraw, models.ResultDraw}
}

// XPFor returns the unconditional XP reward for a result: double the base on
// a win, the base on a draw, half (floored) on a loss.
func XPFor(result models.MatchResult, baseXP int64) int64 {
	switch result {
	case models.ResultWin:
		return 2 * baseXP
	case models.ResultDraw:
		return baseXP
	default:
		return baseXP / 2
	}
}

// coinDelta is the signed net wager movement for one participant.
func coinDelta(result models.MatchResult, bet int64) int64 {
	switch result {
	case models.ResultWin:
		return bet
	case models.ResultLose:
		return -bet
	default:
		return 0
	}
}

// resolve runs exactly once per room. The beginResolve gate serializes
// competing resolvers; settlement is coupled to the gate so a wallet failure
// releases it with the room still playing and nothing transferred.
func (e *Engine) resolve(ctx context.Context, room *Room) error {
	snap, err := room.beginResolve()
	if err != nil {
		return err
	}

	challenge, err := e.catalog.GetChallenge(ctx, snap.ChallengeID)
	if err != nil {
		room.abortResolve()
		return fmt.Errorf("challenge lookup: %w", err)
	}

	out := DecideOutcome(snap)

	if snap.BetAmount > 0 && !out.Draw() {
		loserID := snap.Player1ID
		if out.WinnerID == snap.Player1ID {
			loserID = snap.Player2ID
		}
		if err := e.wallet.SettleWager(ctx, out.WinnerID, loserID, snap.BetAmount); err != nil {
			room.abortResolve()
			return fmt.Errorf("wager settlement: %w", err)
		}
	}

	sealed := room.commitResolve(out.WinnerID)
	now := time.Now()

	xp1 := XPFor(out.Player1, challenge.BaseXP)
	xp2 := XPFor(out.Player2, challenge.BaseXP)
	if err := e.users.AddXP(ctx, sealed.Player1ID, xp1); err != nil {
		e.log.WithError(err).WithField("user_id", sealed.Player1ID).Warn("xp credit failed")
	}
	if err := e.users.AddXP(ctx, sealed.Player2ID, xp2); err != nil {
		e.log.WithError(err).WithField("user_id", sealed.Player2ID).Warn("xp credit failed")
	}

	entries := []models.HistoryEntry{
		{
			RoomID:      sealed.ID,
			UserID:      sealed.Player1ID,
			OpponentID:  sealed.Player2ID,
			ChallengeID: sealed.ChallengeID,
			Result:      out.Player1,
			XPEarned:    xp1,
			CoinsEarned: coinDelta(out.Player1, sealed.BetAmount),
			TimeTaken:   sealed.Player1Time,
			Score:       sealed.Player1Score,
			CreatedAt:   now,
		},
		{
			RoomID:      sealed.ID,
			UserID:      sealed.Player2ID,
			OpponentID:  sealed.Player1ID,
			ChallengeID: sealed.ChallengeID,
			Result:      out.Player2,
			XPEarned:    xp2,
			CoinsEarned: coinDelta(out.Player2, sealed.BetAmount),
			TimeTaken:   sealed.Player2Time,
			Score:       sealed.Player2Score,
			CreatedAt:   now,
		},
	}
	if err := e.history.RecordMatch(ctx, entries); err != nil {
		e.log.WithError(err).WithField("room_id", sealed.ID).Error("history record failed")
	}

	if sealed.Ranked() {
		e.updateRanks(ctx, sealed, out)
	}

	e.persistRoom(ctx, sealed)
	e.notify(ctx, room, Event{Type: EventMatchResolved, Room: sealed})
	e.log.WithFields(logrus.Fields{
		"room_id": sealed.ID,
		"winner":  out.WinnerID,
		"draw":    out.Draw(),
		"bet":     sealed.BetAmount,
	}).Info("match resolved")
	return nil
}

// updateRanks applies the season ledger for both participants of a ranked
// room, creating records lazily on first resolution.
func (e *Engine) updateRanks(ctx context.Context, sealed models.Room, out Outcome) {
	season, err := e.seasons.ActiveSeason(ctx)
	if err != nil {
		e.log.WithError(err).Warn("active season lookup failed; rank update skipped")
		return
	}

	sides := []struct {
		userID uuid.UUID
		result models.MatchResult
	}{
		{sealed.Player1ID, out.Player1},
		{sealed.Player2ID, out.Player2},
	}
	for _, side := range sides {
		rec, err := e.ranks.GetRankRecord(ctx, side.userID, season.ID)
		if err != nil {
			e.log.WithError(err).WithField("user_id", side.userID).Error("rank record load failed")
			continue
		}
		if rec == nil {
			rec = rank.NewRecord(side.userID, season.ID)
		}
		rank.ApplyResult(rec, side.result)
		if err := e.ranks.PutRankRecord(ctx, rec); err != nil {
			e.log.WithError(err).WithField("user_id", side.userID).Error("rank record store failed")
		}
	}
}
