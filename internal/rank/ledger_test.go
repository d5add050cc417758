package rank

import (
	"testing"

	"github.com/google/uuid"

	"github.com/codebattle/arena/internal/models"
)

func TestApplyWinMovesPointsAndStreak(t *testing.T) {
	rec := NewRecord(uuid.New(), uuid.New())

	ApplyResult(rec, models.ResultWin)
	ApplyResult(rec, models.ResultWin)

	if rec.Wins != 2 {
		t.Errorf("expected 2 wins, got %d", rec.Wins)
	}
	if rec.RankPoints != 2*WinPoints {
		t.Errorf("expected %d points, got %d", 2*WinPoints, rec.RankPoints)
	}
	if rec.CurrentStreak != 2 || rec.BestStreak != 2 {
		t.Errorf("expected streak 2/2, got %d/%d", rec.CurrentStreak, rec.BestStreak)
	}
}

func TestLossClampsAtZero(t *testing.T) {
	rec := NewRecord(uuid.New(), uuid.New())

	for i := 0; i < 10; i++ {
		ApplyResult(rec, models.ResultLose)
	}
	if rec.RankPoints != 0 {
		t.Errorf("points should clamp at 0, got %d", rec.RankPoints)
	}
	if rec.Losses != 10 {
		t.Errorf("expected 10 losses, got %d", rec.Losses)
	}
}

func TestStreakResetsOnLossKeepsBest(t *testing.T) {
	rec := NewRecord(uuid.New(), uuid.New())

	ApplyResult(rec, models.ResultWin)
	ApplyResult(rec, models.ResultWin)
	ApplyResult(rec, models.ResultWin)
	ApplyResult(rec, models.ResultLose)
	ApplyResult(rec, models.ResultWin)

	if rec.CurrentStreak != 1 {
		t.Errorf("expected current streak 1, got %d", rec.CurrentStreak)
	}
	if rec.BestStreak != 3 {
		t.Errorf("expected best streak 3, got %d", rec.BestStreak)
	}
}

func TestDrawIsNeutral(t *testing.T) {
	rec := NewRecord(uuid.New(), uuid.New())
	ApplyResult(rec, models.ResultWin)
	before := *rec

	ApplyResult(rec, models.ResultDraw)

	if *rec != before {
		t.Errorf("draw changed the record: %+v -> %+v", before, *rec)
	}
}

func TestTierForPoints(t *testing.T) {
	cases := []struct {
		points int
		tier   string
	}{
		{0, "Bronze"},
		{499, "Bronze"},
		{500, "Silver"},
		{1000, "Gold"},
		{1500, "Platinum"},
		{2000, "Diamond"},
		{2500, "Master"},
		{9999, "Master"},
	}
	for _, c := range cases {
		if got := TierForPoints(c.points); got != c.tier {
			t.Errorf("TierForPoints(%d) = %s, want %s", c.points, got, c.tier)
		}
	}
}

func TestTierAlwaysMatchesPoints(t *testing.T) {
	rec := NewRecord(uuid.New(), uuid.New())
	for i := 0; i < 30; i++ {
		ApplyResult(rec, models.ResultWin)
		if rec.RankTier != TierForPoints(rec.RankPoints) {
			t.Fatalf("tier %s inconsistent with %d points", rec.RankTier, rec.RankPoints)
		}
	}
}
