// internal/arena/memory.go
package arena

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/codebattle/arena/internal/models"
)

// In-memory collaborator implementations. They back the engine's tests and
// coinless local play; production wiring uses the pgx and Redis
// implementations in internal/database and internal/cache.

// MemoryWallet keeps balances in a map. Unknown users read as zero.
type MemoryWallet struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
}

func NewMemoryWallet() *MemoryWallet {
	return &MemoryWallet{balances: make(map[uuid.UUID]int64)}
}

// Grant credits a balance outside any match, e.g. test setup or a signup
// bonus.
func (w *MemoryWallet) Grant(userID uuid.UUID, amount int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[userID] += amount
}

func (w *MemoryWallet) GetBalance(_ context.Context, userID uuid.UUID) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[userID], nil
}

func (w *MemoryWallet) ApplyDelta(_ context.Context, userID uuid.UUID, delta int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[userID]+delta < 0 {
		return ErrInsufficientFunds
	}
	w.balances[userID] += delta
	return nil
}

func (w *MemoryWallet) SettleWager(_ context.Context, winnerID, loserID uuid.UUID, amount int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[loserID] < amount {
		return ErrInsufficientFunds
	}
	w.balances[loserID] -= amount
	w.balances[winnerID] += amount
	return nil
}

// MemoryCatalog serves a fixed challenge list.
type MemoryCatalog struct {
	mu         sync.Mutex
	challenges []models.Challenge
}

func NewMemoryCatalog(challenges ...models.Challenge) *MemoryCatalog {
	return &MemoryCatalog{challenges: challenges}
}

func (c *MemoryCatalog) Add(ch models.Challenge) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.challenges = append(c.challenges, ch)
}

func (c *MemoryCatalog) ListChallenges(_ context.Context, filter models.ChallengeFilter) ([]models.Challenge, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Challenge
	for _, ch := range c.challenges {
		if filter.Difficulty != "" && ch.Difficulty != filter.Difficulty {
			continue
		}
		if filter.Category != "" && ch.Category != filter.Category {
			continue
		}
		if filter.MaxTimeLimit > 0 && ch.TimeLimit > filter.MaxTimeLimit {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

func (c *MemoryCatalog) GetChallenge(_ context.Context, id uuid.UUID) (models.Challenge, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.challenges {
		if ch.ID == id {
			return ch, nil
		}
	}
	return models.Challenge{}, ErrNoChallengeAvailable
}

// MemoryRankStore holds season standings keyed by (user, season).
type MemoryRankStore struct {
	mu   sync.Mutex
	recs map[string]models.RankRecord
}

func NewMemoryRankStore() *MemoryRankStore {
	return &MemoryRankStore{recs: make(map[string]models.RankRecord)}
}

func rankKey(userID, seasonID uuid.UUID) string {
	return userID.String() + "/" + seasonID.String()
}

func (s *MemoryRankStore) GetRankRecord(_ context.Context, userID, seasonID uuid.UUID) (*models.RankRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[rankKey(userID, seasonID)]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (s *MemoryRankStore) PutRankRecord(_ context.Context, rec *models.RankRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rankKey(rec.UserID, rec.SeasonID)] = *rec
	return nil
}

// MemoryHistory appends entries to a slice.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []models.HistoryEntry
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (h *MemoryHistory) RecordMatch(_ context.Context, entries []models.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entries...)
	return nil
}

// GetUserHistory returns a participant's entries newest-first.
func (h *MemoryHistory) GetUserHistory(_ context.Context, userID uuid.UUID, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []models.HistoryEntry
	for i := len(h.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if h.entries[i].UserID == userID {
			out = append(out, h.entries[i])
		}
	}
	return out, nil
}

func (h *MemoryHistory) Entries() []models.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// MemoryUsers tracks XP only; the full account surface lives in Postgres.
type MemoryUsers struct {
	mu sync.Mutex
	xp map[uuid.UUID]int64
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{xp: make(map[uuid.UUID]int64)}
}

func (u *MemoryUsers) AddXP(_ context.Context, userID uuid.UUID, amount int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.xp[userID] += amount
	return nil
}

func (u *MemoryUsers) XPOf(userID uuid.UUID) int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.xp[userID]
}

// StaticSeasons always reports one fixed active season.
type StaticSeasons struct {
	Season models.Season
}

func (s StaticSeasons) ActiveSeason(_ context.Context) (*models.Season, error) {
	out := s.Season
	return &out, nil
}
