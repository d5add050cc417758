// internal/arena/room_store.go
package arena

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/codebattle/arena/internal/models"
)

// Join codes avoid ambiguous characters (0/O, 1/I).
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// RoomStore is the in-memory room registry. Rooms are never deleted; a
// finished room stays resident as read-only history context. The code index
// only tracks waiting rooms, keeping codes unique among them.
type RoomStore struct {
	mu     sync.Mutex
	rooms  map[uuid.UUID]*Room
	byCode map[string]uuid.UUID
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:  make(map[uuid.UUID]*Room),
		byCode: make(map[string]uuid.UUID),
	}
}

// Add registers the room, allocating a unique join code when withCode is set.
// Returns the room snapshot as stored.
func (s *RoomStore) Add(r *Room, withCode bool) (models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if withCode {
		code, err := s.allocCodeLocked()
		if err != nil {
			return models.Room{}, err
		}
		r.setCode(code)
		s.byCode[code] = r.Snapshot().ID
	}

	snap := r.Snapshot()
	s.rooms[snap.ID] = r
	return snap, nil
}

func (s *RoomStore) Get(id uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// GetByCode looks a room up by its join code, case-insensitively. Codes are
// released when the room leaves waiting, so joined rooms look exactly like
// non-existent ones to the caller.
func (s *RoomStore) GetByCode(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[normalizeCode(code)]
	if !ok {
		return nil, false
	}
	r, ok := s.rooms[id]
	return r, ok
}

// ReleaseCode drops the code index entry once its room is no longer waiting.
func (s *RoomStore) ReleaseCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byCode, normalizeCode(code))
}

// FindWaiting returns any waiting room not created by exclude and whose wager
// maxBet covers, or nil. First-available, not skill-based.
func (s *RoomStore) FindWaiting(exclude uuid.UUID, maxBet int64) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		snap := r.Snapshot()
		if snap.Status == models.RoomWaiting && snap.Player1ID != exclude && snap.BetAmount <= maxBet {
			return r
		}
	}
	return nil
}

// Waiting lists snapshots of all currently-waiting rooms.
func (s *RoomStore) Waiting() []models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Room
	for _, r := range s.rooms {
		if snap := r.Snapshot(); snap.Status == models.RoomWaiting {
			out = append(out, snap)
		}
	}
	return out
}

func (s *RoomStore) allocCodeLocked() (string, error) {
	for attempt := 0; attempt < 64; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		if _, taken := s.byCode[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique room code")
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate room code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

func normalizeCode(code string) string {
	out := []byte(code)
	for i := range out {
		if out[i] >= 'a' && out[i] <= 'z' {
			out[i] -= 'a' - 'A'
		}
	}
	return string(out)
}
