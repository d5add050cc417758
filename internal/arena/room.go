// internal/arena/room.go
package arena

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codebattle/arena/internal/models"
)

// Event is pushed to room subscribers on every observable transition.
type Event struct {
	Type string      `json:"type"`
	Room models.Room `json:"room"`
}

const (
	EventPlayerJoined  = "player_joined"
	EventSubmission    = "submission"
	EventMatchResolved = "match_resolved"
)

// Room wraps the match record with the runtime state the engine needs: a
// per-room lock serializing every transition, the resolution gate, and the
// live subscriber set. There is no cross-room locking; rooms progress fully
// in parallel.
type Room struct {
	mu        sync.Mutex
	data      models.Room
	resolving bool

	subs    map[int]chan Event
	nextSub int
}

func newRoom(data models.Room) *Room {
	return &Room{
		data: data,
		subs: make(map[int]chan Event),
	}
}

// Snapshot returns a copy of the room record under the lock.
func (r *Room) Snapshot() models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

func (r *Room) setCode(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.RoomCode = code
}

// tryJoin is the waiting -> playing compare-and-set. Exactly one caller can
// succeed; a concurrent second joiner observes ErrRoomUnavailable.
func (r *Room) tryJoin(userID uuid.UUID, now time.Time) (models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data.Player1ID == userID {
		return models.Room{}, ErrSelfJoin
	}
	if r.data.Status != models.RoomWaiting || r.data.Player2ID != uuid.Nil {
		return models.Room{}, ErrRoomUnavailable
	}

	r.data.Player2ID = userID
	r.data.Status = models.RoomPlaying
	started := now
	r.data.StartedAt = &started
	return r.data, nil
}

// putSubmission writes the caller's slot. A repeat submission from the same
// participant overwrites rather than duplicates. Returns whether both slots
// are now populated.
func (r *Room) putSubmission(userID uuid.UUID, code string, elapsedSec, score int) (models.Room, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.data.Status {
	case models.RoomFinished:
		return models.Room{}, false, ErrAlreadyResolved
	case models.RoomWaiting:
		return models.Room{}, false, ErrRoomUnavailable
	}

	switch userID {
	case r.data.Player1ID:
		r.data.Player1Code = code
		r.data.Player1Time = elapsedSec
		r.data.Player1Score = score
		r.data.Player1Submitted = true
	case r.data.Player2ID:
		r.data.Player2Code = code
		r.data.Player2Time = elapsedSec
		r.data.Player2Score = score
		r.data.Player2Submitted = true
	default:
		return models.Room{}, false, ErrNotParticipant
	}

	both := r.data.Player1Submitted && r.data.Player2Submitted
	return r.data, both, nil
}

// beginResolve claims the playing -> finished transition. Only the claimant
// performs settlement and bookkeeping; every late caller gets
// ErrAlreadyResolved and must treat it as a no-op.
func (r *Room) beginResolve() (models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolving || r.data.Status == models.RoomFinished {
		return models.Room{}, ErrAlreadyResolved
	}
	if r.data.Status != models.RoomPlaying || !r.data.Player1Submitted || !r.data.Player2Submitted {
		return models.Room{}, ErrRoomUnavailable
	}
	r.resolving = true
	return r.data, nil
}

// abortResolve releases the gate after a failed settlement, leaving the room
// playing and resolvable again.
func (r *Room) abortResolve() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolving = false
}

// commitResolve seals the room. After this no field changes again.
func (r *Room) commitResolve(winnerID uuid.UUID) models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolving = false
	r.data.Status = models.RoomFinished
	r.data.WinnerID = winnerID
	return r.data
}

// Subscribe registers a buffered event channel. The returned func detaches
// and closes it.
func (r *Room) Subscribe(buf int) (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	ch := make(chan Event, buf)
	r.subs[id] = ch

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
}

// broadcast pushes ev to every subscriber without blocking; a full channel
// drops the event for that subscriber.
func (r *Room) broadcast(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
