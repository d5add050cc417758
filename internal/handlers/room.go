// internal/handlers/room.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/codebattle/arena/internal/arena"
	"github.com/codebattle/arena/internal/models"
)

// roomErrorStatus maps engine sentinels to HTTP status codes. Anything not
// listed is an internal failure.
func roomErrorStatus(err error) int {
	switch {
	case errors.Is(err, arena.ErrRoomNotFound),
		errors.Is(err, arena.ErrCodeNotFound),
		errors.Is(err, arena.ErrNoChallengeAvailable):
		return http.StatusNotFound
	case errors.Is(err, arena.ErrSelfJoin),
		errors.Is(err, arena.ErrInvalidWager):
		return http.StatusBadRequest
	case errors.Is(err, arena.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, arena.ErrRoomUnavailable),
		errors.Is(err, arena.ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, arena.ErrNotParticipant):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeRoomError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), roomErrorStatus(err))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type createRoomRequest struct {
	BetAmount    int64  `json:"bet_amount"`
	Difficulty   string `json:"difficulty,omitempty"`
	Category     string `json:"category,omitempty"`
	MaxTimeLimit int    `json:"max_time_limit,omitempty"`
}

// CreateRoomHandler opens a waiting room with a shareable join code.
func CreateRoomHandler(s *ArenaServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid room payload", http.StatusBadRequest)
			return
		}

		filter := models.ChallengeFilter{
			Difficulty:   req.Difficulty,
			Category:     req.Category,
			MaxTimeLimit: req.MaxTimeLimit,
		}
		room, err := s.Engine.CreateRoom(r.Context(), userID, filter, req.BetAmount)
		if err != nil {
			writeRoomError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, room)
	}
}

// QuickMatchHandler joins any affordable waiting room, or opens a fresh
// unranked one when nothing is open. Token-less callers get an ephemeral
// guest account minted on the spot, so quick match never requires signup.
func QuickMatchHandler(s *ArenaServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.EnsureEphemeralUser(w, r)
		if err != nil {
			s.Logger.WithError(err).Warn("guest provisioning failed")
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}
		room, err := s.Engine.QuickMatch(r.Context(), userID)
		if err != nil {
			writeRoomError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

type joinRoomRequest struct {
	RoomID uuid.UUID `json:"room_id"`
}

// JoinRoomHandler takes the open slot of a specific waiting room.
func JoinRoomHandler(s *ArenaServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req joinRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomID == uuid.Nil {
			http.Error(w, "invalid join payload", http.StatusBadRequest)
			return
		}
		room, err := s.Engine.JoinRoom(r.Context(), userID, req.RoomID)
		if err != nil {
			writeRoomError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

type joinByCodeRequest struct {
	Code string `json:"code"`
}

// JoinByCodeHandler resolves a shareable join code and takes the open slot.
func JoinByCodeHandler(s *ArenaServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req joinByCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
			http.Error(w, "invalid code payload", http.StatusBadRequest)
			return
		}
		room, err := s.Engine.JoinByCode(r.Context(), userID, req.Code)
		if err != nil {
			writeRoomError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

type submitRequest struct {
	RoomID    uuid.UUID `json:"room_id"`
	Code      string    `json:"code"`
	TimeTaken int       `json:"time_taken"` // seconds since the match started
}

// SubmitHandler grades the caller's code server-side and records the attempt.
// When the caller is the second submitter the response already carries the
// finished room.
func SubmitHandler(s *ArenaServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomID == uuid.Nil {
			http.Error(w, "invalid submit payload", http.StatusBadRequest)
			return
		}

		snap, err := s.Engine.GetRoom(req.RoomID)
		if err != nil {
			writeRoomError(w, err)
			return
		}
		score, _, err := s.Engine.Grade(r.Context(), snap.ChallengeID, req.Code)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		room, err := s.Engine.Submit(r.Context(), req.RoomID, userID, req.Code, req.TimeTaken, score)
		if err != nil {
			writeRoomError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

// GetRoomHandler returns a snapshot of one room: /room/get?id={uuid}
func GetRoomHandler(s *ArenaServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}
		roomID, err := uuid.Parse(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "invalid room id", http.StatusBadRequest)
			return
		}
		room, err := s.Engine.GetRoom(roomID)
		if errors.Is(err, arena.ErrRoomNotFound) && s.Rooms != nil {
			// Rooms finished before this process started live only in
			// Postgres.
			if persisted, dbErr := s.Rooms.GetRoom(r.Context(), roomID); dbErr == nil {
				writeJSON(w, http.StatusOK, persisted)
				return
			}
		}
		if err != nil {
			writeRoomError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

// ListRoomsHandler returns all rooms still waiting for an opponent.
func ListRoomsHandler(s *ArenaServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.Engine.OpenRooms())
	}
}
