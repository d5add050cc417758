package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/codebattle/arena/internal/arena"
	"github.com/codebattle/arena/internal/auth"
	"github.com/codebattle/arena/internal/models"
)

type testServer struct {
	srv     *ArenaServer
	wallet  *arena.MemoryWallet
	history *arena.MemoryHistory
	guests  *stubGuests
}

// stubGuests mints guest identities without touching Postgres.
type stubGuests struct {
	mu      sync.Mutex
	created []uuid.UUID
}

func (g *stubGuests) CreateGuest(_ context.Context) (models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	u := models.User{ID: uuid.New(), Username: "Guest", IsEphemeral: true}
	g.created = append(g.created, u.ID)
	return u, nil
}

// stubRoomReader serves one persisted room, standing in for the Postgres
// fallback used after a restart.
type stubRoomReader struct {
	room *models.Room
}

func (s stubRoomReader) GetRoom(_ context.Context, id uuid.UUID) (*models.Room, error) {
	if s.room != nil && s.room.ID == id {
		return s.room, nil
	}
	return nil, errors.New("no rows in result set")
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	auth.Init()

	wallet := arena.NewMemoryWallet()
	history := arena.NewMemoryHistory()
	catalog := arena.NewMemoryCatalog(models.Challenge{
		ID:         uuid.New(),
		Title:      "Two Sum",
		Difficulty: "easy",
		TimeLimit:  900,
		TestCases:  []models.TestCase{{Input: "1 2", Expected: "3"}},
		BaseXP:     100,
	})
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	engine := arena.New(arena.Config{
		Wallet:  wallet,
		Catalog: catalog,
		Grader:  arena.HeuristicGrader{},
		Ranks:   arena.NewMemoryRankStore(),
		Seasons: arena.StaticSeasons{Season: models.Season{
			ID:     uuid.New(),
			Name:   "Season 1",
			Active: true,
			EndsAt: time.Now().Add(30 * 24 * time.Hour),
		}},
		History: history,
		Users:   arena.NewMemoryUsers(),
		Logger:  logger,
	})
	guests := &stubGuests{}
	srv := NewArenaServer(engine, history, logger)
	srv.Guests = guests
	return &testServer{
		srv:     srv,
		wallet:  wallet,
		history: history,
		guests:  guests,
	}
}

func authedRequest(t *testing.T, method, target string, userID uuid.UUID, body interface{}) *http.Request {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rdr)
	token, err := auth.CreateJWT(userID.String())
	require.NoError(t, err)
	req.Header.Set("Cookie", "auth_token="+token)
	return req
}

func decodeRoom(t *testing.T, rec *httptest.ResponseRecorder) models.Room {
	t.Helper()
	var room models.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&room))
	return room
}

func TestRoomHandlersRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/room/create", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	CreateRoomHandler(ts.srv)(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/room/list", nil)
	req.Header.Set("Cookie", "auth_token=not-a-jwt")
	rec = httptest.NewRecorder()
	ListRoomsHandler(ts.srv)(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestQuickMatchMintsGuestForTokenlessCaller(t *testing.T) {
	ts := newTestServer(t)

	// No cookie at all: a guest account is created on the spot.
	req := httptest.NewRequest(http.MethodPost, "/room/quick", nil)
	rec := httptest.NewRecorder()
	QuickMatchHandler(ts.srv)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, ts.guests.created, 1)
	guestID := ts.guests.created[0]
	room := decodeRoom(t, rec)
	require.Equal(t, guestID, room.Player1ID)
	require.EqualValues(t, 0, room.BetAmount)

	// The response carries a cookie that authenticates as that guest.
	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			token = c.Value
		}
	}
	require.NotEmpty(t, token, "guest auth_token cookie not set")
	sub, err := auth.AuthenticateJWT(token)
	require.NoError(t, err)
	require.Equal(t, guestID.String(), sub)
}

func TestQuickMatchReplacesStaleToken(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/room/quick", nil)
	req.Header.Set("Cookie", "auth_token=not-a-jwt")
	rec := httptest.NewRecorder()
	QuickMatchHandler(ts.srv)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ts.guests.created, 1)
	require.Equal(t, ts.guests.created[0], decodeRoom(t, rec).Player1ID)
}

func TestQuickMatchWithoutGuestFactoryRejectsTokenless(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.Guests = nil

	req := httptest.NewRequest(http.MethodPost, "/room/quick", nil)
	rec := httptest.NewRecorder()
	QuickMatchHandler(ts.srv)(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetRoomFallsBackToPersisted(t *testing.T) {
	ts := newTestServer(t)
	caller := uuid.New()

	finished := &models.Room{
		ID:        uuid.New(),
		Player1ID: uuid.New(),
		Player2ID: uuid.New(),
		Status:    models.RoomFinished,
		BetAmount: 50,
	}
	ts.srv.Rooms = stubRoomReader{room: finished}

	// Unknown to the in-memory registry, served from storage.
	rec := httptest.NewRecorder()
	GetRoomHandler(ts.srv)(rec, authedRequest(t, http.MethodGet,
		fmt.Sprintf("/room/get?id=%s", finished.ID), caller, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeRoom(t, rec)
	require.Equal(t, finished.ID, got.ID)
	require.Equal(t, models.RoomFinished, got.Status)

	// Unknown everywhere is still a 404.
	rec = httptest.NewRecorder()
	GetRoomHandler(ts.srv)(rec, authedRequest(t, http.MethodGet,
		fmt.Sprintf("/room/get?id=%s", uuid.New()), caller, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoomLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	creator, joiner := uuid.New(), uuid.New()
	ts.wallet.Grant(creator, 100)
	ts.wallet.Grant(joiner, 100)

	// Create a wagered room.
	rec := httptest.NewRecorder()
	CreateRoomHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/create",
		creator, createRoomRequest{BetAmount: 50}))
	require.Equal(t, http.StatusCreated, rec.Code)
	room := decodeRoom(t, rec)
	require.Equal(t, models.RoomWaiting, room.Status)
	require.NotEmpty(t, room.RoomCode)

	// Opponent joins via the shared code.
	rec = httptest.NewRecorder()
	JoinByCodeHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/code",
		joiner, joinByCodeRequest{Code: room.RoomCode}))
	require.Equal(t, http.StatusOK, rec.Code)
	room = decodeRoom(t, rec)
	require.Equal(t, models.RoomPlaying, room.Status)
	require.Equal(t, joiner, room.Player2ID)

	// Both submit full solutions; the joiner is faster and takes the pot.
	solution := strings.Repeat("x", 64)
	rec = httptest.NewRecorder()
	SubmitHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/submit",
		creator, submitRequest{RoomID: room.ID, Code: solution, TimeTaken: 60}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, models.RoomPlaying, decodeRoom(t, rec).Status)

	rec = httptest.NewRecorder()
	SubmitHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/submit",
		joiner, submitRequest{RoomID: room.ID, Code: solution, TimeTaken: 45}))
	require.Equal(t, http.StatusOK, rec.Code)
	final := decodeRoom(t, rec)
	require.Equal(t, models.RoomFinished, final.Status)
	require.Equal(t, joiner, final.WinnerID)

	// The wager settled zero-sum.
	bal, _ := ts.wallet.GetBalance(context.Background(), creator)
	require.EqualValues(t, 50, bal)
	bal, _ = ts.wallet.GetBalance(context.Background(), joiner)
	require.EqualValues(t, 150, bal)
}

func TestJoinByUnknownCode(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	JoinByCodeHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/code",
		uuid.New(), joinByCodeRequest{Code: "NOSUCH"}))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelfJoinIsRejected(t *testing.T) {
	ts := newTestServer(t)
	creator := uuid.New()

	rec := httptest.NewRecorder()
	CreateRoomHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/create",
		creator, createRoomRequest{}))
	require.Equal(t, http.StatusCreated, rec.Code)
	room := decodeRoom(t, rec)

	rec = httptest.NewRecorder()
	JoinRoomHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/join",
		creator, joinRoomRequest{RoomID: room.ID}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnaffordableJoinIsRejected(t *testing.T) {
	ts := newTestServer(t)
	creator, broke := uuid.New(), uuid.New()
	ts.wallet.Grant(creator, 100)

	rec := httptest.NewRecorder()
	CreateRoomHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/create",
		creator, createRoomRequest{BetAmount: 100}))
	require.Equal(t, http.StatusCreated, rec.Code)
	room := decodeRoom(t, rec)

	rec = httptest.NewRecorder()
	JoinRoomHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/join",
		broke, joinRoomRequest{RoomID: room.ID}))
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestRankAndHistoryEndpoints(t *testing.T) {
	ts := newTestServer(t)
	creator, joiner := uuid.New(), uuid.New()
	ts.wallet.Grant(creator, 100)
	ts.wallet.Grant(joiner, 100)

	rec := httptest.NewRecorder()
	CreateRoomHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/create",
		creator, createRoomRequest{BetAmount: 25}))
	room := decodeRoom(t, rec)

	rec = httptest.NewRecorder()
	JoinRoomHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/join",
		joiner, joinRoomRequest{RoomID: room.ID}))
	require.Equal(t, http.StatusOK, rec.Code)

	solution := strings.Repeat("y", 64)
	for i, uid := range []uuid.UUID{creator, joiner} {
		rec = httptest.NewRecorder()
		SubmitHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/submit",
			uid, submitRequest{RoomID: room.ID, Code: solution, TimeTaken: 30 + i}))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// Creator was faster, so they hold a win on the ladder.
	rec = httptest.NewRecorder()
	RankMeHandler(ts.srv)(rec, authedRequest(t, http.MethodGet, "/rank/me", creator, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rank models.RankRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rank))
	require.Equal(t, 1, rank.Wins)
	require.Equal(t, 25, rank.RankPoints)

	rec = httptest.NewRecorder()
	HistoryMeHandler(ts.srv)(rec, authedRequest(t, http.MethodGet, "/history/me?limit=10", joiner, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.HistoryEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
	require.Len(t, entries, 1)
	require.Equal(t, models.ResultLose, entries[0].Result)
	require.Equal(t, creator, entries[0].OpponentID)
}

func TestGetAndListRooms(t *testing.T) {
	ts := newTestServer(t)
	creator := uuid.New()

	rec := httptest.NewRecorder()
	CreateRoomHandler(ts.srv)(rec, authedRequest(t, http.MethodPost, "/room/create",
		creator, createRoomRequest{}))
	room := decodeRoom(t, rec)

	rec = httptest.NewRecorder()
	GetRoomHandler(ts.srv)(rec, authedRequest(t, http.MethodGet,
		fmt.Sprintf("/room/get?id=%s", room.ID), creator, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, room.ID, decodeRoom(t, rec).ID)

	rec = httptest.NewRecorder()
	ListRoomsHandler(ts.srv)(rec, authedRequest(t, http.MethodGet, "/room/list", creator, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var open []models.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&open))
	require.Len(t, open, 1)
}
