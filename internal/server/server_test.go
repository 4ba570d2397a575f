package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empires-legacy/internal/config"
	"empires-legacy/internal/game"
	"empires-legacy/internal/protocol"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	cfg.DBPath = filepath.Join(t.TempDir(), "server.db")
	if cfg.Game.BoardSize == "" {
		cfg.Game = config.Default().Game
	}
	s, err := New(cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Stop(context.Background())
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	welcome := read(t, conn)
	require.Equal(t, protocol.TypeWelcome, welcome.Type)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) *protocol.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg protocol.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return &msg
}

// request sends a message and returns the reply carrying the same id,
// skipping broadcasts in between.
func request(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, payload interface{}) *protocol.Message {
	t.Helper()
	msg, err := protocol.NewMessage(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
	for {
		resp := read(t, conn)
		if resp.ID == msg.ID {
			return resp
		}
	}
}

func decode[T any](t *testing.T, msg *protocol.Message) T {
	t.Helper()
	var out T
	require.NoError(t, msg.ParsePayload(&out))
	return out
}

func requireError(t *testing.T, msg *protocol.Message, code protocol.ErrorCode) {
	t.Helper()
	require.Equal(t, protocol.TypeError, msg.Type)
	assert.Equal(t, code, decode[protocol.ErrorPayload](t, msg).Code)
}

func createGame(t *testing.T, conn *websocket.Conn) protocol.GameCreatedPayload {
	t.Helper()
	resp := request(t, conn, protocol.TypeCreateGame, protocol.CreateGamePayload{
		Name:      "Test",
		Players:   2,
		BoardSize: game.BoardSmall,
		Seed:      1,
	})
	require.Equal(t, protocol.TypeGameCreated, resp.Type)
	return decode[protocol.GameCreatedPayload](t, resp)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Empty(t, body.Redis)
}

func TestListGamesEndpoint(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	conn := dial(t, ts)
	created := createGame(t, conn)

	resp, err := http.Get(ts.URL + "/api/games")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list protocol.GameListPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Games, 1)
	assert.Equal(t, created.GameID, list.Games[0].ID)
	assert.Equal(t, "setup", list.Games[0].Status)

	post, err := http.Post(ts.URL+"/api/games", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)

	listed := decode[protocol.GameListPayload](t, request(t, conn, protocol.TypeListGames, nil))
	assert.Len(t, listed.Games, 1)
}

func TestPlayOverWebSocket(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	host := dial(t, ts)
	created := createGame(t, host)
	require.NotNil(t, created.State)
	assert.Equal(t, game.PhaseSetup, created.State.Phase)
	target := created.State.Territories[0].ID

	resp := request(t, host, protocol.TypeSubmitAction, protocol.SubmitActionPayload{
		GameID: created.GameID,
		Action: game.NewClaim(0, target),
	})
	require.Equal(t, protocol.TypeActionResult, resp.Type)
	result := decode[protocol.ActionResultPayload](t, resp)
	require.True(t, result.Success, result.Reason)
	assert.Equal(t, int64(1), result.Version)

	guest := dial(t, ts)
	seat := game.PlayerID(1)
	joined := decode[protocol.JoinedGamePayload](t, request(t, guest, protocol.TypeJoinGame, protocol.JoinGamePayload{
		JoinCode: created.JoinCode,
		Seat:     &seat,
	}))
	assert.Equal(t, created.GameID, joined.GameID)
	assert.Equal(t, int64(1), joined.State.Version)

	resp = request(t, guest, protocol.TypeSubmitAction, protocol.SubmitActionPayload{Action: game.NewEndTurn(0)})
	requireError(t, resp, protocol.ErrCodeNotYourSeat)

	resp = request(t, guest, protocol.TypeSubmitAction, protocol.SubmitActionPayload{Action: game.NewEndTurn(1)})
	result = decode[protocol.ActionResultPayload](t, resp)
	assert.False(t, result.Success)
	assert.Equal(t, protocol.ErrCodeNotYourTurn, result.Code)
	assert.Equal(t, "not your turn", result.Reason)

	preview := decode[protocol.AttackPreviewResultPayload](t, request(t, guest, protocol.TypeAttackPreview, protocol.AttackPreviewPayload{
		PlayerID: 1, FromTerritoryID: target, ToTerritoryID: target,
	}))
	assert.False(t, preview.Valid)
	assert.Nil(t, preview.Result)

	requireError(t, request(t, guest, protocol.TypeUndo, nil), protocol.ErrCodeNotYourSeat)
	undo := decode[protocol.ActionResultPayload](t, request(t, host, protocol.TypeUndo, nil))
	assert.True(t, undo.Success)
	assert.Equal(t, int64(2), undo.Version)

	state := decode[protocol.GameStatePayload](t, request(t, guest, protocol.TypeGetState, nil))
	assert.Equal(t, game.NoPlayer, state.State.Territories[target].Owner)

	require.Eventually(t, func() bool {
		history := decode[protocol.GameHistoryPayload](t, request(t, host, protocol.TypeGetHistory, protocol.GetHistoryPayload{}))
		return len(history.Events) == 2
	}, 5*time.Second, 50*time.Millisecond)
}

func TestBroadcastReachesFollowers(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	host := dial(t, ts)
	created := createGame(t, host)

	watcher := dial(t, ts)
	request(t, watcher, protocol.TypeJoinGame, protocol.JoinGamePayload{GameID: created.GameID})

	request(t, host, protocol.TypeSubmitAction, protocol.SubmitActionPayload{
		Action: game.NewClaim(0, created.State.Territories[0].ID),
	})

	msg := read(t, watcher)
	require.Equal(t, protocol.TypeGameState, msg.Type)
	assert.Equal(t, int64(1), decode[protocol.GameStatePayload](t, msg).State.Version)
}

func TestRequestErrors(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	conn := dial(t, ts)

	requireError(t, request(t, conn, "bogus", nil), protocol.ErrCodeUnknownMessage)
	requireError(t, request(t, conn, protocol.TypeSubmitAction, protocol.SubmitActionPayload{Action: game.NewEndTurn(0)}), protocol.ErrCodeNotInGame)
	requireError(t, request(t, conn, protocol.TypeJoinGame, protocol.JoinGamePayload{GameID: "missing"}), protocol.ErrCodeGameNotFound)
	requireError(t, request(t, conn, protocol.TypeJoinGame, protocol.JoinGamePayload{}), protocol.ErrCodeMalformedMessage)
	requireError(t, request(t, conn, protocol.TypeCreateGame, protocol.CreateGamePayload{Players: 9}), protocol.ErrCodeInvalidAction)
	requireError(t, request(t, conn, protocol.TypeCreateGame, nil), protocol.ErrCodeMalformedMessage)

	pong := request(t, conn, protocol.TypePing, nil)
	assert.Equal(t, protocol.TypePong, pong.Type)
}

func TestRateLimit(t *testing.T) {
	_, ts := newTestServer(t, Config{MessageRate: 0.001, MessageBurst: 1})
	conn := dial(t, ts)

	assert.Equal(t, protocol.TypePong, request(t, conn, protocol.TypePing, nil).Type)
	requireError(t, request(t, conn, protocol.TypePing, nil), protocol.ErrCodeRateLimited)
}

func TestSessionsReloadFromDatabase(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	ctx := context.Background()

	sess, info, err := s.sessions.create(ctx, protocol.CreateGamePayload{Players: 2, Seed: 3})
	require.NoError(t, err)
	st := sess.store.State()
	require.True(t, sess.store.Dispatch(game.NewClaim(0, st.Territories[0].ID)))

	s.sessions.closeAll()
	assert.Equal(t, 0, s.sessions.count())

	reloaded, err := s.sessions.get(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.store.State().Version)
	assert.Equal(t, info.JoinCode, reloaded.joinCode)
	assert.Equal(t, 1, s.sessions.count())
}
