package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
	"github.com/rocketscienceinc/gameroom-backend/internal/usecase"
)

const readTimeout = 2 * time.Second

func newTestSocket(t *testing.T) (*httptest.Server, *usecase.SessionManager) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewSessionManager(logger, repository.NewMemorySessionRepository())

	ctx, cancel := context.WithCancel(context.Background())
	server := httptest.NewServer(New(logger, manager).Handler(ctx))
	t.Cleanup(func() {
		cancel()
		server.Close()
	})

	return server, manager
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: body}))
}

func receive(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))

	var message Message
	require.NoError(t, conn.ReadJSON(&message))

	return message
}

func decodePayload(t *testing.T, message Message, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(message.Payload, out))
}

func createSession(t *testing.T, manager *usecase.SessionManager) string {
	t.Helper()

	code, err := manager.CreateSession(context.Background(), entity.GameTicTacToe)
	require.NoError(t, err)

	return code
}

func TestJoinGameOverSocket(t *testing.T) {
	t.Run("Second join broadcasts the roster and start_game to the room", func(t *testing.T) {
		server, manager := newTestSocket(t)
		code := createSession(t, manager)

		alice := dial(t, server)
		bob := dial(t, server)

		// When: alice joins
		send(t, alice, "join_game", joinGamePayload{Code: code, Player: "alice"})

		message := receive(t, alice)
		require.Equal(t, "player_joined", message.Action)

		var joined playerJoinedPayload
		decodePayload(t, message, &joined)
		assert.Equal(t, []string{"alice"}, joined.Players)

		// When: bob joins
		send(t, bob, "join_game", joinGamePayload{Code: code, Player: "bob"})

		// Then: both clients see the full roster followed by start_game
		for _, conn := range []*websocket.Conn{alice, bob} {
			message = receive(t, conn)
			require.Equal(t, "player_joined", message.Action)
			decodePayload(t, message, &joined)
			assert.Equal(t, []string{"alice", "bob"}, joined.Players)

			message = receive(t, conn)
			require.Equal(t, "start_game", message.Action)

			var started startGamePayload
			decodePayload(t, message, &started)
			assert.Equal(t, 0, started.Turn)
			assert.False(t, started.GameOver)
			assert.Empty(t, started.Winner)
			for _, cell := range started.Board {
				assert.Equal(t, entity.EmptyCell, cell)
			}
		}
	})

	t.Run("Join failures are unicast as join_error", func(t *testing.T) {
		server, _ := newTestSocket(t)

		client := dial(t, server)

		// When: joining a code that does not exist
		send(t, client, "join_game", joinGamePayload{Code: "ZZZZZZ", Player: "alice"})

		// Then: only this client is told, with the legacy error string
		message := receive(t, client)
		require.Equal(t, "join_error", message.Action)

		var failure joinErrorPayload
		decodePayload(t, message, &failure)
		assert.Equal(t, "Invalid or full game code", failure.Error)
	})

	t.Run("A full session rejects the third join with join_error", func(t *testing.T) {
		server, manager := newTestSocket(t)
		code := createSession(t, manager)

		alice := dial(t, server)
		bob := dial(t, server)
		carol := dial(t, server)

		send(t, alice, "join_game", joinGamePayload{Code: code, Player: "alice"})
		receive(t, alice) // player_joined
		send(t, bob, "join_game", joinGamePayload{Code: code, Player: "bob"})
		receive(t, bob) // player_joined
		receive(t, bob) // start_game

		// When: a third client tries to join
		send(t, carol, "join_game", joinGamePayload{Code: code, Player: "carol"})

		message := receive(t, carol)
		assert.Equal(t, "join_error", message.Action)
	})
}

func TestMakeMoveOverSocket(t *testing.T) {
	t.Run("A legal move broadcasts update_board to both players", func(t *testing.T) {
		server, manager := newTestSocket(t)
		code := createSession(t, manager)

		alice := dial(t, server)
		bob := dial(t, server)

		send(t, alice, "join_game", joinGamePayload{Code: code, Player: "alice"})
		receive(t, alice) // player_joined
		send(t, bob, "join_game", joinGamePayload{Code: code, Player: "bob"})
		receive(t, alice) // player_joined
		receive(t, alice) // start_game
		receive(t, bob)   // player_joined
		receive(t, bob)   // start_game

		// When: alice plays the center
		index := 4
		send(t, alice, "make_move", makeMovePayload{Code: code, Index: &index, Player: "alice"})

		// Then: both connections receive the updated board
		for _, conn := range []*websocket.Conn{alice, bob} {
			message := receive(t, conn)
			require.Equal(t, "update_board", message.Action)

			var update updateBoardPayload
			decodePayload(t, message, &update)
			assert.Equal(t, entity.MarkX, update.Board[4])
			assert.Equal(t, 1, update.Turn)
			assert.False(t, update.GameOver)
			assert.Empty(t, update.WinningLine)
		}
	})

	t.Run("A rejected move emits nothing", func(t *testing.T) {
		server, manager := newTestSocket(t)
		code := createSession(t, manager)

		alice := dial(t, server)
		bob := dial(t, server)

		send(t, alice, "join_game", joinGamePayload{Code: code, Player: "alice"})
		receive(t, alice)
		send(t, bob, "join_game", joinGamePayload{Code: code, Player: "bob"})
		receive(t, alice)
		receive(t, alice)
		receive(t, bob)
		receive(t, bob)

		// When: bob moves out of turn, then sends a chat on the same connection
		index := 0
		send(t, bob, "make_move", makeMovePayload{Code: code, Index: &index, Player: "bob"})
		send(t, bob, "chat_message", chatMessagePayload{Code: code, Player: "bob", Message: "oops"})

		// Then: the next frame bob sees is the chat, not a board update
		message := receive(t, bob)
		assert.Equal(t, "chat_message", message.Action)
	})

	t.Run("The winning move carries the winning line and freezes the turn", func(t *testing.T) {
		server, manager := newTestSocket(t)
		code := createSession(t, manager)

		alice := dial(t, server)

		send(t, alice, "join_game", joinGamePayload{Code: code, Player: "alice"})
		receive(t, alice)

		// bob plays through the manager directly; only alice holds a socket
		ctx := context.Background()
		_, err := manager.JoinSession(ctx, code, "bob")
		require.NoError(t, err)

		moves := []struct {
			player string
			cell   int
		}{
			{"alice", 4}, {"bob", 0},
			{"alice", 2}, {"bob", 1},
		}
		for _, move := range moves {
			_, err = manager.MakeMove(ctx, code, move.player, move.cell)
			require.NoError(t, err)
		}

		// When: alice completes the {2,4,6} diagonal over the socket
		index := 6
		send(t, alice, "make_move", makeMovePayload{Code: code, Index: &index, Player: "alice"})

		message := receive(t, alice)
		require.Equal(t, "update_board", message.Action)

		var update updateBoardPayload
		decodePayload(t, message, &update)
		assert.True(t, update.GameOver)
		assert.Equal(t, entity.MarkX, update.Winner)
		assert.Equal(t, []int{2, 4, 6}, update.WinningLine)
		assert.Equal(t, 0, update.Turn)
	})
}

func TestChatOverSocket(t *testing.T) {
	t.Run("Chat is broadcast with a minute-resolution timestamp", func(t *testing.T) {
		server, manager := newTestSocket(t)
		code := createSession(t, manager)

		alice := dial(t, server)
		bob := dial(t, server)

		send(t, alice, "join_game", joinGamePayload{Code: code, Player: "alice"})
		receive(t, alice)
		send(t, bob, "join_game", joinGamePayload{Code: code, Player: "bob"})
		receive(t, alice)
		receive(t, alice)
		receive(t, bob)
		receive(t, bob)

		// When: alice sends a chat message
		send(t, alice, "chat_message", chatMessagePayload{Code: code, Player: "alice", Message: "good luck"})

		// Then: both players receive it
		for _, conn := range []*websocket.Conn{alice, bob} {
			message := receive(t, conn)
			require.Equal(t, "chat_message", message.Action)

			var chat chatBroadcastPayload
			decodePayload(t, message, &chat)
			assert.Equal(t, "alice", chat.Player)
			assert.Equal(t, "good luck", chat.Message)
			assert.Regexp(t, `^\d{2}:\d{2}$`, chat.Timestamp)
		}
	})

	t.Run("Chat from a non-seated player emits nothing", func(t *testing.T) {
		server, manager := newTestSocket(t)
		code := createSession(t, manager)

		alice := dial(t, server)

		send(t, alice, "join_game", joinGamePayload{Code: code, Player: "alice"})
		receive(t, alice)

		// When: a chat arrives for a player that never joined, then a valid one
		send(t, alice, "chat_message", chatMessagePayload{Code: code, Player: "carol", Message: "hi"})
		send(t, alice, "chat_message", chatMessagePayload{Code: code, Player: "alice", Message: "hello"})

		// Then: only the valid message comes back
		message := receive(t, alice)
		require.Equal(t, "chat_message", message.Action)

		var chat chatBroadcastPayload
		decodePayload(t, message, &chat)
		assert.Equal(t, "alice", chat.Player)
		assert.Equal(t, "hello", chat.Message)
	})
}
