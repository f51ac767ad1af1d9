package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	t.Run("Creates an empty waiting session", func(t *testing.T) {
		// Given/When: a fresh session
		session := NewSession("AB12CD", GameTicTacToe)

		// Then: board empty, seat 0 to move, nothing terminal
		assert.Equal(t, "AB12CD", session.Code)
		assert.Equal(t, GameTicTacToe, session.Type)
		assert.Empty(t, session.State.Players)
		assert.Equal(t, 0, session.State.Turn)
		assert.False(t, session.State.GameOver)
		assert.Empty(t, session.State.Winner)
		assert.Empty(t, session.State.WinningLine)

		for _, cell := range session.State.Board {
			assert.Equal(t, EmptyCell, cell)
		}
	})

	t.Run("Serializes empty collections as arrays, not null", func(t *testing.T) {
		// Given: a fresh session
		session := NewSession("AB12CD", GameTicTacToe)

		// When: marshaling the state
		raw, err := json.Marshal(session.State)
		require.NoError(t, err)

		// Then: clients receive [] for players, winning_line and messages
		assert.Contains(t, string(raw), `"players":[]`)
		assert.Contains(t, string(raw), `"winning_line":[]`)
		assert.Contains(t, string(raw), `"messages":[]`)
	})
}

func TestSession_Clone(t *testing.T) {
	t.Run("Copies are fully detached from the original", func(t *testing.T) {
		// Given: a session with players, marks and chat
		session := NewSession("AB12CD", GameTicTacToe)
		session.State.Players = append(session.State.Players, "alice", "bob")
		session.State.Board[4] = MarkX
		session.State.Messages = append(session.State.Messages, ChatMessage{Player: "alice", Message: "hi", Timestamp: "09:26"})

		// When: cloning and then mutating the clone
		clone := session.Clone()
		clone.State.Players[0] = "mallory"
		clone.State.Board[4] = MarkO
		clone.State.Messages[0].Message = "bye"
		clone.State.WinningLine = append(clone.State.WinningLine, 4)

		// Then: the original is unchanged
		assert.Equal(t, []string{"alice", "bob"}, session.State.Players)
		assert.Equal(t, MarkX, session.State.Board[4])
		assert.Equal(t, "hi", session.State.Messages[0].Message)
		assert.Empty(t, session.State.WinningLine)
	})

	t.Run("Empty collections survive a clone as arrays", func(t *testing.T) {
		clone := NewSession("AB12CD", GameTicTacToe).Clone()

		raw, err := json.Marshal(clone.State)
		require.NoError(t, err)

		assert.Contains(t, string(raw), `"players":[]`)
		assert.Contains(t, string(raw), `"winning_line":[]`)
		assert.Contains(t, string(raw), `"messages":[]`)
	})
}

func TestGameState_SeatOf(t *testing.T) {
	t.Run("Returns the first seat when the same name holds both", func(t *testing.T) {
		// Given: one name in both seats
		state := &GameState{Players: []string{"alice", "alice"}}

		// When/Then: lookup resolves to seat 0
		assert.Equal(t, 0, state.SeatOf("alice"))
	})

	t.Run("Returns -1 for a player that is not seated", func(t *testing.T) {
		state := &GameState{Players: []string{"alice", "bob"}}

		assert.Equal(t, -1, state.SeatOf("carol"))
	})
}

func TestMarkForSeat(t *testing.T) {
	assert.Equal(t, MarkX, MarkForSeat(0))
	assert.Equal(t, MarkO, MarkForSeat(1))
}

func TestGameState_IsStarted(t *testing.T) {
	t.Run("Not started with fewer than two players", func(t *testing.T) {
		state := &GameState{Players: []string{"alice"}}

		assert.False(t, state.IsStarted())
		assert.False(t, state.IsFull())
	})

	t.Run("Started and full with two players", func(t *testing.T) {
		state := &GameState{Players: []string{"alice", "bob"}}

		assert.True(t, state.IsStarted())
		assert.True(t, state.IsFull())
	})
}
