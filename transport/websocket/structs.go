package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

// Message is the JSON envelope used in both directions on the duplex channel.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client -> server payloads

type joinGamePayload struct {
	Code   string `json:"code"`
	Player string `json:"player"`
}

type makeMovePayload struct {
	Code   string `json:"code"`
	Index  *int   `json:"index"`
	Player string `json:"player"`
}

type chatMessagePayload struct {
	Code    string `json:"code"`
	Player  string `json:"player"`
	Message string `json:"message"`
}

// server -> client payloads

type playerJoinedPayload struct {
	Players []string `json:"players"`
}

type startGamePayload struct {
	Board    [9]string `json:"board"`
	Turn     int       `json:"turn"`
	GameOver bool      `json:"game_over"`
	Winner   string    `json:"winner"`
}

type updateBoardPayload struct {
	Board       [9]string `json:"board"`
	Turn        int       `json:"turn"`
	GameOver    bool      `json:"game_over"`
	Winner      string    `json:"winner"`
	WinningLine []int     `json:"winning_line"`
}

type chatBroadcastPayload struct {
	Player    string `json:"player"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type joinErrorPayload struct {
	Error string `json:"error"`
}

func startGameFromState(state *entity.GameState) startGamePayload {
	return startGamePayload{
		Board:    state.Board,
		Turn:     state.Turn,
		GameOver: state.GameOver,
		Winner:   state.Winner,
	}
}

func updateBoardFromState(state *entity.GameState) updateBoardPayload {
	return updateBoardPayload{
		Board:       state.Board,
		Turn:        state.Turn,
		GameOver:    state.GameOver,
		Winner:      state.Winner,
		WinningLine: state.WinningLine,
	}
}
