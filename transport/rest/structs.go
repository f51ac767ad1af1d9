package rest

import "github.com/rocketscienceinc/gameroom-backend/internal/entity"

type createGameRequest struct {
	Type string `json:"type,omitempty"`
}

type createGameResponse struct {
	Code string `json:"code"`
}

type joinGameRequest struct {
	Code   string `json:"code"`
	Player string `json:"player"`
}

type joinGameResponse struct {
	Success     bool     `json:"success"`
	PlayerIndex int      `json:"player_index"`
	Players     []string `json:"players"`
}

type makeMoveRequest struct {
	Code   string `json:"code"`
	Index  *int   `json:"index"`
	Player string `json:"player"`
}

type makeMoveResponse struct {
	Success bool              `json:"success"`
	State   *entity.GameState `json:"state"`
}

type sendMessageRequest struct {
	Code    string `json:"code"`
	Player  string `json:"player"`
	Message string `json:"message"`
}

type sendMessageResponse struct {
	Success bool `json:"success"`
}

type gameStateResponse struct {
	State *entity.GameState `json:"state"`
}

type messagesResponse struct {
	Messages []entity.ChatMessage `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}
