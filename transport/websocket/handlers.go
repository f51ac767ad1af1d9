package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	actionJoinGame    = "join_game"
	actionMakeMove    = "make_move"
	actionChatMessage = "chat_message"

	actionPlayerJoined = "player_joined"
	actionStartGame    = "start_game"
	actionUpdateBoard  = "update_board"
	actionJoinError    = "join_error"
)

// handleJoinGame seats the player and broadcasts the new roster. The second
// join additionally broadcasts start_game, the signal that gameplay may
// begin. Join failures are the one event class reported back to the caller.
func (that *Server) handleJoinGame(ctx context.Context, client *Client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleJoinGame", "client", client.id)

	var req joinGamePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if req.Code == "" || req.Player == "" {
		return that.sendTo(client, actionJoinError, joinErrorPayload{Error: "code and player are required"})
	}

	session, err := that.manager.JoinSession(ctx, req.Code, req.Player)
	if err != nil {
		log.Debug("join rejected", "code", req.Code, "player", req.Player, "error", err)
		return that.sendTo(client, actionJoinError, joinErrorPayload{Error: "Invalid or full game code"})
	}

	that.hub.Join(req.Code, client)

	if err = that.broadcast(req.Code, actionPlayerJoined, playerJoinedPayload{Players: session.State.Players}); err != nil {
		return err
	}

	if session.State.IsStarted() {
		if err = that.broadcast(req.Code, actionStartGame, startGameFromState(session.State)); err != nil {
			return err
		}
	}

	log.Info("player joined", "code", req.Code, "player", req.Player)

	return nil
}

// handleMakeMove applies a move and broadcasts the updated board. A rejected
// move emits nothing: the client infers rejection from the absent update.
func (that *Server) handleMakeMove(ctx context.Context, client *Client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleMakeMove", "client", client.id)

	var req makeMovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if req.Code == "" || req.Player == "" || req.Index == nil {
		log.Debug("move rejected", "reason", "missing fields")
		return nil
	}

	session, err := that.manager.MakeMove(ctx, req.Code, req.Player, *req.Index)
	if err != nil {
		log.Debug("move rejected", "code", req.Code, "player", req.Player, "error", err)
		return nil
	}

	return that.broadcast(req.Code, actionUpdateBoard, updateBoardFromState(session.State))
}

// handleChatMessage relays chat to the room. Like moves, rejections are
// silent on the wire.
func (that *Server) handleChatMessage(ctx context.Context, client *Client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleChatMessage", "client", client.id)

	var req chatMessagePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if req.Code == "" || req.Player == "" {
		log.Debug("chat rejected", "reason", "missing fields")
		return nil
	}

	message, err := that.manager.PostMessage(ctx, req.Code, req.Player, req.Message)
	if err != nil {
		log.Debug("chat rejected", "code", req.Code, "player", req.Player, "error", err)
		return nil
	}

	return that.broadcast(req.Code, actionChatMessage, chatBroadcastPayload{
		Player:    message.Player,
		Message:   message.Message,
		Timestamp: message.Timestamp,
	})
}
