package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

type sessionManager interface {
	CreateSession(ctx context.Context, gameType string) (string, error)
	JoinSession(ctx context.Context, code, player string) (*entity.Session, error)
	MakeMove(ctx context.Context, code, player string, cell int) (*entity.Session, error)
	PostMessage(ctx context.Context, code, player, text string) (*entity.ChatMessage, error)
	GetSession(ctx context.Context, code string) (*entity.Session, error)
	Messages(ctx context.Context, code string) ([]entity.ChatMessage, error)
}

type Handlers struct {
	logger  *slog.Logger
	manager sessionManager
}

func NewHandlers(logger *slog.Logger, manager sessionManager) *Handlers {
	return &Handlers{
		logger:  logger,
		manager: manager,
	}
}

func (that *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "CreateGame")

	var req createGameRequest
	// an empty body defaults the game type
	_ = json.NewDecoder(r.Body).Decode(&req)

	code, err := that.manager.CreateSession(r.Context(), req.Type)
	if err != nil {
		log.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, createGameResponse{Code: code})
}

func (that *Handlers) JoinGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "JoinGame")

	var req joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" || req.Player == "" {
		writeError(w, http.StatusBadRequest, apperror.ErrInvalidInput)
		return
	}

	session, err := that.manager.JoinSession(r.Context(), req.Code, req.Player)
	if err != nil {
		log.Debug("join rejected", "code", req.Code, "player", req.Player, "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, joinGameResponse{
		Success:     true,
		PlayerIndex: len(session.State.Players) - 1,
		Players:     session.State.Players,
	})
}

func (that *Handlers) MakeMove(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "MakeMove")

	var req makeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" || req.Player == "" || req.Index == nil {
		writeError(w, http.StatusBadRequest, apperror.ErrInvalidInput)
		return
	}

	session, err := that.manager.MakeMove(r.Context(), req.Code, req.Player, *req.Index)
	if err != nil {
		log.Debug("move rejected", "code", req.Code, "player", req.Player, "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, makeMoveResponse{Success: true, State: session.State})
}

func (that *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "SendMessage")

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" || req.Player == "" {
		writeError(w, http.StatusBadRequest, apperror.ErrInvalidInput)
		return
	}

	if _, err := that.manager.PostMessage(r.Context(), req.Code, req.Player, req.Message); err != nil {
		log.Debug("message rejected", "code", req.Code, "player", req.Player, "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{Success: true})
}

func (that *Handlers) GameState(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	session, err := that.manager.GetSession(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	writeJSON(w, http.StatusOK, gameStateResponse{State: session.State})
}

func (that *Handlers) GetMessages(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	messages, err := that.manager.Messages(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	writeJSON(w, http.StatusOK, messagesResponse{Messages: messages})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	message := "internal error"
	if err != nil {
		// unwrap to the sentinel so clients see a stable reason
		message = rootCause(err).Error()
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func rootCause(err error) error {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}
