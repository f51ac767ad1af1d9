package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/pkg"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
	"github.com/rocketscienceinc/gameroom-backend/internal/tictactoe"
)

var ErrUnknownGameType = errors.New("unknown game type")

// SessionManager owns the session lifecycle: it creates sessions, seats
// players, applies moves and relays chat. All mutations of one session are
// serialized behind a per-code lock; sessions with different codes never
// contend.
type SessionManager struct {
	logger   *slog.Logger
	sessions repository.SessionRepository

	codeLength int
	generate   func(length int) string
	now        func() time.Time

	// createMu makes the uniqueness check and the insert one atomic step,
	// so two concurrent creates can never claim the same code
	createMu sync.Mutex

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

type Option func(*SessionManager)

// WithCodeLength overrides the generated session code length.
func WithCodeLength(length int) Option {
	return func(m *SessionManager) {
		if length > 0 {
			m.codeLength = length
		}
	}
}

// WithCodeGenerator substitutes the code source, used by tests to force
// collisions.
func WithCodeGenerator(generate func(length int) string) Option {
	return func(m *SessionManager) {
		m.generate = generate
	}
}

// WithClock substitutes the wall clock used for chat timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *SessionManager) {
		m.now = now
	}
}

func NewSessionManager(logger *slog.Logger, sessions repository.SessionRepository, opts ...Option) *SessionManager {
	manager := &SessionManager{
		logger:   logger,
		sessions: sessions,

		codeLength: pkg.DefaultCodeLength,
		generate:   pkg.GenerateCode,
		now:        time.Now,

		locks: make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// CreateSession allocates a fresh waiting session under a code that is unique
// among live sessions, retrying the generator on collision.
func (that *SessionManager) CreateSession(ctx context.Context, gameType string) (string, error) {
	if gameType == "" {
		gameType = entity.GameTicTacToe
	}

	if gameType != entity.GameTicTacToe {
		return "", fmt.Errorf("%w: %s", ErrUnknownGameType, gameType)
	}

	that.createMu.Lock()
	defer that.createMu.Unlock()

	var code string
	for {
		code = that.generate(that.codeLength)

		taken, err := that.sessions.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}

		if !taken {
			break
		}
	}

	session := entity.NewSession(code, gameType)
	if err := that.sessions.CreateOrUpdate(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "code", code, "type", gameType)

	return code, nil
}

// JoinSession seats a player in the session. The same name may take both
// seats; a third seat never exists. The returned session reflects the join,
// and IsStarted on its state signals that gameplay may begin.
func (that *SessionManager) JoinSession(ctx context.Context, code, player string) (*entity.Session, error) {
	unlock := that.lock(code)
	defer unlock()

	session, err := that.sessions.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.State.IsFull() {
		return nil, fmt.Errorf("%w: code %s", apperror.ErrSessionFull, code)
	}

	session.State.Players = append(session.State.Players, player)
	if err = that.sessions.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	that.logger.Info("player joined", "code", code, "player", player, "seat", len(session.State.Players)-1)

	return session, nil
}

// MakeMove validates and applies one move. On a terminal outcome the turn
// freezes and the board becomes immutable; otherwise the turn passes to the
// other seat.
func (that *SessionManager) MakeMove(ctx context.Context, code, player string, cell int) (*entity.Session, error) {
	unlock := that.lock(code)
	defer unlock()

	session, err := that.sessions.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	state := session.State

	seat := state.SeatOf(player)
	if seat < 0 {
		return nil, fmt.Errorf("%w: %s", apperror.ErrPlayerNotSeated, player)
	}

	if state.GameOver {
		return nil, apperror.ErrGameFinished
	}

	if !state.IsStarted() {
		return nil, apperror.ErrGameIsNotStarted
	}

	if state.Turn != seat {
		return nil, apperror.ErrNotYourTurn
	}

	if cell < 0 || cell >= len(state.Board) {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if state.Board[cell] != entity.EmptyCell {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	state.Board[cell] = entity.MarkForSeat(seat)

	winner, line := tictactoe.Evaluate(state.Board)
	if winner != "" {
		state.GameOver = true
		state.Winner = winner
		if line != nil {
			state.WinningLine = line
		}
	} else {
		state.Turn = 1 - state.Turn
	}

	if err = that.sessions.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	that.logger.Info("move applied", "code", code, "player", player, "cell", cell, "game_over", state.GameOver)

	return session, nil
}

// PostMessage appends a chat message. Chat stays open after the game is over.
func (that *SessionManager) PostMessage(ctx context.Context, code, player, text string) (*entity.ChatMessage, error) {
	unlock := that.lock(code)
	defer unlock()

	session, err := that.sessions.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.State.SeatOf(player) < 0 {
		return nil, fmt.Errorf("%w: %s", apperror.ErrPlayerNotSeated, player)
	}

	message := entity.ChatMessage{
		Player:    player,
		Message:   text,
		Timestamp: that.now().Format("15:04"),
	}

	session.State.Messages = append(session.State.Messages, message)
	if err = that.sessions.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return &message, nil
}

// GetSession returns a snapshot of a session. Reads take the same per-code
// lock as mutations, and the repository hands out copies, so the snapshot
// stays safe to read after later moves mutate the stored state.
func (that *SessionManager) GetSession(ctx context.Context, code string) (*entity.Session, error) {
	unlock := that.lock(code)
	defer unlock()

	session, err := that.sessions.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// Messages returns the chat log of a session.
func (that *SessionManager) Messages(ctx context.Context, code string) ([]entity.ChatMessage, error) {
	unlock := that.lock(code)
	defer unlock()

	session, err := that.sessions.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session.State.Messages, nil
}

// lock serializes mutations per session code. Lock entries are never removed:
// sessions live for the process lifetime, so their locks do too.
func (that *SessionManager) lock(code string) func() {
	that.locksMu.Lock()
	mu, ok := that.locks[code]
	if !ok {
		mu = &sync.Mutex{}
		that.locks[code] = mu
	}
	that.locksMu.Unlock()

	mu.Lock()

	return mu.Unlock
}
