package apperror

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionFull      = errors.New("session is full")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameFinished     = errors.New("game is already finished")
	ErrPlayerNotSeated  = errors.New("player is not seated in this session")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrInvalidInput     = errors.New("missing required field")
)
