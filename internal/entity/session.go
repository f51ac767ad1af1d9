package entity

const (
	GameTicTacToe = "tic-tac-toe"

	MarkX     = "X"
	MarkO     = "O"
	WinnerTie = "tie"

	EmptyCell = ""

	MaxPlayers = 2
)

// ChatMessage is a single chat entry, timestamped with wall-clock HH:MM.
type ChatMessage struct {
	Player    string `json:"player"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// GameState holds everything two clients must agree on: seats, board,
// whose turn it is, the terminal outcome and the chat log.
type GameState struct {
	Players     []string      `json:"players"`
	Board       [9]string     `json:"board"`
	Turn        int           `json:"turn"`
	GameOver    bool          `json:"game_over"`
	Winner      string        `json:"winner"`
	WinningLine []int         `json:"winning_line"`
	Messages    []ChatMessage `json:"messages"`
}

// Session is one game instance, identified by its short join code.
type Session struct {
	Code  string     `json:"code"`
	Type  string     `json:"type"`
	State *GameState `json:"state"`
}

func NewSession(code, gameType string) *Session {
	return &Session{
		Code: code,
		Type: gameType,
		State: &GameState{
			Players:     []string{},
			Turn:        0,
			WinningLine: []int{},
			Messages:    []ChatMessage{},
		},
	}
}

// Clone returns a deep copy of the session. The store hands out copies so a
// caller may keep reading a session after the per-code lock is released
// without racing the next mutation.
func (that *Session) Clone() *Session {
	if that == nil {
		return nil
	}

	copied := *that
	copied.State = that.State.Clone()

	return &copied
}

// Clone returns a deep copy of the state. Empty collections stay non-nil so
// they keep serializing as [] rather than null.
func (that *GameState) Clone() *GameState {
	if that == nil {
		return nil
	}

	copied := *that

	copied.Players = make([]string, len(that.Players))
	copy(copied.Players, that.Players)

	copied.WinningLine = make([]int, len(that.WinningLine))
	copy(copied.WinningLine, that.WinningLine)

	copied.Messages = make([]ChatMessage, len(that.Messages))
	copy(copied.Messages, that.Messages)

	return &copied
}

// MarkForSeat returns the mark a seat plays: X for seat 0, O for seat 1.
func MarkForSeat(seat int) string {
	if seat == 0 {
		return MarkX
	}
	return MarkO
}

// SeatOf returns the seat index of a player, or -1 if the player is not
// seated. The same name may occupy both seats; the first occurrence wins.
func (that *GameState) SeatOf(player string) int {
	for i, p := range that.Players {
		if p == player {
			return i
		}
	}
	return -1
}

func (that *GameState) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

// IsStarted reports whether both seats are taken and moves are legal.
func (that *GameState) IsStarted() bool {
	return len(that.Players) == MaxPlayers
}
