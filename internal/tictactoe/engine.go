package tictactoe

import "github.com/rocketscienceinc/gameroom-backend/internal/entity"

// winningLines are checked in a fixed order: rows, columns, diagonals.
var winningLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate inspects a board for a terminal outcome. It returns the winning
// mark and its index triple, entity.WinnerTie with no line for a full board
// without a winner, or an empty winner while the game is still open.
func Evaluate(board [9]string) (string, []int) {
	for _, line := range winningLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a, []int{line[0], line[1], line[2]}
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return "", nil
		}
	}

	return entity.WinnerTie, nil
}
