// Package engine holds the board mechanics shared by local games and
// online lobbies: board creation, gravity drops, win-line detection and
// draw detection. It carries no session or HTTP concerns.
package engine

import "errors"

var (
	ErrInvalidDimension = errors.New("board must be at least 4x4")
	ErrOutOfRange       = errors.New("column out of range")
	ErrColumnFull       = errors.New("column is full")
)

// Board is a row-major grid. 0 means empty, any positive value is the
// owning player's id. All rows have the same length.
type Board [][]int

// NewBoard returns an all-zero rows x cols grid.
func NewBoard(rows, cols int) (Board, error) {
	if rows < 4 || cols < 4 {
		return nil, ErrInvalidDimension
	}
	b := make(Board, rows)
	for r := range b {
		b[r] = make([]int, cols)
	}
	return b, nil
}

// DropToken places playerID in the lowest empty cell of column and
// returns the coordinates of the placed token. The board is mutated in
// place.
func DropToken(b Board, column, playerID int) (int, int, error) {
	rows := len(b)
	cols := 0
	if rows > 0 {
		cols = len(b[0])
	}
	if column < 0 || column >= cols {
		return 0, 0, ErrOutOfRange
	}
	for r := rows - 1; r >= 0; r-- {
		if b[r][column] == 0 {
			b[r][column] = playerID
			return r, column, nil
		}
	}
	return 0, 0, ErrColumnFull
}

// countRun walks from (r,c) in direction (dr,dc) and counts consecutive
// cells owned by pid, including the starting cell.
func countRun(b Board, r, c, dr, dc, pid int) int {
	rows, cols := len(b), len(b[0])
	n := 0
	for r >= 0 && r < rows && c >= 0 && c < cols && b[r][c] == pid {
		n++
		r += dr
		c += dc
	}
	return n
}

// CheckWinner reports whether the token just placed at (lastRow,lastCol)
// completed a line of at least connect cells. It scans the four line
// directions through the placed cell, counting both ways and subtracting
// the double-counted origin. Only valid immediately after the placing
// move; it does not scan the whole board.
func CheckWinner(b Board, lastRow, lastCol, playerID, connect int) bool {
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for _, d := range dirs {
		run := countRun(b, lastRow, lastCol, d[0], d[1], playerID) +
			countRun(b, lastRow, lastCol, -d[0], -d[1], playerID) - 1
		if run >= connect {
			return true
		}
	}
	return false
}

// IsDraw reports whether every cell is occupied. A full board can also be
// a winning board, so callers must check CheckWinner first.
func IsDraw(b Board) bool {
	for _, row := range b {
		for _, cell := range row {
			if cell == 0 {
				return false
			}
		}
	}
	return true
}
