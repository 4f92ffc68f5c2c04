package game

import (
	"fmt"
	"strings"
)

// Board is the tri-state grid. It is a comparable value, so boards can key maps.
type Board struct {
	Grid[Tile]
}

func NewBoard() Board {
	return Board{}
}

// ParseBoard reads nine cells in row-major order. 'X' and 'O' (any case) are
// marks, '.', '_' and '-' are empty cells; '/' and whitespace are ignored.
func ParseBoard(s string) (Board, error) {
	var b Board
	i := 0
	for _, r := range s {
		var tile Tile
		switch r {
		case 'X', 'x':
			tile = X
		case 'O', 'o':
			tile = O
		case '.', '_', '-':
			tile = Empty
		case '/', ' ', '\t', '\n', '\r':
			continue
		default:
			return Board{}, fmt.Errorf("invalid cell %q at offset %d", r, i)
		}
		if i >= Cells {
			return Board{}, fmt.Errorf("board has more than %d cells", Cells)
		}
		b.Set(PositionAt(i), tile)
		i++
	}
	if i != Cells {
		return Board{}, fmt.Errorf("board has %d cells, want %d", i, Cells)
	}
	return b, nil
}

func (b Board) String() string {
	var sb strings.Builder
	for y, row := range b.Cells {
		if y > 0 {
			sb.WriteByte('/')
		}
		for _, tile := range row {
			sb.WriteString(tile.String())
		}
	}
	return sb.String()
}

// Play returns a copy of the board with the player's mark at pos.
func (b Board) Play(pos Position, p Player) Board {
	b.Set(pos, TileOf(p))
	return b
}

func (b Board) EmptyPositions() []Position {
	positions := make([]Position, 0, Cells)
	for _, pos := range Positions() {
		if b.At(pos) == Empty {
			positions = append(positions, pos)
		}
	}
	return positions
}

func (b Board) IsFull() bool {
	for _, row := range b.Cells {
		for _, tile := range row {
			if tile == Empty {
				return false
			}
		}
	}
	return true
}

// Winner scans rows, then columns, then both diagonals. A board where both
// players complete a line reports the first line found in that order.
func (b Board) Winner() (Player, bool) {
	for y := 0; y < Size; y++ {
		if p, ok := b.line(Position{0, y}, Position{1, 0}); ok {
			return p, true
		}
	}
	for x := 0; x < Size; x++ {
		if p, ok := b.line(Position{x, 0}, Position{0, 1}); ok {
			return p, true
		}
	}

	diag, diagOk := b.line(Position{0, 0}, Position{1, 1})
	anti, antiOk := b.line(Position{0, Size - 1}, Position{1, -1})
	// X is preferred over O across both diagonals
	for _, p := range []Player{PlayerX, PlayerO} {
		if (diagOk && diag == p) || (antiOk && anti == p) {
			return p, true
		}
	}
	return 0, false
}

func (b Board) line(start, step Position) (Player, bool) {
	first := b.At(start)
	if first == Empty {
		return 0, false
	}
	pos := start
	for i := 1; i < Size; i++ {
		pos = Position{X: pos.X + step.X, Y: pos.Y + step.Y}
		if b.At(pos) != first {
			return 0, false
		}
	}
	if first == X {
		return PlayerX, true
	}
	return PlayerO, true
}

// IsTerminal reports whether nobody can move, either because of a winner or a full board.
func (b Board) IsTerminal() bool {
	_, ok := b.CurrentPlayer()
	return !ok
}

// CurrentPlayer is O when X has more marks and X otherwise. There is no
// player to move on a won or full board.
func (b Board) CurrentPlayer() (Player, bool) {
	if _, won := b.Winner(); won {
		return 0, false
	}

	countX, countO, empty := 0, 0, 0
	for _, row := range b.Cells {
		for _, tile := range row {
			switch tile {
			case X:
				countX++
			case O:
				countO++
			default:
				empty++
			}
		}
	}
	if empty == 0 {
		return 0, false
	}

	if countX > countO {
		return PlayerO, true
	}
	return PlayerX, true
}

// Reward is +1 if the player has won, -1 if the opponent has, and 0 otherwise.
func (b Board) Reward(p Player) float64 {
	winner, ok := b.Winner()
	if !ok {
		return 0
	}
	if winner == p {
		return 1
	}
	return -1
}
