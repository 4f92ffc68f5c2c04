package game

// Size is the side length of the board.
const Size = 3

// Cells is the number of cells (features) on the board.
const Cells = Size * Size

type Tile int

const (
	Empty Tile = iota
	X
	O
)

func (t Tile) String() string {
	switch t {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

type Player int

const (
	PlayerX Player = iota
	PlayerO
)

func (p Player) Next() Player {
	if p == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (p Player) String() string {
	if p == PlayerX {
		return "X"
	}
	return "O"
}

// TileOf maps a player to the mark it places on the board.
func TileOf(p Player) Tile {
	if p == PlayerX {
		return X
	}
	return O
}
