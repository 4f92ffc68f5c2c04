package explain

import (
	"math/bits"
	"xai/game"
	"xai/policy"
)

const allObserved = uint16(1)<<game.Cells - 1

// Observation is a board of which only some cells are visible. Hidden cells
// are unknown to whoever consumes the observation.
type Observation struct {
	Board    game.Board
	observed uint16 // Bit i set when the cell at row-major index i is visible
}

// FullObservation sees every cell of the board.
func FullObservation(board game.Board) Observation {
	return Observation{Board: board, observed: allObserved}
}

// NewObservation sees only the given positions. Out of range positions are ignored.
func NewObservation(board game.Board, positions ...game.Position) Observation {
	o := Observation{Board: board}
	for _, pos := range positions {
		if pos.InBounds() {
			o.observed |= 1 << pos.Index()
		}
	}
	return o
}

func (o Observation) Observed(pos game.Position) bool {
	return pos.InBounds() && o.observed&(1<<pos.Index()) != 0
}

// Subtract hides pos and reports whether it was visible before.
func (o *Observation) Subtract(pos game.Position) bool {
	if !o.Observed(pos) {
		return false
	}
	o.observed &^= 1 << pos.Index()
	return true
}

// Size is the number of visible cells.
func (o Observation) Size() int {
	return bits.OnesCount16(o.observed)
}

func (o Observation) Positions() []game.Position {
	return o.filter(true)
}

func (o Observation) Hidden() []game.Position {
	return o.filter(false)
}

func (o Observation) filter(observed bool) []game.Position {
	positions := make([]game.Position, 0, game.Cells)
	for _, pos := range game.Positions() {
		if o.Observed(pos) == observed {
			positions = append(positions, pos)
		}
	}
	return positions
}

var hiddenTiles = [3]game.Tile{game.Empty, game.X, game.O}

// PossibleStates lists every board consistent with the observation: each
// hidden cell takes every tile, including assignments no real game reaches.
// Completion i writes the t-th base-3 digit of i into the t-th hidden cell.
func (o Observation) PossibleStates() []game.Board {
	hidden := o.Hidden()
	count := 1
	for range hidden {
		count *= len(hiddenTiles)
	}

	states := make([]game.Board, count)
	for i := range states {
		board := o.Board
		digits := i
		for _, pos := range hidden {
			board.Set(pos, hiddenTiles[digits%len(hiddenTiles)])
			digits /= len(hiddenTiles)
		}
		states[i] = board
	}
	return states
}

// Value is the policy's distribution averaged uniformly over all possible states.
func (o Observation) Value(p policy.Policy) game.Distribution {
	states := o.PossibleStates()

	var result game.Distribution
	for _, state := range states {
		result = result.Add(p.Evaluate(state))
	}
	return result.Scale(1 / float64(len(states)))
}
