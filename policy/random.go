package policy

import "xai/game"

// Random spreads probability evenly over the empty cells.
type Random struct{}

func (Random) Evaluate(board game.Board) game.Distribution {
	var dist game.Distribution
	if board.IsTerminal() {
		return dist
	}

	empty := board.EmptyPositions()
	p := 1 / float64(len(empty))
	for _, pos := range empty {
		dist.Set(pos, p)
	}
	return dist
}
