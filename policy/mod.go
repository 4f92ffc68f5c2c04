package policy

import (
	"fmt"
	"math/rand/v2"
	"xai/game"

	"gonum.org/v1/gonum/stat/distuv"
)

// Policy maps a board to a distribution over cells. The distribution is all
// zero on terminal or full boards; otherwise it is non-negative, zero at
// occupied cells and sums to one.
type Policy interface {
	Evaluate(board game.Board) game.Distribution
}

// Func adapts a plain function to the Policy interface.
type Func func(game.Board) game.Distribution

func (f Func) Evaluate(board game.Board) game.Distribution {
	return f(board)
}

const (
	RandomName  = "random"
	MinimaxName = "minimax"
)

// New builds a policy by name. Options only apply to the minimax policy.
func New(name string, options ...Option) (Policy, error) {
	switch name {
	case RandomName:
		return Random{}, nil
	case MinimaxName:
		return NewMinimax(options...), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}

// Choose samples a cell from the distribution. It returns false when the
// distribution carries no mass.
func Choose(dist game.Distribution, src rand.Source) (game.Position, bool) {
	if dist.Sum() <= 0 {
		return game.Position{}, false
	}

	pos := game.PositionAt(int(distuv.NewCategorical(dist.Values(), src).Rand()))
	if dist.At(pos) <= 0 {
		// A draw of exactly zero lands on the first cell whatever its weight
		return dist.Argmax(), true
	}
	return pos, true
}
