package explain

import (
	"xai/experiments/metrics"
	"xai/game"
)

// Valuer assigns a grid-valued payoff to a coalition of visible cells.
type Valuer interface {
	Value(o Observation) game.Distribution
}

type ValuerFunc func(Observation) game.Distribution

func (f ValuerFunc) Value(o Observation) game.Distribution {
	return f(o)
}

// Attribution holds, for every feature cell, how much seeing that cell moved
// the value at each candidate action.
type Attribution = game.Grid[game.Distribution]

// Attribute computes exact Shapley values with one memo shared by all
// features. The valuer must not depend on which feature is being attributed.
func Attribute(board game.Board, v Valuer) Attribution {
	return attribute(board, sharedMemo(v, metrics.NewDummyCollector()))
}

// AttributeEach computes exact Shapley values where every feature brings its
// own valuer. Memos are not shared between features.
func AttributeEach(board game.Board, valuerFor func(feature game.Position) Valuer) Attribution {
	return attribute(board, memoPerFeature(valuerFor, metrics.NewDummyCollector()))
}

type memo struct {
	valuer  Valuer
	values  map[Observation]game.Distribution
	metrics metrics.Collector
}

func newMemo(v Valuer, collector metrics.Collector) *memo {
	return &memo{
		valuer:  v,
		values:  make(map[Observation]game.Distribution),
		metrics: collector,
	}
}

func (m *memo) value(o Observation) game.Distribution {
	if cached, ok := m.values[o]; ok {
		m.metrics.AddCacheHit()
		return cached
	}

	m.metrics.AddEvaluation()
	value := m.valuer.Value(o)
	m.values[o] = value
	return value
}

func sharedMemo(v Valuer, collector metrics.Collector) func(game.Position) *memo {
	m := newMemo(v, collector)
	return func(game.Position) *memo { return m }
}

func memoPerFeature(valuerFor func(game.Position) Valuer, collector metrics.Collector) func(game.Position) *memo {
	return func(feature game.Position) *memo {
		return newMemo(valuerFor(feature), collector)
	}
}

// attribute evaluates
//
//	phi(f) = 1/n! * sum over coalitions C without f of s!(n-s-1)! * (V(C+f) - V(C))
//
// with s = |C| by walking every coalition that contains f and hiding f.
func attribute(board game.Board, memoFor func(feature game.Position) *memo) Attribution {
	n := game.Cells
	scale := 1 / float64(factorial(n))

	var result Attribution
	for _, feature := range game.Positions() {
		m := memoFor(feature)

		var phi game.Distribution
		for mask := 0; mask <= int(allObserved); mask++ {
			with := Observation{Board: board, observed: uint16(mask)}
			without := with
			if !without.Subtract(feature) {
				continue
			}

			s := without.Size()
			weight := float64(factorial(s) * factorial(n-s-1))
			marginal := m.value(with).Sub(m.value(without))
			phi = phi.Add(marginal.Scale(weight))
		}
		result.Set(feature, phi.Scale(scale))
	}
	return result
}

func factorial(x int) int {
	result := 1
	for i := 2; i <= x; i++ {
		result *= i
	}
	return result
}
