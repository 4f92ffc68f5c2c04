package explain

import (
	"fmt"
	"time"
	"xai/experiments/metrics"
	"xai/game"
	"xai/policy"

	"github.com/rs/zerolog/log"
)

// Mode selects which policy plays out the future in a SVERL explanation.
type Mode int

const (
	// Local blinds only the immediate decision; the future is played by the
	// fully observing policy.
	Local Mode = iota
	// Global blinds every future decision to the attributed cell as well.
	Global
)

func (m Mode) String() string {
	if m == Global {
		return "global"
	}
	return "local"
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "local":
		return Local, nil
	case "global":
		return Global, nil
	default:
		return Local, fmt.Errorf("unknown sverl mode %q", s)
	}
}

// Predictor computes the discounted expected return of the player to move
// under one policy and one discount. The memo is tied to that pair.
type Predictor struct {
	policy  policy.Policy
	gamma   float64
	cache   map[game.Board]float64
	metrics metrics.Collector
}

// NewPredictor panics when gamma lies outside of [0, 1].
func NewPredictor(p policy.Policy, gamma float64) *Predictor {
	return newPredictor(p, gamma, metrics.NewDummyCollector())
}

func newPredictor(p policy.Policy, gamma float64, collector metrics.Collector) *Predictor {
	checkGamma(gamma)
	return &Predictor{
		policy:  p,
		gamma:   gamma,
		cache:   make(map[game.Board]float64),
		metrics: collector,
	}
}

// Predict returns zero on boards without a player to move. Otherwise it sums,
// over every action the policy may take, the immediate reward of the mover
// plus the discounted prediction of the resulting board.
func (p *Predictor) Predict(board game.Board) float64 {
	if cached, ok := p.cache[board]; ok {
		p.metrics.AddCacheHit()
		return cached
	}

	player, ok := board.CurrentPlayer()
	if !ok {
		return 0
	}
	p.metrics.AddPrediction()

	result := 0.0
	weights := p.policy.Evaluate(board)
	for _, pos := range board.EmptyPositions() {
		prob := weights.At(pos)
		if prob <= 0 {
			continue
		}

		child := board.Play(pos, player)
		result += prob * (child.Reward(player) + p.gamma*p.Predict(child))
	}

	p.cache[board] = result
	return result
}

// Blind is the base policy marginalized over one cell it can never see.
type Blind struct {
	Base    policy.Policy
	Feature game.Position
}

func (b Blind) Evaluate(board game.Board) game.Distribution {
	o := FullObservation(board)
	o.Subtract(b.Feature)
	return o.Value(b.Base)
}

// SVERL attributes the mover's expected return to the board's cells, one
// score per cell. Boards without a player to move explain to zero.
func (e *Explainer) SVERL(board game.Board, mode Mode) (game.Distribution, metrics.ExplainMetric) {
	e.metrics.Start("sverl-"+mode.String(), e.gamma)
	start := time.Now()
	log.Debug().Str("board", board.String()).Stringer("mode", mode).Float64("gamma", e.gamma).Msg("sverl-start")

	scores := e.sverl(board, mode)

	metric := e.metrics.Complete()
	log.Debug().Str("board", board.String()).Stringer("mode", mode).Dur("took", time.Since(start)).Msg("sverl-done")
	return scores, metric
}

func (e *Explainer) sverl(board game.Board, mode Mode) game.Distribution {
	player, ok := board.CurrentPlayer()
	if !ok {
		return game.Zero()
	}

	// First move distributions do not depend on the attributed cell
	firstMoves := newMemo(e.policyValuer(), metrics.NewDummyCollector())

	var attribution Attribution
	switch mode {
	case Global:
		attribution = attribute(board, memoPerFeature(func(feature game.Position) Valuer {
			blind := Blind{Base: e.policy, Feature: feature}
			return e.returnValuer(board, player, firstMoves, newPredictor(blind, e.gamma, e.metrics))
		}, e.metrics))
	default:
		predictor := newPredictor(e.policy, e.gamma, e.metrics)
		attribution = attribute(board, sharedMemo(e.returnValuer(board, player, firstMoves, predictor), e.metrics))
	}

	return game.Distribution{Grid: game.Map(attribution, func(_ game.Position, d game.Distribution) float64 {
		return d.Sum()
	})}
}

// ReturnValue is the fully observed counterpart of a SVERL coalition value:
// the expected future return after the policy's own first move.
func (e *Explainer) ReturnValue(board game.Board) float64 {
	return e.returnValueOf(board, FullObservation(board))
}

// BaselineReturn is ReturnValue with every cell hidden from the first move.
func (e *Explainer) BaselineReturn(board game.Board) float64 {
	return e.returnValueOf(board, NewObservation(board))
}

func (e *Explainer) returnValueOf(board game.Board, o Observation) float64 {
	player, ok := board.CurrentPlayer()
	if !ok {
		return 0
	}
	collector := metrics.NewDummyCollector()
	firstMoves := newMemo(e.policyValuer(), collector)
	predictor := newPredictor(e.policy, e.gamma, collector)
	return e.returnValuer(board, player, firstMoves, predictor).Value(o).Sum()
}

// returnValuer weighs the prediction after every legal first action by the
// probability the policy gives it under the coalition.
func (e *Explainer) returnValuer(board game.Board, player game.Player, firstMoves *memo, predictor *Predictor) Valuer {
	return ValuerFunc(func(o Observation) game.Distribution {
		first := firstMoves.value(o)

		var result game.Distribution
		for _, pos := range board.EmptyPositions() {
			prob := first.At(pos)
			if prob <= 0 {
				continue
			}
			result.Set(pos, prob*predictor.Predict(board.Play(pos, player)))
		}
		return result
	})
}
