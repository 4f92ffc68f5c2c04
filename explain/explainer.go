package explain

import (
	"fmt"
	"time"
	"xai/experiments/metrics"
	"xai/game"
	"xai/policy"

	"github.com/rs/zerolog/log"
)

const DefaultGamma = 0.5

type Option func(e *Explainer)

// WithGamma sets the discount used by SVERL return predictions.
func WithGamma(gamma float64) Option {
	return func(e *Explainer) {
		e.gamma = gamma
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(e *Explainer) {
		if collector != nil {
			e.metrics = collector
		}
	}
}

// Explainer attributes a policy's behaviour on a board to the board's cells.
// Every call recomputes from scratch; memos live for one call only.
type Explainer struct {
	policy  policy.Policy
	gamma   float64
	metrics metrics.Collector
}

func NewExplainer(p policy.Policy, options ...Option) *Explainer {
	e := &Explainer{ // Default values
		policy:  p,
		gamma:   DefaultGamma,
		metrics: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(e)
	}
	checkGamma(e.gamma)
	return e
}

func checkGamma(gamma float64) {
	if gamma < 0 || gamma > 1 {
		panic(fmt.Sprintf("discount factor %v outside of [0, 1]", gamma))
	}
}

func (e *Explainer) Gamma() float64 {
	return e.gamma
}

// Shapley attributes the policy's action distribution: cell f of the result
// tells how observing f shifted the probability of every action.
func (e *Explainer) Shapley(board game.Board) (Attribution, metrics.ExplainMetric) {
	e.metrics.Start("shapley", e.gamma)
	start := time.Now()
	log.Debug().Str("board", board.String()).Msg("shapley-start")

	result := attribute(board, sharedMemo(e.policyValuer(), e.metrics))

	metric := e.metrics.Complete()
	log.Debug().Str("board", board.String()).Dur("took", time.Since(start)).Msg("shapley-done")
	return result, metric
}

// Baseline is the policy's distribution when no cell is visible. Summing a
// Shapley attribution onto it yields the fully observed distribution.
func (e *Explainer) Baseline(board game.Board) game.Distribution {
	return NewObservation(board).Value(e.policy)
}

func (e *Explainer) policyValuer() Valuer {
	return ValuerFunc(func(o Observation) game.Distribution {
		return o.Value(e.policy)
	})
}
