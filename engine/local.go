package engine

import (
	"xai/experiments/metrics"
	"xai/explain"
	"xai/game"
	"xai/policy"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Turn records one move of a self-play game.
type Turn struct {
	Step        int
	Player      game.Player
	Board       game.Board // Before the move
	Action      game.Position
	Probability float64
	Evaluation  float64 // Minimax value of the action for the mover, when Evaluated
	Evaluated   bool
	Explanation game.Distribution // SVERL scores for the mover, when Explained
	Explained   bool
	Metric      metrics.ExplainMetric
}

// valuer is implemented by policies that can score individual actions.
type valuer interface {
	Values(board game.Board) (game.Distribution, bool)
}

type Option func(e *Engine)

func WithStart(board game.Board) Option {
	return func(e *Engine) {
		e.start = board
	}
}

func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithExplanations attaches a SVERL explanation of the mover's policy to every turn.
func WithExplanations(gamma float64, mode explain.Mode) Option {
	return func(e *Engine) {
		e.explainMoves = true
		e.gamma = gamma
		e.mode = mode
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(e *Engine) {
		if collector != nil {
			e.metrics = collector
		}
	}
}

// Engine plays two policies against each other.
type Engine struct {
	Board        game.Board
	Policies     [2]policy.Policy // Indexed by game.Player
	start        game.Board
	rng          *rand.Rand
	explainMoves bool
	gamma        float64
	mode         explain.Mode
	metrics      metrics.Collector
}

func LocalEngine(x, o policy.Policy, options ...Option) *Engine {
	if x == nil || o == nil {
		panic("both players need a policy")
	}

	e := &Engine{ // Default values
		Policies: [2]policy.Policy{x, o},
		start:    game.NewBoard(),
		rng:      rand.New(rand.NewSource(1)),
		gamma:    explain.DefaultGamma,
		metrics:  metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(e)
	}
	e.Board = e.start
	return e
}

// Run plays from the start board until nobody can move and returns the
// winner, if any, with the history of the game.
func (e *Engine) Run() (game.Player, bool, []Turn) {
	e.Board = e.start
	turns := []Turn{}

	log.Info().Msgf("starting game from %s", e.Board)

	for step := 1; ; step++ {
		player, ok := e.Board.CurrentPlayer()
		if !ok {
			break
		}

		turn, ok := e.play(step, player)
		if !ok {
			log.Warn().Msgf("policy for %s returned no move on %s", player, e.Board)
			break
		}
		turns = append(turns, turn)
		e.Board = e.Board.Play(turn.Action, player)
	}

	winner, won := e.Board.Winner()
	if won {
		log.Info().Msgf("game over after %d moves, winner: %s", len(turns), winner)
	} else {
		log.Info().Msgf("game over after %d moves, draw", len(turns))
	}
	return winner, won, turns
}

func (e *Engine) play(step int, player game.Player) (Turn, bool) {
	p := e.Policies[player]
	dist := p.Evaluate(e.Board)
	action, ok := policy.Choose(dist, e.rng)
	if !ok {
		return Turn{}, false
	}

	turn := Turn{
		Step:        step,
		Player:      player,
		Board:       e.Board,
		Action:      action,
		Probability: dist.At(action),
	}

	if v, ok := p.(valuer); ok {
		if values, ok := v.Values(e.Board); ok {
			turn.Evaluation = values.At(action)
			turn.Evaluated = true
		}
	}

	if e.explainMoves {
		explainer := explain.NewExplainer(p, explain.WithGamma(e.gamma), explain.WithMetrics(e.metrics))
		turn.Explanation, turn.Metric = explainer.SVERL(e.Board, e.mode)
		turn.Explained = true
	}

	log.Debug().Int("step", step).Stringer("player", player).Int("action", action.Index()).Float64("probability", turn.Probability).Msg("move")
	return turn, true
}
