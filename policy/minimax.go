package policy

import (
	"math"
	"sync"
	"xai/game"
)

// DefaultTolerance is how close two action values must be to count as a tie.
const DefaultTolerance = 1e-9

const unlimited = -1

type Option func(m *Minimax)

// WithDepthLimit stops the search after depth further plies. At the cutoff a
// position is scored by its reward alone.
func WithDepthLimit(depth int) Option {
	return func(m *Minimax) {
		if depth >= 0 {
			m.depthLimit = depth
		}
	}
}

func WithTolerance(tolerance float64) Option {
	return func(m *Minimax) {
		if tolerance >= 0 {
			m.tolerance = tolerance
		}
	}
}

type searchKey struct {
	board     game.Board
	remaining int
}

type searchResult struct {
	values game.Distribution // Per action, from the mover's perspective
	best   float64
}

// Minimax is the exact game-theoretic policy. Every optimal action shares the
// probability mass equally.
//
// Values are discounted by depth: an outcome d plies after the evaluated board
// is worth reward/(d+1), so faster wins and slower losses are preferred. The
// value of a board does not depend on how it was reached, so the cache may be
// reused across queries.
type Minimax struct {
	mu         sync.Mutex
	depthLimit int
	tolerance  float64
	cache      map[searchKey]searchResult
}

func NewMinimax(options ...Option) *Minimax {
	m := &Minimax{ // Default values
		depthLimit: unlimited,
		tolerance:  DefaultTolerance,
		cache:      make(map[searchKey]searchResult),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *Minimax) Evaluate(board game.Board) game.Distribution {
	result, ok := m.lookup(board)
	if !ok {
		return game.Zero()
	}

	var dist game.Distribution
	for _, pos := range board.EmptyPositions() {
		if result.values.At(pos) >= result.best-m.tolerance {
			dist.Set(pos, 1)
		}
	}
	return dist.Normalize()
}

// Best returns the first optimal action in row-major order and its value for
// the player to move. It returns false on terminal boards.
func (m *Minimax) Best(board game.Board) (game.Position, float64, bool) {
	result, ok := m.lookup(board)
	if !ok {
		return game.Position{}, 0, false
	}

	for _, pos := range board.EmptyPositions() {
		if v := result.values.At(pos); v >= result.best-m.tolerance {
			return pos, v, true
		}
	}
	return game.Position{}, 0, false
}

// Values returns the value of every legal action for the player to move.
// Occupied cells hold zero.
func (m *Minimax) Values(board game.Board) (game.Distribution, bool) {
	result, ok := m.lookup(board)
	return result.values, ok
}

// CacheSize reports how many positions have been solved so far.
func (m *Minimax) CacheSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.cache)
}

func (m *Minimax) lookup(board game.Board) (searchResult, bool) {
	if board.IsTerminal() {
		return searchResult{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.search(board, m.depthLimit), true
}

// search must only be called on boards with a player to move.
func (m *Minimax) search(board game.Board, remaining int) searchResult {
	key := searchKey{board: board, remaining: remaining}
	if cached, ok := m.cache[key]; ok {
		return cached
	}

	player, _ := board.CurrentPlayer()
	next := remaining
	if next > 0 {
		next--
	}

	result := searchResult{best: math.Inf(-1)}
	for _, action := range board.EmptyPositions() {
		child := board.Play(action, player)

		var value float64
		if child.IsTerminal() || remaining == 0 {
			value = child.Reward(player)
		} else {
			// Negate the opponent's value and push it one ply further away
			w := -m.search(child, next).best
			value = w / (1 + math.Abs(w))
		}

		result.values.Set(action, value)
		if value > result.best {
			result.best = value
		}
	}

	m.cache[key] = result
	return result
}
