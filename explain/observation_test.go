package explain

import (
	"math"
	"testing"
	"xai/game"
	"xai/policy"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) game.Board {
	t.Helper()
	b, err := game.ParseBoard(s)
	require.NoError(t, err)
	return b
}

func TestObservation(t *testing.T) {
	board := mustParse(t, "XO./.X./...")

	t.Run("full observation sees every cell", func(t *testing.T) {
		o := FullObservation(board)
		require.Equal(t, game.Cells, o.Size())
		require.Empty(t, o.Hidden())
		require.Equal(t, game.Positions(), o.Positions())
	})

	t.Run("subtract hides a visible cell once", func(t *testing.T) {
		o := FullObservation(board)
		center := game.Position{X: 1, Y: 1}
		require.True(t, o.Subtract(center), "Center was visible")
		require.False(t, o.Observed(center))
		require.False(t, o.Subtract(center), "Center is already hidden")
		require.Equal(t, game.Cells-1, o.Size())
		require.Equal(t, []game.Position{center}, o.Hidden())
	})

	t.Run("out of range positions are never observed", func(t *testing.T) {
		o := NewObservation(board, game.Position{X: 4, Y: 0}, game.Position{})
		require.Equal(t, 1, o.Size())
		require.False(t, o.Observed(game.Position{X: 4, Y: 0}))
	})

	t.Run("observations are comparable by content", func(t *testing.T) {
		a := NewObservation(board, game.Position{}, game.Position{X: 2, Y: 2})
		b := NewObservation(board, game.Position{X: 2, Y: 2}, game.Position{})
		require.Equal(t, a, b)
		require.NotEqual(t, a, NewObservation(game.NewBoard(), game.Position{}, game.Position{X: 2, Y: 2}))
	})
}

func TestPossibleStates(t *testing.T) {
	board := mustParse(t, "XO./.X./...")

	t.Run("full observation has one completion", func(t *testing.T) {
		states := FullObservation(board).PossibleStates()
		require.Equal(t, []game.Board{board}, states)
	})

	t.Run("one completion per hidden assignment", func(t *testing.T) {
		o := FullObservation(board)
		o.Subtract(game.Position{})
		o.Subtract(game.Position{X: 2, Y: 2})
		states := o.PossibleStates()
		require.Len(t, states, 9)

		seen := map[game.Board]bool{}
		for _, s := range states {
			seen[s] = true
			for _, pos := range o.Positions() {
				require.Equal(t, board.At(pos), s.At(pos), "Visible cells are kept")
			}
		}
		require.Len(t, seen, 9, "Completions should be distinct")
	})

	t.Run("first hidden cell is the lowest base-3 digit", func(t *testing.T) {
		o := NewObservation(board)
		states := o.PossibleStates()
		require.Len(t, states, int(math.Pow(3, game.Cells)))
		require.Equal(t, game.NewBoard(), states[0])
		require.Equal(t, game.X, states[1].At(game.Position{}))
		require.Equal(t, game.O, states[2].At(game.Position{}))
		require.Equal(t, game.X, states[3].At(game.Position{X: 1, Y: 0}))
		require.Equal(t, game.Empty, states[3].At(game.Position{}))
	})
}

func TestObservationValue(t *testing.T) {
	board := mustParse(t, "XO./.X./...")

	t.Run("full observation reproduces the policy", func(t *testing.T) {
		for _, p := range []policy.Policy{policy.Random{}, policy.NewMinimax()} {
			require.Equal(t, p.Evaluate(board), FullObservation(board).Value(p))
		}
	})

	t.Run("averages over the completions of a hidden cell", func(t *testing.T) {
		corner := game.Position{X: 2, Y: 2}
		o := FullObservation(board)
		o.Subtract(corner)

		// Empty: X has 2 marks, O 1, O moves over 6 cells.
		// X: X wins on the diagonal, terminal.
		// O: X to move over 5 cells.
		var want game.Distribution
		for _, pos := range board.EmptyPositions() {
			if pos == corner {
				want.Set(pos, 1.0/6/3)
				continue
			}
			want.Set(pos, (1.0/6+1.0/5)/3)
		}

		got := o.Value(policy.Random{})
		require.True(t, want.EqualApprox(got, 1e-12), "got\n%v\nwant\n%v", got, want)
	})

	t.Run("marginal distributions may lose mass to terminal completions", func(t *testing.T) {
		o := NewObservation(board)
		got := o.Value(policy.Random{})
		require.Less(t, got.Sum(), 1.0)
		require.Greater(t, got.Sum(), 0.0)
	})
}
