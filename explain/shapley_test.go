package explain

import (
	"testing"
	"xai/experiments/metrics"
	"xai/game"
	"xai/policy"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/combin"
)

const tolerance = 1e-9

func sumAttribution(a Attribution) game.Distribution {
	var total game.Distribution
	for _, pos := range game.Positions() {
		total = total.Add(a.At(pos))
	}
	return total
}

func TestShapleyWeights(t *testing.T) {
	n := game.Cells

	t.Run("factorial weights match the binomial form", func(t *testing.T) {
		for s := 0; s < n; s++ {
			got := float64(factorial(s)*factorial(n-s-1)) / float64(factorial(n))
			want := 1 / float64(n*combin.Binomial(n-1, s))
			require.InDelta(t, want, got, 1e-15)
		}
	})

	t.Run("weights over all coalitions without a feature sum to one", func(t *testing.T) {
		total := 0.0
		for s := 0; s < n; s++ {
			total += float64(combin.Binomial(n-1, s)*factorial(s)*factorial(n-s-1)) / float64(factorial(n))
		}
		require.InDelta(t, 1.0, total, 1e-12)
	})

	t.Run("zero factorial is one", func(t *testing.T) {
		require.Equal(t, 1, factorial(0))
		require.Equal(t, 362880, factorial(9))
	})
}

func TestAttribute(t *testing.T) {
	board := game.NewBoard()

	t.Run("additive games attribute each cell to itself", func(t *testing.T) {
		// V(C) puts one unit of mass on every visible cell
		v := ValuerFunc(func(o Observation) game.Distribution {
			var d game.Distribution
			for _, pos := range o.Positions() {
				d.Set(pos, 1)
			}
			return d
		})

		result := Attribute(board, v)
		for _, feature := range game.Positions() {
			require.True(t, game.Onehot(feature).EqualApprox(result.At(feature), 1e-12),
				"Feature %v should only explain its own cell", feature)
		}
	})

	t.Run("dummy features get nothing", func(t *testing.T) {
		center := game.Position{X: 1, Y: 1}
		v := ValuerFunc(func(o Observation) game.Distribution {
			if o.Observed(center) {
				return game.Onehot(center)
			}
			return game.Zero()
		})

		result := Attribute(board, v)
		require.True(t, game.Onehot(center).EqualApprox(result.At(center), 1e-12))
		for _, feature := range game.Positions() {
			if feature != center {
				require.True(t, game.Zero().EqualApprox(result.At(feature), 1e-12))
			}
		}
	})

	t.Run("symmetric features share an interaction evenly", func(t *testing.T) {
		a, b := game.Position{}, game.Position{X: 2, Y: 2}
		v := ValuerFunc(func(o Observation) game.Distribution {
			if o.Observed(a) && o.Observed(b) {
				return game.Onehot(a)
			}
			return game.Zero()
		})

		result := Attribute(board, v)
		require.InDelta(t, 0.5, result.At(a).At(a), 1e-12)
		require.InDelta(t, 0.5, result.At(b).At(a), 1e-12)
	})

	t.Run("shared memo evaluates each coalition once", func(t *testing.T) {
		calls := map[Observation]int{}
		v := ValuerFunc(func(o Observation) game.Distribution {
			calls[o]++
			return game.Zero()
		})

		Attribute(board, v)
		require.Len(t, calls, 1<<game.Cells)
		for _, count := range calls {
			require.Equal(t, 1, count)
		}
	})

	t.Run("per-feature valuers see only their feature", func(t *testing.T) {
		result := AttributeEach(board, func(feature game.Position) Valuer {
			return ValuerFunc(func(o Observation) game.Distribution {
				if o.Observed(feature) {
					return game.Onehot(feature).Scale(2)
				}
				return game.Zero()
			})
		})
		for _, feature := range game.Positions() {
			require.InDelta(t, 2.0, result.At(feature).At(feature), 1e-12)
			require.InDelta(t, 2.0, result.At(feature).Sum(), 1e-12)
		}
	})
}

func TestShapleyEfficiency(t *testing.T) {
	boards := []string{".........", "X../.O./...", "XO./.X./..O"}
	policies := map[string]policy.Policy{
		"random":  policy.Random{},
		"minimax": policy.NewMinimax(),
	}

	for name, p := range policies {
		for _, s := range boards {
			t.Run(name+" "+s, func(t *testing.T) {
				board := mustParse(t, s)
				e := NewExplainer(p)

				result, _ := e.Shapley(board)
				total := sumAttribution(result).Add(e.Baseline(board))

				require.True(t, p.Evaluate(board).EqualApprox(total, tolerance),
					"Attributions plus the baseline should give back the policy\ngot\n%v\nwant\n%v", total, p.Evaluate(board))
			})
		}
	}
}

func TestShapleySymmetry(t *testing.T) {
	e := NewExplainer(policy.Random{})
	result, _ := e.Shapley(game.NewBoard())

	for _, s := range game.Symmetries() {
		for _, feature := range game.Positions() {
			want := result.At(feature).Transform(s)
			got := result.At(s(feature))
			require.True(t, want.EqualApprox(got, tolerance),
				"Attribution of %v should map onto the attribution of %v", feature, s(feature))
		}
	}

	t.Run("equivalent cells share their self attribution", func(t *testing.T) {
		corners := []game.Position{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2}, {X: 2, Y: 2}}
		edges := []game.Position{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 2}}
		for _, class := range [][]game.Position{corners, edges} {
			first := result.At(class[0]).At(class[0])
			for _, pos := range class[1:] {
				require.InDelta(t, first, result.At(pos).At(pos), tolerance)
			}
		}
	})
}

func TestShapleyMetrics(t *testing.T) {
	collector := metrics.NewCollector()
	e := NewExplainer(policy.Random{}, WithMetrics(collector))

	_, metric := e.Shapley(mustParse(t, "XO./.X./..O"))
	require.Equal(t, "shapley", metric.Method)
	require.Equal(t, 1<<game.Cells, metric.Evaluations, "Every coalition is evaluated once")
	require.Equal(t, 2*game.Cells*(1<<(game.Cells-1))-metric.Evaluations, metric.CacheHits)
}
