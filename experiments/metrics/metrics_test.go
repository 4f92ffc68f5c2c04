package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts events since start", func(t *testing.T) {
		c := NewCollector()
		c.Start("shapley", 0.5)
		c.AddEvaluation()
		c.AddEvaluation()
		c.AddPrediction()
		c.AddCacheHit()

		m := c.Complete()
		require.Equal(t, "shapley", m.Method)
		require.Equal(t, 0.5, m.Gamma)
		require.Equal(t, 2, m.Evaluations)
		require.Equal(t, 1, m.Predictions)
		require.Equal(t, 1, m.CacheHits)
		require.GreaterOrEqual(t, m.Duration, time.Duration(0))
	})

	t.Run("start resets the counters", func(t *testing.T) {
		c := NewCollector()
		c.Start("a", 1)
		c.AddEvaluation()
		c.Start("b", 1)
		require.Zero(t, c.Complete().Evaluations)
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start("shapley", 0.5)
		c.AddEvaluation()
		require.Equal(t, ExplainMetric{}, c.Complete())
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "bench")
	require.NoError(t, err)

	t.Run("writes explain records", func(t *testing.T) {
		err := w.WriteExplainRecords([]ExplainRecord{{
			ID:            1,
			Policy:        "random",
			Board:         ".../.../...",
			Total:         0.25,
			ExplainMetric: ExplainMetric{Method: "shapley", Gamma: 0.5, Evaluations: 512},
		}})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(w.Dir(), "explain_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, "policy", rows[0][1])
		require.Equal(t, []string{"1", "random", "shapley", "0.5", ".../.../...", "0.25"}, rows[1][:6])
		require.Equal(t, "512", rows[1][8])
	})

	t.Run("writes turn records with blank missing scores", func(t *testing.T) {
		err := w.WriteTurnRecords([]TurnRecord{
			{Game: 1, Step: 1, Player: "X", Board: ".../.../...", Action: 4, Probability: 1, Scores: []float64{0.1}},
		})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(w.Dir(), "turn_records.csv"))
		require.Len(t, rows, 2)
		require.Len(t, rows[0], 16)
		require.Equal(t, "0.1", rows[1][7])
		require.Equal(t, "", rows[1][15])
	})
}
