package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ExplainRecord is one timed explanation of a board.
type ExplainRecord struct {
	ID     int
	Policy string
	Board  string
	Total  float64 // Sum of all attributed scores
	ExplainMetric
}

// TurnRecord is one self-play move together with its explanation.
type TurnRecord struct {
	Game        int
	Step        int
	Player      string
	Board       string
	Action      int // Row-major cell index
	Probability float64
	Evaluation  string // Empty when the policy does not score actions
	Scores      []float64
}

// scoreColumns is one column per board cell.
const scoreColumns = 9

type Writer struct {
	baseDir string
}

// NewWriter creates <root>/<name>/<timestamp> to hold the experiment files.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteExplainRecords(records []ExplainRecord) error {
	header := []string{"id", "policy", "method", "gamma", "board", "total", "start_time", "duration", "evaluations", "predictions", "cache_hits"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			record.Policy,
			record.Method,
			formatFloat(record.Gamma),
			record.Board,
			formatFloat(record.Total),
			record.StartTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.Evaluations),
			strconv.Itoa(record.Predictions),
			strconv.Itoa(record.CacheHits),
		})
	}
	return w.write("explain_records.csv", header, rows)
}

func (w *Writer) WriteTurnRecords(records []TurnRecord) error {
	header := []string{"game", "step", "player", "board", "action", "probability", "evaluation"}
	for i := 0; i < scoreColumns; i++ {
		header = append(header, fmt.Sprintf("score_%d", i))
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			record.Player,
			record.Board,
			strconv.Itoa(record.Action),
			formatFloat(record.Probability),
			record.Evaluation,
		}
		for i := 0; i < scoreColumns; i++ {
			score := ""
			if i < len(record.Scores) {
				score = formatFloat(record.Scores[i])
			}
			row = append(row, score)
		}
		rows = append(rows, row)
	}
	return w.write("turn_records.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
