package experiments

import (
	"fmt"
	"xai/config"
	"xai/engine"
	"xai/experiments/metrics"
	"xai/explain"
	"xai/game"
	"xai/policy"

	"github.com/rs/zerolog/log"
)

// Report is the outcome of explaining one board with one policy.
type Report struct {
	Policy  string
	Shapley explain.Attribution
	Local   game.Distribution
	Global  game.Distribution
	Metrics []metrics.ExplainMetric
}

// RunBenchmark explains the board with the random and the configured minimax
// policy: Shapley on the action distribution, then local and global SVERL.
// Timings are logged and, when write is set, stored as CSV.
func RunBenchmark(cfg config.Config, board game.Board, write bool) ([]Report, error) {
	minimaxCfg := cfg
	minimaxCfg.Policy = policy.MinimaxName
	minimax, err := minimaxCfg.NewPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to create minimax policy: %w", err)
	}

	policies := []struct {
		name   string
		policy policy.Policy
	}{
		{policy.RandomName, policy.Random{}},
		{policy.MinimaxName, minimax},
	}

	log.Info().Msgf("starting benchmark on %s...", board)

	reports := []Report{}
	records := []metrics.ExplainRecord{}
	for _, p := range policies {
		explainer := explain.NewExplainer(p.policy, explain.WithGamma(cfg.Gamma), explain.WithMetrics(metrics.NewCollector()))
		report := Report{Policy: p.name}

		shapley, metric := explainer.Shapley(board)
		report.Shapley = shapley
		report.Metrics = append(report.Metrics, metric)
		log.Info().Msgf("%s shapley took %v", p.name, metric.Duration)

		local, metric := explainer.SVERL(board, explain.Local)
		report.Local = local
		report.Metrics = append(report.Metrics, metric)
		log.Info().Msgf("%s sverl local took %v", p.name, metric.Duration)

		global, metric := explainer.SVERL(board, explain.Global)
		report.Global = global
		report.Metrics = append(report.Metrics, metric)
		log.Info().Msgf("%s sverl global took %v", p.name, metric.Duration)

		totals := []float64{shapleyTotal(shapley), local.Sum(), global.Sum()}
		for i, m := range report.Metrics {
			records = append(records, metrics.ExplainRecord{
				ID:            len(records) + 1,
				Policy:        p.name,
				Board:         board.String(),
				Total:         totals[i],
				ExplainMetric: m,
			})
		}
		reports = append(reports, report)
	}

	log.Info().Msg("completed benchmark")

	if !write {
		return reports, nil
	}

	writer, err := metrics.NewWriter(cfg.OutputDir, "benchmark")
	if err != nil {
		return nil, fmt.Errorf("failed to create benchmark writer: %w", err)
	}
	err = writer.WriteExplainRecords(records)
	if err != nil {
		return nil, fmt.Errorf("failed to write explain records: %w", err)
	}
	log.Info().Msgf("stored explain records in %s", writer.Dir())

	return reports, nil
}

// RunSelfPlay plays games with the configured policy on both sides,
// explaining every move when the config asks for it.
func RunSelfPlay(cfg config.Config, start game.Board, games int, write bool) ([]metrics.TurnRecord, error) {
	p, err := cfg.NewPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to create policy: %w", err)
	}

	options := []engine.Option{engine.WithStart(start), engine.WithSeed(cfg.Seed)}
	if cfg.ExplainMoves {
		options = append(options, engine.WithExplanations(cfg.Gamma, cfg.SVERLMode()))
	}
	// One engine across games keeps the sampler advancing between them
	e := engine.LocalEngine(p, p, options...)

	records := []metrics.TurnRecord{}
	wins := map[string]int{}
	for i := 0; i < games; i++ {
		log.Info().Msgf("starting game %d of %d...", i+1, games)

		winner, won, turns := e.Run()
		if won {
			wins[winner.String()]++
		} else {
			wins["draw"]++
		}
		for _, turn := range turns {
			records = append(records, turnRecord(i+1, turn))
		}
	}

	log.Info().Msgf("completed %d games: %v", games, wins)

	if !write {
		return records, nil
	}

	writer, err := metrics.NewWriter(cfg.OutputDir, "selfplay")
	if err != nil {
		return nil, fmt.Errorf("failed to create self-play writer: %w", err)
	}
	err = writer.WriteTurnRecords(records)
	if err != nil {
		return nil, fmt.Errorf("failed to write turn records: %w", err)
	}
	log.Info().Msgf("stored turn records in %s", writer.Dir())

	return records, nil
}

func turnRecord(gameID int, turn engine.Turn) metrics.TurnRecord {
	record := metrics.TurnRecord{
		Game:        gameID,
		Step:        turn.Step,
		Player:      turn.Player.String(),
		Board:       turn.Board.String(),
		Action:      turn.Action.Index(),
		Probability: turn.Probability,
	}
	if turn.Evaluated {
		record.Evaluation = fmt.Sprint(turn.Evaluation)
	}
	if turn.Explained {
		record.Scores = turn.Explanation.Values()
	}
	return record
}

func shapleyTotal(a explain.Attribution) float64 {
	total := 0.0
	for _, pos := range game.Positions() {
		total += a.At(pos).Sum()
	}
	return total
}
