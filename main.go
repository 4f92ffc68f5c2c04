package main

import (
	"fmt"
	"os"
	"xai/config"
	"xai/experiments"
	"xai/explain"
	"xai/game"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "xai",
		Short:        "Explain tic-tac-toe policies with Shapley values and SVERL",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file")
	root.PersistentFlags().String("board", ".../.../...", "Board in row-major order, e.g. XO./.X./...")

	bench := &cobra.Command{
		Use:   "bench",
		Short: "Time Shapley and SVERL explanations for the random and minimax policies",
		RunE:  runBench,
	}
	bench.Flags().Bool("write", false, "Store metrics as CSV under the output directory")

	explainCmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain the configured policy on a board",
		RunE:  runExplain,
	}
	explainCmd.Flags().String("method", "sverl", "Explanation method: shapley or sverl")

	play := &cobra.Command{
		Use:   "play",
		Short: "Play the configured policy against itself, explaining every move",
		RunE:  runPlay,
	}
	play.Flags().Int("games", 1, "Number of games to play")
	play.Flags().Bool("write", false, "Store turns as CSV under the output directory")

	root.AddCommand(bench, explainCmd, play)
	return root
}

// setup loads the config, configures logging and parses the board flag.
func setup(cmd *cobra.Command) (config.Config, game.Board, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return config.Config{}, game.Board{}, err
		}
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(cfg.Level())

	boardFlag, _ := cmd.Flags().GetString("board")
	board, err := game.ParseBoard(boardFlag)
	if err != nil {
		return config.Config{}, game.Board{}, fmt.Errorf("failed to parse board: %w", err)
	}
	return cfg, board, nil
}

func runBench(cmd *cobra.Command, _ []string) error {
	cfg, board, err := setup(cmd)
	if err != nil {
		return err
	}
	write, _ := cmd.Flags().GetBool("write")

	reports, err := experiments.RunBenchmark(cfg, board, write)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, report := range reports {
		fmt.Fprintf(out, "\n%s policy\n", report.Policy)
		fmt.Fprintf(out, "shapley (summed per feature):\n%v\n", summed(report.Shapley))
		fmt.Fprintf(out, "sverl local:\n%v\n", report.Local)
		fmt.Fprintf(out, "sverl global:\n%v\n", report.Global)
	}
	return nil
}

func runExplain(cmd *cobra.Command, _ []string) error {
	cfg, board, err := setup(cmd)
	if err != nil {
		return err
	}
	method, _ := cmd.Flags().GetString("method")

	p, err := cfg.NewPolicy()
	if err != nil {
		return err
	}
	explainer := explain.NewExplainer(p, explain.WithGamma(cfg.Gamma))
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "policy %s on %s:\n%v\n", cfg.Policy, board, p.Evaluate(board))
	switch method {
	case "shapley":
		result, _ := explainer.Shapley(board)
		for _, feature := range game.Positions() {
			fmt.Fprintf(out, "\nfeature (%d, %d):\n%v\n", feature.X, feature.Y, result.At(feature))
		}
	case "sverl":
		scores, _ := explainer.SVERL(board, cfg.SVERLMode())
		fmt.Fprintf(out, "\nsverl %s (gamma %v):\n%v\n", cfg.SVERLMode(), cfg.Gamma, scores)
	default:
		return fmt.Errorf("unknown method %q", method)
	}
	return nil
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, board, err := setup(cmd)
	if err != nil {
		return err
	}
	games, _ := cmd.Flags().GetInt("games")
	write, _ := cmd.Flags().GetBool("write")

	records, err := experiments.RunSelfPlay(cfg, board, games, write)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, record := range records {
		fmt.Fprintf(out, "game %d step %d: %s plays %d on %s (p=%.3f)\n",
			record.Game, record.Step, record.Player, record.Action, record.Board, record.Probability)
	}
	return nil
}

func summed(a explain.Attribution) game.Distribution {
	return game.Distribution{Grid: game.Map(a, func(_ game.Position, d game.Distribution) float64 {
		return d.Sum()
	})}
}
