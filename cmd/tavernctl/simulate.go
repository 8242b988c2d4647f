package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/repository"
	"github.com/tavernforge/tavern-server-go/internal/simulation"
	"go.uber.org/zap"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play greedy self-play games against the planner",
	Long: `Plays a batch of games between the greedy policy (player side) and the
heuristic planner (opponent side), prints win rates and stores the report in
the configured database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		simCfg := simulation.Config{
			Games:    cfg.Simulation.Games,
			Workers:  cfg.Simulation.Workers,
			Seed:     cfg.Simulation.Seed,
			MaxTurns: cfg.Simulation.MaxTurns,
		}
		flags := cmd.Flags()
		if flags.Changed("games") {
			simCfg.Games, _ = flags.GetInt("games")
		}
		if flags.Changed("workers") {
			simCfg.Workers, _ = flags.GetInt("workers")
		}
		if flags.Changed("seed") {
			simCfg.Seed, _ = flags.GetInt64("seed")
		}
		if flags.Changed("max-turns") {
			simCfg.MaxTurns, _ = flags.GetInt("max-turns")
		}

		var err error
		if path, _ := flags.GetString("player-deck"); path != "" {
			if simCfg.PlayerDeck, err = loadDeck(path); err != nil {
				return err
			}
		}
		if path, _ := flags.GetString("opponent-deck"); path != "" {
			if simCfg.OpponentDeck, err = loadDeck(path); err != nil {
				return err
			}
		}

		runner := simulation.NewRunner(simCfg, logger)
		bar := progressbar.Default(int64(simCfg.Games), "Simulating")
		runner.OnProgress(func(int) {
			bar.Add(1)
		})

		report, err := runner.Run(cmd.Context())
		bar.Finish()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printReport(out, report)

		if noSave, _ := flags.GetBool("no-save"); noSave {
			return nil
		}
		store, err := repository.Open(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.SaveReport(cmd.Context(), report)
		if err != nil {
			return err
		}
		logger.Info("simulation report stored",
			zap.String("report_id", id),
			zap.String("driver", cfg.Database.Driver),
		)
		fmt.Fprintf(out, "Report:        %s\n", id)
		return nil
	},
}

func loadDeck(path string) ([]string, error) {
	list, err := cards.LoadDeckList(path)
	if err != nil {
		return nil, err
	}
	return list.Expand(), nil
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Int("games", 100, "number of games to play")
	simulateCmd.Flags().Int("workers", 0, "concurrent games (0 uses every CPU)")
	simulateCmd.Flags().Int64("seed", 1, "base seed; game i uses seed+i")
	simulateCmd.Flags().Int("max-turns", simulation.DefaultMaxTurns, "turn cap per game")
	simulateCmd.Flags().String("player-deck", "", "YAML deck list for the player side")
	simulateCmd.Flags().String("opponent-deck", "", "YAML deck list for the opponent side")
	simulateCmd.Flags().Bool("no-save", false, "print the summary without storing the report")
}
