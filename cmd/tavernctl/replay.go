package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tavernforge/tavern-server-go/internal/game"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Inspect recorded matches",
}

var replayShowCmd = &cobra.Command{
	Use:   "show [match_id]",
	Short: "Print the recorded steps of a match",
	Long: `Prints recorded states starting at --from and moving --step states at a time.
A negative step walks the match backwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Replay.Dir
		}
		from, _ := cmd.Flags().GetInt("from")
		step, _ := cmd.Flags().GetInt("step")
		limit, _ := cmd.Flags().GetInt("limit")
		if step == 0 {
			return errors.New("--step must not be zero")
		}

		replay, err := game.LoadReplayFromFile(dir, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Match %s: %d states\n", replay.MatchID, replay.Size())
		if from < 0 {
			from += replay.Size()
		}
		shown := 0
		for gs := replay.Seek(from); gs != nil; gs = replay.Step(step) {
			printReplayState(out, replay.Position(), gs)
			shown++
			if limit > 0 && shown >= limit {
				break
			}
		}

		if showLog, _ := cmd.Flags().GetBool("log"); showLog {
			if last := replay.Last(); last != nil {
				fmt.Fprintln(out, strings.Join(last.Log, "\n"))
			}
		}
		return nil
	},
}

func printReplayState(out io.Writer, index int, gs *game.GameState) {
	fmt.Fprintf(out, "[%3d] turn %d %-13s player %2d hp %d/%d mana | opponent %2d hp %d/%d mana | %s\n",
		index, gs.TurnNumber, gs.Phase(),
		gs.Player.HeroHealth, gs.Player.Mana, gs.Player.MaxMana,
		gs.Opponent.HeroHealth, gs.Opponent.Mana, gs.Opponent.MaxMana,
		gs.Checksum()[:12],
	)
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.AddCommand(replayShowCmd)

	replayShowCmd.Flags().String("dir", "", "replay directory (defaults to replay.dir)")
	replayShowCmd.Flags().Int("from", 0, "first state to print; negative counts from the end")
	replayShowCmd.Flags().Int("step", 1, "states to move between lines; negative walks backwards")
	replayShowCmd.Flags().Int("limit", 0, "maximum number of states to print (0 prints all)")
	replayShowCmd.Flags().Bool("log", false, "print the final game log")
}
