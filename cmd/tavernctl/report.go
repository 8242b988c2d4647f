package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tavernforge/tavern-server-go/internal/repository"
	"github.com/tavernforge/tavern-server-go/internal/simulation"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Read stored simulation reports",
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := repository.Open(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		summaries, err := store.ListReports(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No reports stored.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tGENERATED\tGAMES\tPLAYER\tOPPONENT\tDRAWS\tAVG TURNS")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%.1f\n",
				s.ID, s.GeneratedAt.Local().Format(time.DateTime),
				s.Games, s.PlayerWins, s.OpponentWins, s.Draws, s.AvgTurns)
		}
		return w.Flush()
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show [report_id]",
	Short: "Print one stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := repository.Open(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		report, err := store.GetReport(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Fprintf(out, "Report:        %s\n", args[0])
		fmt.Fprintf(out, "Generated:     %s\n", report.GeneratedAt.Local().Format(time.DateTime))
		fmt.Fprintf(out, "Seed:          %d\n", report.Config.Seed)
		printReport(out, report)
		return nil
	},
}

// printReport writes the aggregate lines shared by simulate and report show.
func printReport(out io.Writer, report *simulation.Report) {
	fmt.Fprintf(out, "Games:         %d\n", report.Games)
	fmt.Fprintf(out, "Player wins:   %d (%.1f%%)\n", report.PlayerWins, 100*report.PlayerWinRate())
	fmt.Fprintf(out, "Opponent wins: %d\n", report.OpponentWins)
	fmt.Fprintf(out, "Draws:         %d\n", report.Draws)
	fmt.Fprintf(out, "Unfinished:    %d\n", report.Unfinished)
	fmt.Fprintf(out, "Average turns: %.1f\n", report.AvgTurns)

	names := make([]string, 0, len(report.Keywords))
	for name := range report.Keywords {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-18s %d\n", name, report.Keywords[name])
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)

	reportListCmd.Flags().Int("limit", 20, "maximum number of reports to list")
	reportShowCmd.Flags().Bool("json", false, "print the full report as JSON")
}
