package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
)

// cardsCmd represents the cards command
var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List the card catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tKIND\tCOST\tSTATS\tTEXT")
		for _, c := range cards.All() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", c.ID, c.Name, c.Kind, c.Cost, stats(c), text(c))
		}
		return w.Flush()
	},
}

func stats(c cards.Card) string {
	if !c.IsMinion() {
		return "-"
	}
	return fmt.Sprintf("%d/%d", c.Minion.Attack, c.Minion.Health)
}

func text(c cards.Card) string {
	var parts []string
	if c.IsMinion() {
		parts = append(parts, c.Minion.Keywords.Names()...)
		for _, e := range c.Minion.Deathrattle {
			parts = append(parts, fmt.Sprintf("deathrattle: %d to %s", e.Amount, e.Target))
		}
	}
	if c.IsSpell() {
		for _, e := range c.Spell.Effects {
			parts = append(parts, fmt.Sprintf("%d to %s", e.Amount, e.Target))
		}
	}
	return strings.Join(parts, ", ")
}

func init() {
	rootCmd.AddCommand(cardsCmd)
}
