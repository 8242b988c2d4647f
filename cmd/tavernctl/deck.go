package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/repository"
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Validate, store and export deck lists",
}

var deckValidateCmd = &cobra.Command{
	Use:   "validate [deck.yaml...]",
	Short: "Check deck lists against the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var errs []error
		for _, path := range args {
			list, err := cards.LoadDeckList(path)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", path, err)
				errs = append(errs, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %q, %d cards\n", path, list.Name, list.Size())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%d of %d deck lists invalid", len(errs), len(args))
		}
		return nil
	},
}

var deckImportCmd = &cobra.Command{
	Use:   "import [deck.yaml...]",
	Short: "Store deck lists in the configured database",
	Long: `Stores validated deck lists. With the postgres driver the card catalog
is upserted first so deck rows can be joined against it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		if pg, ok := store.(*repository.PostgresStore); ok {
			n, err := pg.ImportCatalog(ctx, cards.All())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ catalog: %d cards\n", n)
		}

		for _, path := range args {
			list, err := cards.LoadDeckList(path)
			if err != nil {
				return err
			}
			if err := store.SaveDeck(ctx, list); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ imported %q (%d cards)\n", list.Name, list.Size())
		}
		return nil
	},
}

var deckExportCmd = &cobra.Command{
	Use:   "export [name]",
	Short: "Print a stored deck list as YAML (\"base\" prints the default deck)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := store.LoadDeck(ctx, args[0])
		if errors.Is(err, repository.ErrDeckNotFound) && args[0] == "base" {
			list, err = cards.BaseDeckList(), nil
		}
		if err != nil {
			return err
		}
		return list.Encode(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(deckCmd)
	deckCmd.AddCommand(deckValidateCmd)
	deckCmd.AddCommand(deckImportCmd)
	deckCmd.AddCommand(deckExportCmd)
}
