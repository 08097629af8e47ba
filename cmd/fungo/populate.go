package main

import (
	"fmt"
	"os"

	"github.com/fungo/internal/db"
	"github.com/fungo/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPopulateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Load categories and pages from a YAML fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixture, err := loadFixture(file)
			if err != nil {
				return err
			}

			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			result, err := seed.Apply(db.DB, fixture)
			if err != nil {
				return fmt.Errorf("populate: %w", err)
			}

			rt.log.Info("populate finished",
				zap.Int("categories_created", result.CategoriesCreated),
				zap.Int("pages_created", result.PagesCreated))
			fmt.Fprintf(cmd.OutOrStdout(), "%d categories and %d pages created\n",
				result.CategoriesCreated, result.PagesCreated)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML fixture to load (defaults to the bundled sample data)")
	return cmd
}

func loadFixture(path string) (seed.Fixture, error) {
	if path == "" {
		return seed.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return seed.Fixture{}, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	return seed.Decode(f)
}
