package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bookseed/internal/classify"
	"bookseed/internal/export"
	"bookseed/internal/logging"
)

func newExportCmd() *cobra.Command {
	var (
		out  string
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the cleaned book CSV from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := out
			if path == "" {
				path = cfg.Export.Output
			}
			var rng *rand.Rand
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewPCG(seed, seed))
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			rep, err := export.New(cfg.Export, rng).RunToFile(ctx, st, path)
			if err != nil {
				return err
			}
			logging.Info("export done",
				"path", path,
				"input", rep.Input,
				"removed", rep.Removed,
				"duplicates", rep.Duplicates,
				"publishers_replaced", rep.PublishersReplaced,
				"output", rep.Output,
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output CSV path (defaults to export.output)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible prices and publishers")
	return cmd
}

func newCategorizeCmd() *cobra.Command {
	var in, outDir string
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Assign categories to an exported book CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(in) == "" {
				return fmt.Errorf("--in is required")
			}
			f, err := os.Open(in)
			if err != nil {
				return err
			}
			books, err := classify.ReadBooks(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}

			c := classify.New(nil)
			counts := c.Assign(books)
			if err := c.WriteTables(outDir, books); err != nil {
				return err
			}
			for _, cat := range c.Categories() {
				logging.Info("category", "id", cat.ID, "name", cat.Name, "books", counts[cat.ID])
			}
			logging.Info("categorize done", "books", len(books), "dir", outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "data/book.csv", "exported book CSV")
	cmd.Flags().StringVar(&outDir, "out-dir", "data", "directory for categories.csv and book_category.csv")
	return cmd
}
