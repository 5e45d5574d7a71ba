package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bookseed/internal/fetch"
	"bookseed/internal/ingest"
	"bookseed/pkg/models"
)

const sourceAll = "all"

func newIngestCmd() *cobra.Command {
	var (
		source string
		target int
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Harvest books from the online sources into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := buildSources(source, cfg.Ingest, fetch.New(cfg.HTTP))
			if err != nil {
				return err
			}
			ic := cfg.Ingest
			if cmd.Flags().Changed("target") {
				if target < 0 {
					return fmt.Errorf("--target must be >= 0")
				}
				ic.Target = target
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			return runSources(ctx, cmd.OutOrStdout(), ingest.NewPipeline(ic, st), sources...)
		},
	}
	cmd.Flags().StringVar(&source, "source", sourceAll, "openlibrary, bookscomtw, eslite or all")
	cmd.Flags().IntVar(&target, "target", 0, "max new books per source (0 for no limit)")
	return cmd
}

// buildSources resolves a --source value into the sources to run, in
// a fixed order.
func buildSources(name string, ic ingest.Config, get fetch.Getter) ([]ingest.Source, error) {
	ol := func() ingest.Source { return ingest.NewOpenLibrary(ic.OpenLibrary, get) }
	books := func() ingest.Source { return ingest.NewBooksComTW(ic.BooksComTW, get) }
	eslite := func() ingest.Source { return ingest.NewEslite(ic.Eslite, get) }

	switch strings.ToLower(strings.TrimSpace(name)) {
	case models.SourceOpenLibrary:
		return []ingest.Source{ol()}, nil
	case models.SourceBooksComTW:
		return []ingest.Source{books()}, nil
	case models.SourceEslite:
		return []ingest.Source{eslite()}, nil
	case sourceAll, "":
		return []ingest.Source{ol(), books(), eslite()}, nil
	default:
		return nil, fmt.Errorf("unknown source %q", name)
	}
}

// runSources runs each source in turn and prints the summary table,
// including partial runs, when it returns.
func runSources(ctx context.Context, w io.Writer, p *ingest.Pipeline, sources ...ingest.Source) error {
	var runs []models.Run
	defer func() {
		if len(runs) > 0 {
			ingest.Summary(w, runs...)
		}
	}()
	for _, src := range sources {
		run, err := p.Run(ctx, src)
		runs = append(runs, run)
		if err != nil {
			return fmt.Errorf("%s: %w", src.Name(), err)
		}
	}
	return nil
}

func newImportCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Re-seed the store from a saved book CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(in) == "" {
				return fmt.Errorf("--in is required")
			}
			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()

			ctx, stop := signalContext(cmd)
			defer stop()

			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			ic := cfg.Ingest
			ic.Target = 0
			return runSources(ctx, cmd.OutOrStdout(), ingest.NewPipeline(ic, st), ingest.NewCSV(f))
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input CSV path")
	return cmd
}
