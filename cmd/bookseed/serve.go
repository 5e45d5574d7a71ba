package main

import (
	"github.com/spf13/cobra"

	"bookseed/internal/catalog"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only catalog API",
		RunE: func(cmd *cobra.Command, args []string) error {
			listen := addr
			if listen == "" {
				listen = cfg.Serve.Addr
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			return catalog.Serve(ctx, listen, st)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to serve.addr)")
	return cmd
}
