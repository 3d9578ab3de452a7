package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gakuroku/gakuroku/internal/server"
	"github.com/gakuroku/gakuroku/internal/stats"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local database as a REST API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, st, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(st, stats.NewService(st), server.Options{
			Token:       cfg.API.Token,
			CORSOrigins: cfg.Server.CORSOrigins,
		})
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8000)")
}
