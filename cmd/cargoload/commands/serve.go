package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DrSkyle/cargoload/pkg/server"
	"github.com/DrSkyle/cargoload/pkg/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves GET /strategies, POST /upload and GET /healthz.

Result workbooks are kept in --store, a local directory or s3://bucket/prefix.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := newEngine(ctx, os.Stderr)
		if err != nil {
			return err
		}
		defer e.Close(cmd.Context())

		srvCfg := cfg.Server
		store, prefix, err := storage.Open(ctx, srvCfg.Store)
		if err != nil {
			return err
		}
		if prefix != "" {
			srvCfg.ResultPrefix = storage.JoinKey(prefix, srvCfg.ResultPrefix)
		}

		return server.New(e, store, srvCfg, e.Logger).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address")
	serveCmd.Flags().String("store", "", "Result store: directory or s3://bucket/prefix")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.store", serveCmd.Flags().Lookup("store"))
}
