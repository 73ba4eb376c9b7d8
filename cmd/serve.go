package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/nftstake/config"
	"github.com/tranvictor/nftstake/observability"
	"github.com/tranvictor/nftstake/server"
	"github.com/tranvictor/nftstake/ui"
)

func newServeCmd(u ui.UI) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve token metadata, wallet portfolios and metrics over HTTP",
		Long: `Starts a local HTTP API:
	GET /healthz
	GET /metrics
	GET /v1/tokens/{id}
	GET /v1/accounts/{address}/owned
	GET /v1/accounts/{address}/staked
	GET /v1/accounts/{address}/rewards
It runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := AppContextFrom(cmd)
			if err != nil {
				return err
			}
			metrics := observability.NewMetrics()
			svc, err := newPortfolio(app, metrics)
			if err != nil {
				return err
			}

			// gateways are tried one after another, each up to the timeout
			md := app.Deployment.Metadata
			requestTimeout := time.Duration(len(md.Gateways)+1) * md.Timeout.Duration

			d := app.Deployment.Server
			addr := config.ListenAddr
			if addr == "" {
				addr = d.Listen
			}
			srv := server.New(server.Config{
				RateLimit:      d.RateLimit,
				Burst:          d.Burst,
				RequestTimeout: requestTimeout,
			}, svc, metrics, app.Logger.Named("server"))

			u.Info("Serving %s on http://%s", app.Network.GetName(), addr)
			defer app.Logger.Sync()
			if err := srv.ListenAndServe(cmd.Context(), addr); err != nil {
				app.Logger.Error("server stopped", zap.Error(err))
				return err
			}
			u.Info("Server stopped.")
			return nil
		},
	}
	c.Flags().StringVar(&config.ListenAddr, "listen", "", "address to listen on, default from the deployment config ("+config.DefaultListenAddr+")")
	return c
}
