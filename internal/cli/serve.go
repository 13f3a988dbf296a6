package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/planmesh"
	"github.com/hupe1980/planmesh/metrics"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())
			if addr != "" {
				cfg.Server.Addr = addr
			}
			m, err := open(cmd, func(o *planmesh.Options) { o.Metrics = metrics.New() })
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()
			return m.Serve(cmd.Context(), cfg.Server.Addr, cfg.GetShutdownTimeout())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
