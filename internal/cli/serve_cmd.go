package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/httpapi"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schedule API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := opts.app
			srvCfg := a.Config.Server
			if addr != "" {
				srvCfg.Addr = addr
			}
			gin.SetMode(srvCfg.Mode)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := httpapi.NewServer(srvCfg.Addr, srvCfg.ShutdownTimeout, httpapi.RouterConfig{
				Log:             a.Log,
				HealthHandler:   httpapi.NewHealthHandler(),
				ScheduleHandler: httpapi.NewScheduleHandler(a.Log, a.Plan),
				ImportHandler:   httpapi.NewImportHandler(a.Log, a.Import),
			})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	return cmd
}
