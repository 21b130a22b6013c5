package cli

import (
	"github.com/spf13/cobra"

	"github.com/salespage/chatkit/config"
	"github.com/salespage/chatkit/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fail(err)
			return
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		logger := buildLogger(cfg)

		kit, cleanup, err := buildKit(cfg, logger)
		if err != nil {
			fail(err)
			return
		}
		defer func() { _ = cleanup() }()

		srv := server.New(kit, func(o *server.Options) {
			o.Logger = logger
		})
		if err := srv.Run(cfg.Server.Addr); err != nil {
			fail(err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}
