package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/salespage/chatkit/config"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Fetch a sales page and print its structured record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fail(err)
			return
		}
		logger := buildLogger(cfg)

		kit, cleanup, err := buildKit(cfg, logger)
		if err != nil {
			fail(err)
			return
		}
		defer func() { _ = cleanup() }()

		data, cached, err := kit.Extract(context.Background(), args[0])
		if err != nil {
			fail(err)
			return
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			fail(err)
			return
		}
		if cached {
			fmt.Fprintln(os.Stderr, "(served from cache)")
		}
	},
}
