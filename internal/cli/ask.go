package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/salespage/chatkit/config"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask <url> <question>",
	Short: "Ask a question about a sales page",
	Args:  cobra.ExactArgs(2),
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

		reply, sessionID, err := kit.Ask(context.Background(), askSession, args[0], args[1])
		if err != nil {
			fail(err)
			return
		}
		fmt.Fprintln(os.Stdout, reply.Text)
		fmt.Fprintf(os.Stderr, "session=%s origin=%s valid=%t sources=%d\n",
			sessionID, reply.Origin, reply.Validation.Valid, reply.Validation.MatchedSources)
	},
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "session id to continue a conversation")
}
