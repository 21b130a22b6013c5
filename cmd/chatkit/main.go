// Command chatkit runs the sales-page chat pipeline: an HTTP server plus
// one-shot extract and ask helpers.
package main

import (
	"os"

	"github.com/salespage/chatkit/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
