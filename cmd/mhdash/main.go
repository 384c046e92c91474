// Command mhdash is the command-line interface to the survey dashboard.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/mhtech-dashboard/internal/interfaces/cli"
)

// Set by -ldflags at build time.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
