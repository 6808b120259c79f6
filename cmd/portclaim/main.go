package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/nvdan/portclaim/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.Version = version
	cli.Execute(ctx)
}
