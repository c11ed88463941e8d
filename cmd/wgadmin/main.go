package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wgadmin/pkg/cli"
	"wgadmin/pkg/logs"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		logs.Logger.Error(err)
		cancel()
		os.Exit(1)
	}
}
