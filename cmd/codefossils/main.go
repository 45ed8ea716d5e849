package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codefossils/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
