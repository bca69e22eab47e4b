package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abdidvp/detectlint/internal/adapters/inbound/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "detectlint:", err)
		stop()
		os.Exit(1)
	}
	stop()
}
