package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"showcase-cms/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := cli.LoadClientConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
