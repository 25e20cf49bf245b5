// Package main is the entry point for the tarefas CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tarefas/internal/backend/rest"
	"tarefas/internal/cli"
	"tarefas/internal/commands"
	"tarefas/internal/config"
	"tarefas/internal/service"
)

func main() {
	// Cancel in-flight requests on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return rest.New(cfg)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
