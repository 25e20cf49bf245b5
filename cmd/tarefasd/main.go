// Package main runs a development server for the /tarefas resource.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tarefas/internal/devserver"
	"tarefas/internal/wire"
)

func main() {
	if err := mainInner(); err != nil {
		slog.Error("failed", "err", err)
		os.Exit(1)
	}
}

func mainInner() error {
	addrVar := flag.String("addr", ":3000", "listen address")
	dialectVar := flag.String("dialect", string(wire.Status), "wire dialect: status or flag")
	dbVar := flag.String("db", "", "SQLite database path; empty keeps tasks in memory")
	flag.Parse()

	dialect, err := wire.ParseDialect(*dialectVar)
	if err != nil {
		return err
	}
	ids := devserver.IDsFor(dialect)

	var store devserver.Store
	if *dbVar == "" {
		store = devserver.NewMemoryStore(ids)
	} else {
		s, err := devserver.OpenSQLiteStore(*dbVar, ids)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	httpServer := &http.Server{
		Addr:              *addrVar,
		Handler:           devserver.New(store, dialect, slog.Default()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", *addrVar, "dialect", dialect, "db", *dbVar)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("server listen failed: %w", err)
		}
		close(errs)
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-exit:
		slog.Info("Signal caught", "sig", sig)
	case err := <-errs:
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}
