// Command strtrd runs the relay core as a standalone websocket server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nostrcore/strtr/pkg/config"
	"github.com/nostrcore/strtr/pkg/filter"
	"github.com/nostrcore/strtr/pkg/log"
	"github.com/nostrcore/strtr/pkg/server"
)

func main() {
	cfg := config.Load()
	log.SetLevel(cfg.LogLevel)
	filter.MaxLimit = cfg.MaxLimit
	log.I.F("starting strtr %s", config.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(ctx)
	go func() {
		<-ctx.Done()
		srv.Shutdown()
	}()

	if err := srv.Start(cfg.Host, cfg.Port); err != nil {
		log.E.F("server terminated: %v", err)
		os.Exit(1)
	}
}
