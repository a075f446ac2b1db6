// Corsair server entrypoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calriss/corsair/internal/app"
	"github.com/calriss/corsair/internal/common"
)

func main() {
	configPath := flag.String("config", "config/corsair.toml", "path to config file")
	localConfig := flag.String("local-config", "config/corsair.local.toml", "path to local config overrides")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(common.GetFullVersion())
		return
	}

	application, err := app.NewApp(*configPath, *localConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			application.Logger.Error().Err(err).Msg("Server stopped with error")
			os.Exit(1)
		}
	case sig := <-sigCh:
		application.Logger.Info().Str("signal", sig.String()).Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := application.Server.Shutdown(ctx); err != nil {
			application.Logger.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}
