package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Barton98/Energy-management-system/internal/config"
	"github.com/Barton98/Energy-management-system/internal/logger"
	"github.com/Barton98/Energy-management-system/internal/server"
)

func main() {
	configPath := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)
	log := logger.WithComponent("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.New(cfg.Server)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server exited")
			os.Exit(1)
		}
	}

	log.Info().Msg("exited")
}
