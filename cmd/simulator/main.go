package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Barton98/Energy-management-system/internal/config"
	"github.com/Barton98/Energy-management-system/internal/logger"
	"github.com/Barton98/Energy-management-system/internal/simulator"
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

	sim := simulator.New(simulator.Config{
		Generator: simulator.NewGenerator(cfg.Simulator.DeviceID),
		Client: simulator.NewClient(simulator.ClientConfig{
			BaseURL:      cfg.Simulator.TargetURL,
			SendTimeout:  cfg.Simulator.SendTimeout,
			BatchTimeout: cfg.Simulator.BatchTimeout,
		}),
		Interval: cfg.Simulator.Interval,
	})

	done := make(chan struct{})
	go func() {
		sim.Run(ctx)
		close(done)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigs
	log.Info().Str("signal", sig.String()).Msg("shutting down")
	cancel()
	<-done

	log.Info().Msg("exited")
}
