package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	"github.com/wfunc/drawguess/config"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/monitor"
	"github.com/wfunc/drawguess/server"
	"github.com/wfunc/drawguess/timer"
)

func main() {
	configDir := pflag.StringP("config", "c", ".", "directory holding config.yaml")
	pflag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mon, err := monitor.NewMonitor(cfg.Metrics.Namespace, reg)
	if err != nil {
		logger.Log.Fatalf("Failed to register metrics: %v", err)
	}

	clock := clockwork.NewRealClock()
	timers := timer.NewTimerManager(clock, cfg.Timer.Resolution)
	defer timers.Close()

	// Initialize Game Server
	gameServer, err := server.NewGameServer(*cfg, server.Options{
		Scheduler: timers,
		Clock:     clock,
		Monitor:   mon,
	})
	if err != nil {
		logger.Log.Fatalf("Failed to create server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- gameServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.Infof("Received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			logger.Log.Errorf("Server stopped: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gameServer.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Shutdown error: %v", err)
	}
	logger.Log.Info("Server stopped.")
}
