package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiaot623/autopilot/internal/config"
	"github.com/xiaot623/autopilot/internal/domain"
	"github.com/xiaot623/autopilot/internal/driver"
	"github.com/xiaot623/autopilot/internal/navcache"
	"github.com/xiaot623/autopilot/internal/playback"
	"github.com/xiaot623/autopilot/internal/policy"
	"github.com/xiaot623/autopilot/internal/recorder"
	"github.com/xiaot623/autopilot/internal/service"
	"github.com/xiaot623/autopilot/internal/sim"
	"github.com/xiaot623/autopilot/internal/store"
	"github.com/xiaot623/autopilot/internal/tools"
	transport "github.com/xiaot623/autopilot/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting autopilot engine...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Tick rate: %d Hz", cfg.TickRateHz)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Simulated world: actor, widget surface and path querier
	actor := sim.NewActor()
	widgets := sim.NewWidgets()
	widgets.Add(domain.WidgetInfo{Name: "MainMenu", Class: "Menu", Visible: true, Enabled: true})
	widgets.Add(domain.WidgetInfo{Name: "StartButton", Class: "Button", Visible: true, Enabled: true, Text: "Start"})
	querier := sim.NewGridQuerier()

	// Spatial query cache
	cache := navcache.New(cfg.NavCacheSize, cfg.NavCacheTolerance)

	// Driver
	driverCtx := &driver.Context{
		Actuator: actor,
		Widgets:  widgets,
		Nav:      cache,
		Finder:   querier,
	}
	drv := driver.New(driverCtx)
	drv.AddCompletionListener(func(result domain.CommandResult) {
		log.Printf("command finished: %s (%s)", result.Status, result.Message)
	})

	// Recorder and playback
	recOpts := recorder.DefaultOptions()
	recOpts.Interval = float64(cfg.RecordingIntervalMs) / 1000.0
	recOpts.BufferSize = cfg.RecordingBufferSize
	recOpts.MovementThreshold = cfg.MovementThreshold
	recOpts.RotationThreshold = cfg.RotationThreshold
	recOpts.MapName = cfg.MapName
	rec := recorder.New(actor, recOpts)
	player := playback.New(drv)

	// Service and tick loop
	svc := service.New(service.Options{
		Driver:     drv,
		Context:    driverCtx,
		Cache:      cache,
		Recorder:   rec,
		Player:     player,
		Store:      db,
		Stepper:    actor,
		TickRateHz: cfg.TickRateHz,
	})

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go func() {
		if err := svc.Run(loopCtx); err != nil && err != context.Canceled {
			log.Printf("tick loop exited: %v", err)
		}
	}()

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Tool registry and HTTP server
	registry := tools.NewRegistry()
	svc.RegisterTools(registry)
	server := transport.NewServer(registry, policyEngine)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Remote control API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down autopilot engine...")

	stopLoop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Autopilot engine stopped")
}
