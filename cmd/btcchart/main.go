package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"btcchart/internal/chart"
	"btcchart/internal/collector"
	"btcchart/internal/config"
	"btcchart/internal/hub"
	"btcchart/internal/recorder"
	"btcchart/internal/render"
	"btcchart/internal/scheduler"
	"btcchart/internal/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] btcchart starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	loc, _ := cfg.Location()

	// One-time chart registration, before any page is served
	if err := render.Register(); err != nil {
		log.Fatalf("[FATAL] register chart templates: %v", err)
	}

	// Init fetcher and pipeline
	fetcher := collector.NewCoinGeckoFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	log.Printf("[INFO] data source: %s (%s)", fetcher.Name(), cfg.DataSource.BaseURL)
	col := collector.NewCollector(fetcher, cfg.DataSource.Coin, collector.Labeler{Layout: cfg.Labels.Layout, Location: loc})

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Mount the chart component
	comp := chart.New(col, rec, cfg.DataSource.Timeout)
	defer comp.Close()

	pages := hub.New(comp.Snapshot)
	pages.Start()
	defer pages.Stop()
	unsubscribe := comp.Subscribe(pages.Publish)
	defer unsubscribe()

	comp.Refresh()

	// Optional periodic refresh
	if cfg.Schedule.RefreshCron != "" {
		sched := scheduler.NewScheduler(comp)
		if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
			log.Fatalf("[FATAL] register cron tasks: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	httpServer := server.NewHandler(comp, pages, rec).Setup(cfg.Server.Addr)
	go func() {
		log.Printf("[INFO] listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] btcchart is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] btcchart stopped")
}
