package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coregraph/internal/client"
	"coregraph/internal/config"
	"coregraph/internal/handler"
	"coregraph/internal/hub"
	"coregraph/internal/session"
	"coregraph/internal/surface"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "", "config file path (overrides search path)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting topology editor server...")

	var cfg *config.Config
	var path string
	var err error
	if *configPath != "" {
		cfg, path, err = config.LoadFromPath(*configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if path != "" {
		log.Printf("Config loaded: %s", path)
	} else {
		log.Println("No config file found, using defaults")
	}
	if *addr != "" {
		cfg.Listen = *addr
	}

	daemon := client.NewREST(cfg.Daemon.URL, cfg.Daemon.SessionID)
	log.Printf("Daemon: %s (session %d)", cfg.Daemon.URL, cfg.Daemon.SessionID)

	dataset := surface.NewDataset()

	sseHub := hub.New()
	go sseHub.Run()

	mutations := make(chan surface.Mutation, 100)
	dataset.Subscribe(mutations)
	go sseHub.Pump(mutations)

	sess := session.New(daemon, dataset, session.Subnets{
		IPv4: cfg.Subnets.IPv4,
		IPv6: cfg.Subnets.IPv6,
	})

	editor := handler.New(sess, dataset, sseHub)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: editor.Routes(),
	}

	go func() {
		log.Printf("Listening on %s", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
