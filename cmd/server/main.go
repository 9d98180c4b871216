package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"excavation/config"
	"excavation/network"
	"excavation/room"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	r := room.New(room.Options{
		Catalog:      catalog,
		TickInterval: cfg.TickInterval,
		AdminToken:   cfg.AdminToken,
		DevCommands:  cfg.DevCommands,
		Logger:       logger,
	})
	go r.Run()
	defer r.Stop()

	mux := http.NewServeMux()
	mux.Handle("/ws", network.NewHandler(r, network.Options{
		QueueSize:    cfg.OutboundQueue,
		CommandRate:  rate.Limit(cfg.CommandRate),
		CommandBurst: cfg.CommandBurst,
		Logger:       logger,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Printf("listening on %s (ws endpoint: /ws)", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
