package main

import (
	"log"
	"net/http"
	"time"

	"vet-clinic-api/internal/adapters/events/kafka"
	"vet-clinic-api/internal/config"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/events"
	"vet-clinic-api/internal/router"
)

func main() {
	cfg := config.Load()
	lg := logger.NewFromEnv()

	var pub events.Publisher
	if cfg.KafkaBroker != "" {
		p := kafka.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic)
		defer p.Close()
		pub = p
	}

	h, err := router.New(router.Options{Cfg: cfg, Publisher: pub, Log: lg})
	if err != nil {
		log.Fatalf("startup error: %v", err)
	}

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 5 * time.Second,
		// WriteTimeout queda en 0: el stream SSE de notificaciones es un
		// response largo y un timeout de escritura lo cortaría.
		WriteTimeout: 0,
	}

	lg.Info("starting server", map[string]any{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
