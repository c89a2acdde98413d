package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alterd/checkout/internal/config"
	kafkax "github.com/alterd/checkout/internal/kafka"
	"github.com/alterd/checkout/internal/payments"
	"github.com/alterd/checkout/internal/projector"
	"github.com/alterd/checkout/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Fatalf("redis: %v", err)
	}

	svc := &projector.Service{Redis: rdb, Name: cfg.ProjectorGroup}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ProjectorGroup, payments.Topics, cfg.ProjectorWorkers)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Printf("projector started: group=%s topics=%v workers=%d", cfg.ProjectorGroup, payments.Topics, cfg.ProjectorWorkers)
		if err := cons.Start(ctx, svc.Handle); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down projector...")
	cancel()
	<-done
}
