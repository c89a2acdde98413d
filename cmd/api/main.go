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

	"github.com/alterd/checkout/internal/cart"
	"github.com/alterd/checkout/internal/catalog"
	"github.com/alterd/checkout/internal/config"
	"github.com/alterd/checkout/internal/gateway"
	"github.com/alterd/checkout/internal/httpx"
	kafkax "github.com/alterd/checkout/internal/kafka"
	"github.com/alterd/checkout/internal/payments"
	"github.com/alterd/checkout/internal/postgres"
	"github.com/alterd/checkout/internal/redisx"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	log.Printf("payment gateway key id=%s base=%s", cfg.MaskedKeyID(), cfg.GatewayBaseURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.ServiceName)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer, topic chosen per message
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)

	gw := gateway.New(gateway.Config{
		BaseURL:   cfg.GatewayBaseURL,
		KeyID:     cfg.KeyID,
		KeySecret: cfg.KeySecret,
		Timeout:   cfg.GatewayTimeout,
	})
	paySvc := payments.NewService(payments.Config{
		KeyID:           cfg.KeyID,
		KeySecret:       cfg.KeySecret,
		DefaultCurrency: cfg.DefaultCurrency,
		GatewayTimeout:  cfg.GatewayTimeout,
		ServiceName:     cfg.ServiceName,
	}, gw, &payments.Repo{DB: db}, prod)
	cartSvc := cart.NewService(cart.NewRedisStore(rdb, cfg.CartTTL))

	router := httpx.NewRouter()
	(&httpx.PaymentsHandler{Service: paySvc, Redis: rdb}).Register(router)
	(&httpx.OrdersHandler{Service: paySvc, Redis: rdb}).Register(router)
	(&httpx.CartHandler{Carts: cartSvc, Products: &catalog.Repo{DB: db}}).Register(router)
	router.Get("/readyz", httpx.Ready(map[string]httpx.Check{
		"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
		"redis":    func(ctx context.Context) error { return redisx.Ping(ctx, rdb) },
	}))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // stop accepting, flush what is queued
	prod.WaitClosed() // writer closed
	cancel()
}
