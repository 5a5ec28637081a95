package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mitienda/fulfillment/internal/catalog"
	"github.com/mitienda/fulfillment/internal/config"
	"github.com/mitienda/fulfillment/internal/fulfillment"
	"github.com/mitienda/fulfillment/internal/httpx"
	kafkax "github.com/mitienda/fulfillment/internal/kafka"
	"github.com/mitienda/fulfillment/internal/ledger"
	"github.com/mitienda/fulfillment/internal/postgres"
	"github.com/mitienda/fulfillment/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prodPaid := kafkax.NewProducer(cfg.KafkaBrokers, fulfillment.TopicOrderPaid, 1024)
	prodPaid.Start(ctx)

	catalogRepo := &catalog.Repo{DB: db}
	ledgerRepo := &ledger.Repo{DB: db}
	engine := &fulfillment.Engine{DB: db, Catalog: catalogRepo, Ledger: ledgerRepo}

	router := httpx.NewRouter()
	h := &httpx.Handler{
		Orders:       &fulfillment.Repo{DB: db},
		Engine:       engine,
		Catalog:      catalogRepo,
		Ledger:       ledgerRepo,
		Redis:        rdb,
		ProducerPaid: prodPaid,
		Service:      cfg.ServiceName,
	}
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
	prodPaid.Close() // flush queued events, then close the writer
	prodPaid.WaitClosed()
}
