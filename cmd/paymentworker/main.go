package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mitienda/fulfillment/internal/catalog"
	"github.com/mitienda/fulfillment/internal/config"
	"github.com/mitienda/fulfillment/internal/fulfillment"
	kafkax "github.com/mitienda/fulfillment/internal/kafka"
	"github.com/mitienda/fulfillment/internal/ledger"
	"github.com/mitienda/fulfillment/internal/payments"
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
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	pPaid := kafkax.NewProducer(cfg.KafkaBrokers, fulfillment.TopicOrderPaid, 1024)
	pPaid.Start(ctx)
	pRej := kafkax.NewProducer(cfg.KafkaBrokers, fulfillment.TopicOrderRejected, 1024)
	pRej.Start(ctx)

	catalogRepo := &catalog.Repo{DB: db}
	ledgerRepo := &ledger.Repo{DB: db}
	svc := &payments.Service{
		Engine:           &fulfillment.Engine{DB: db, Catalog: catalogRepo, Ledger: ledgerRepo},
		Redis:            rdb,
		ProducerPaid:     pPaid,
		ProducerRejected: pRej,
		ServiceName:      cfg.ServiceName + "-payments",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.PaymentGroup,
		fulfillment.TopicPaymentConfirmed, cfg.PaymentWorkers)

	go func() {
		log.Printf("payment consumer started: group=%s topic=%s workers=%d",
			cfg.PaymentGroup, fulfillment.TopicPaymentConfirmed, cfg.PaymentWorkers)
		if err := cons.Start(ctx, svc.HandlePaymentConfirmed); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	pPaid.Close()
	pRej.Close()
	pPaid.WaitClosed()
	pRej.WaitClosed()
}
