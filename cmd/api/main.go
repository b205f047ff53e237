package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/cart"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/catalog"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/config"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/fulfillment"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/httpx"
	kafkax "github.com/Nirmit210/pulsepixeltech-sub001/internal/kafka"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/logging"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/metrics"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/payments"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/postgres"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/redisx"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/stock"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.ServiceName + "-api")
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	pStatus.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024)
	pCancelled.Start(ctx)

	// Repos & services
	orderRepo := &orders.Repo{DB: db}
	stockLedger := &stock.Ledger{DB: db}
	cat := &catalog.Catalog{DB: db}
	payLedger := &payments.Ledger{DB: db, Log: log}

	cartSvc := &cart.Service{
		DB:       db,
		Cart:     &cart.Repo{DB: db},
		Catalog:  cat,
		Stock:    stockLedger,
		Orders:   orderRepo,
		Payments: payLedger,
		Redis:    rdb,
		Producer: pPlaced,
		Log:      log,

		ServiceName:          cfg.ServiceName,
		ShippingFeeCents:     cfg.ShippingFeeCents,
		FreeShippingMinCents: cfg.FreeShippingMinCents,
		Retries:              cfg.CheckoutRetries,
	}
	fulfilSvc := &fulfillment.Service{
		DB:                db,
		Orders:            orderRepo,
		Stock:             stockLedger,
		Payments:          payLedger,
		ProducerStatus:    pStatus,
		ProducerCancelled: pCancelled,
		Log:               log,
		ServiceName:       cfg.ServiceName,
		ReturnWindow:      cfg.ReturnWindow,
	}

	// Router & handlers
	m := metrics.New("api")
	router := httpx.NewRouter(log, m)
	(&httpx.CartHandler{Svc: cartSvc, Metrics: m, Log: log}).Register(router)
	(&httpx.OrdersHandler{Repo: orderRepo, Fulfillment: fulfilSvc, Redis: rdb, Metrics: m, Log: log}).Register(router)
	(&httpx.PaymentsHandler{Ledger: payLedger, Log: log}).Register(router)
	(&httpx.StockHandler{Ledger: stockLedger, Catalog: cat, Log: log}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// close inboxes -> flush & close writers
	pPlaced.Close()
	pStatus.Close()
	pCancelled.Close()
	cancel()
	pPlaced.WaitClosed()
	pStatus.WaitClosed()
	pCancelled.WaitClosed()
}
