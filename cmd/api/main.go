package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/humsafar/dealer-api/internal/assistant"
	"github.com/humsafar/dealer-api/internal/cache"
	"github.com/humsafar/dealer-api/internal/config"
	"github.com/humsafar/dealer-api/internal/events"
	"github.com/humsafar/dealer-api/internal/httpx"
	kafkax "github.com/humsafar/dealer-api/internal/kafka"
	"github.com/humsafar/dealer-api/internal/postgres"
	"github.com/humsafar/dealer-api/internal/redisx"
	"github.com/humsafar/dealer-api/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		slog.Error("ensure schema", "err", err)
		os.Exit(1)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	// Repos
	dealers := &postgres.DealerRepo{DB: db}
	products := &postgres.ProductRepo{DB: db}
	carts := &postgres.CartRepo{DB: db}
	orders := &postgres.OrderRepo{DB: db}
	tx := &postgres.TxManager{DB: db}

	// Services
	redisCache := cache.NewRedis(rdb)
	auth := service.NewAuthService(dealers, &redisx.OTPStore{RDB: rdb})
	catalog := service.NewProductService(products, redisCache, tx)
	cart := service.NewCartService(carts, products)
	orderSvc := service.NewOrderService(dealers, products, carts, orders, tx)
	dashboard := service.NewDashboardService(orders)
	chat := service.NewAssistantService(
		assistant.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel),
		products, orders)

	// HTTP
	router := httpx.NewRouter()
	handlers := &httpx.Handlers{
		Auth:      &httpx.AuthHandler{Auth: auth},
		Catalog:   &httpx.CatalogHandler{Products: catalog},
		Cart:      &httpx.CartHandler{Cart: cart},
		Orders:    &httpx.OrdersHandler{Orders: orderSvc, Producer: prod, Cache: redisCache, Service: cfg.ServiceName},
		Dashboard: &httpx.DashboardHandler{Dashboard: dashboard},
		Chat:      &httpx.ChatHandler{Assistant: chat},
	}
	handlers.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // stop intake, flush buffered events
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
