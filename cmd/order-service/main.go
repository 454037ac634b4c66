package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-orders/internal/auth"
	"ms-orders/internal/config"
	"ms-orders/internal/kafka"
	"ms-orders/internal/logger"
	"ms-orders/internal/order"
	orderapi "ms-orders/internal/order/api"
	orderdb "ms-orders/internal/order/db"
	"ms-orders/internal/payment"
	paymentapi "ms-orders/internal/payment/api"
	"ms-orders/internal/payment/payos"
	"ms-orders/internal/payment/storage"
	"ms-orders/internal/pricing"
	"ms-orders/internal/reservation"
	"ms-orders/internal/voucher"
	voucherapi "ms-orders/internal/voucher/api"
	voucherdb "ms-orders/internal/voucher/db"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	ctx := context.Background()

	// --- PostgreSQL ---
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	connector := pgdriver.NewConnector(pgdriver.WithDSN(dsn))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	if err := orderdb.Migrate(ctx, bunDB); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}
	if os.Getenv("DB_SEED") == "true" {
		if err := orderdb.Seed(ctx, bunDB); err != nil {
			log.Warn("DATABASE", fmt.Sprintf("Seeding failed: %v", err))
		}
	}

	paymentStore, err := storage.NewPostgreSQLStoreWithDB(sqldb, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Payment storage init failed: %v", err))
	}

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	tickets := reservation.NewRedis(redisClient)

	// --- Kafka ---
	var orderProducer order.KafkaPublisher
	var paymentProducer payment.KafkaPublisher
	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.OrderEvents, cfg.Kafka.Topics.PaymentEvents}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic setup failed: %v", err))
		}
		op := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.OrderEvents)
		pp := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.PaymentEvents)
		defer op.Close()
		defer pp.Close()
		orderProducer = op
		paymentProducer = pp
	} else {
		log.Warn("KAFKA", "Kafka disabled, events will not be published")
	}

	// --- Services ---
	engine := pricing.NewEngine(cfg.Pricing.VATRate)

	voucherService := voucher.NewVoucherService(&voucherdb.DB{Bun: bunDB}, log)

	orderDB := &orderdb.DB{Bun: bunDB}
	orderService := order.NewOrderService(orderDB, tickets, voucherService, orderProducer, engine, log)

	gateway := payos.NewClient(cfg.Payment, &http.Client{Timeout: 10 * time.Second}, log)
	paymentService := payment.NewPaymentService(paymentStore, orderDB, gateway, paymentProducer, cfg.Payment, log)

	orderHandler := orderapi.NewHandler(orderService, log)
	voucherHandler := voucherapi.NewHandler(voucherService, log)
	paymentHandler := paymentapi.NewHandler(paymentService, orderService, log)

	// --- Router ---
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth.JWTSecret))
			r.Route("/orders", orderHandler.RegisterRoutes)
			r.Route("/vouchers", voucherHandler.RegisterRoutes)
			r.Route("/payments", paymentHandler.RegisterRoutes)
		})
	})

	// Gateway callbacks carry no user token
	r.Post("/webhook/payos", paymentHandler.Webhook)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Order service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received, cleaning up")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
	}
	log.Info("SERVER", "Server exited gracefully")
}
