package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/loayeid/shophub/configs"
	"github.com/loayeid/shophub/internal/adapter/cache"
	"github.com/loayeid/shophub/internal/adapter/gateway"
	"github.com/loayeid/shophub/internal/adapter/http"
	"github.com/loayeid/shophub/internal/adapter/http/middleware"
	"github.com/loayeid/shophub/internal/adapter/kafka"
	"github.com/loayeid/shophub/internal/adapter/mail"
	"github.com/loayeid/shophub/internal/adapter/queue"
	"github.com/loayeid/shophub/internal/adapter/repo"
	"github.com/loayeid/shophub/internal/logging"
	"github.com/loayeid/shophub/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logger := logging.Init(cfg.App.Name, cfg.App.LogFile)

	// database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("ping mysql: %w", err)
	}
	if err := repo.RunMigrations(cfg.MySQL.DSN, cfg.MySQL.MigrationsDir); err != nil {
		return nil, nil, err
	}

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	// rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	// adapters
	orderRepo := repo.NewMySQLOrderRepo(db)
	userRepo := repo.NewMySQLUserRepo(db)
	cartStore := cache.NewRedisCartStore(rdb, cfg.Cart.TTL)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisCache(rdb, cfg.Cache.TTL)
	stripeGW := gateway.NewStripeGateway(cfg.Stripe.SecretKey)
	mailer := mail.NewSlogSender(cfg.Mail.From)

	alerts, err := queue.NewAlertProducer(ch)
	if err != nil {
		return nil, nil, err
	}
	statusProducer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	events := kafka.NewStatusProducer(statusProducer, cfg.Kafka.TopicStatus)

	// background consumers
	setupReconcileConsumer(ch, mailer, cfg.Mail.SupportAddr)
	setupStatusListener(cfg, statusCache)

	// use cases
	createIntent := usecase.NewCreateIntent(stripeGW)
	placeOrder := usecase.NewPlaceOrder(cartStore, stripeGW, orderRepo, idem, alerts, statusCache, mailer)
	updateStatus := usecase.NewUpdateStatus(orderRepo, events, statusCache)

	// http
	authz := middleware.NewAuthz(cfg)
	router := http.NewRouter(
		logging.New("http"),
		http.NewAuthHandler(userRepo, cfg),
		http.NewCartHandler(cartStore),
		http.NewCheckoutHandler(createIntent, placeOrder),
		http.NewAdminOrderHandler(orderRepo, updateStatus),
		authz,
	)

	logger.Info("shophub-api wired", "http_addr", cfg.App.HTTPAddr)

	cleanup := func() {
		_ = statusProducer.Close()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}
	return &App{Router: router}, cleanup, nil
}

func setupReconcileConsumer(ch *amqp091.Channel, mailer usecase.MailSender, supportAddr string) {
	h := queue.NewReconcileAlertHandler(mailer, supportAddr)

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register(queue.ReconcileQueue, queue.JSONHandler[usecase.ReconcileAlertMsg]{HandleFunc: h.HandleAlert})

	if err := router.Start(); err != nil {
		panic(err)
	}
}

func setupStatusListener(cfg configs.Config, statusCache *cache.RedisCache) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		panic(err)
	}

	h := kafka.NewStatusCacheHandler(statusCache)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.TopicStatus}, h.Handle)
	consumer.Logger = logging.New("kafka")

	go func() {
		if err := consumer.Start(context.Background()); err != nil && err != context.Canceled {
			logging.Base().Error("kafka consumer stopped", "err", err)
		}
	}()
}
