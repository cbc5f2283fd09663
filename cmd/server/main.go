package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/notification-service/internal/chat"
	"github.com/civicdesk/notification-service/internal/config"
	"github.com/civicdesk/notification-service/internal/database"
	"github.com/civicdesk/notification-service/internal/directory"
	"github.com/civicdesk/notification-service/internal/dispatch"
	"github.com/civicdesk/notification-service/internal/events"
	"github.com/civicdesk/notification-service/internal/handlers"
	"github.com/civicdesk/notification-service/internal/metrics"
	"github.com/civicdesk/notification-service/internal/notifier"
	"github.com/civicdesk/notification-service/internal/registry"
	"github.com/civicdesk/notification-service/internal/repository"
	"github.com/civicdesk/notification-service/internal/routes"
	"github.com/civicdesk/notification-service/pkg/logger"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(logger.Config{Development: cfg.Log.Development, Level: cfg.Log.Level})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	metrics.Init()

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, lg)
	if err != nil {
		lg.Fatalf("mongo: %v", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	var presence *registry.Presence
	if cfg.Redis.Addr != "" {
		rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, lg)
		if err != nil {
			lg.Fatalf("redis: %v", err)
		}
		defer func() { _ = rdb.Close() }()
		presence = registry.NewPresence(rdb, cfg.Redis.Prefix, 0)
	}

	// The registry instance is passed explicitly into everything that pushes;
	// there is no ambient socket state.
	reg := registry.New(lg)

	dir := directory.NewMongo(db)
	notifRepo := repository.NewNotificationRepo(db)
	msgRepo := repository.NewMessageRepo(db)

	email := notifier.NewEmailNotifier(cfg.Email.BrevoAPIKey, cfg.Email.SenderEmail, cfg.Email.SenderName)
	sms := notifier.NewSMSNotifier(cfg.SMS.TwilioSID, cfg.SMS.TwilioToken, cfg.SMS.FromPhone)

	engine := dispatch.NewEngine(notifRepo, dir, reg, email, sms, cfg.ChannelTimeout, lg)
	chatRouter := chat.NewRouter(msgRepo, dir, reg, lg)

	nh := handlers.NewNotificationHandler(engine, lg)
	ch := handlers.NewChatHandler(chatRouter, lg)
	wh := handlers.NewWSHandler(reg, presence, cfg.JWT.Secret, lg)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	routes.Register(app, nh, ch, wh, cfg.JWT.Secret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic != "" {
		consumer := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, engine, lg)
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				lg.Errorf("kafka consumer stopped: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		lg.Info("shutting down")
		_ = app.Shutdown()
	}()

	lg.Infof("notification service listening on :%s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		lg.Fatalf("server: %v", err)
	}
}
