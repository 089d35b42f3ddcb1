package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	adminapi "github.com/tashware/muazzin/internal/api/admin"
	"github.com/tashware/muazzin/internal/bot"
	"github.com/tashware/muazzin/internal/config"
	"github.com/tashware/muazzin/internal/db"
	"github.com/tashware/muazzin/internal/events"
	"github.com/tashware/muazzin/internal/http/middleware"
	"github.com/tashware/muazzin/internal/jobs"
	"github.com/tashware/muazzin/internal/loop"
	"github.com/tashware/muazzin/internal/redis"
	"github.com/tashware/muazzin/internal/scrape"
	"github.com/tashware/muazzin/internal/telegram"
)

func main() {
	cfg := LoadEnvironment()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize PostgreSQL
	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}
	store := db.NewStore()

	if err := redis.Init(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword); err != nil {
		log.Fatal().Err(err).Msg("redis init failed")
	}
	marks := redis.NewMarkStore()

	tg, err := telegram.New(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram init failed")
	}

	var publisher *events.Publisher
	if cfg.MQTTBrokerURL != "" {
		publisher, err = events.NewPublisher(cfg.MQTTBrokerURL, "muazzin-bot")
		if err != nil {
			log.Error().Err(err).Msg("mqtt init failed, continuing without events")
		} else {
			defer publisher.Close()
		}
	}

	opts := loop.Options{Interval: cfg.TickInterval}
	if publisher != nil {
		opts.Events = publisher
	}
	loops := loop.NewManager(store, marks, tg, opts)

	adapter := scrape.New(cfg.SourceBaseURL)
	background := jobs.New(store, adapter, tg, config.RegionCodes())
	if err := background.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("job scheduler failed")
	}
	defer background.Stop()

	// warm the cache so first renders hit the store, not the source
	go background.RefreshAll(ctx)

	if cfg.ServerAddress != "" {
		go runAdminAPI(cfg, loops, background)
	}

	handler := bot.New(tg, store, adapter, loops)
	go handler.Run(ctx)
	log.Info().Msg("bot running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")
	cancel()
}

func runAdminAPI(cfg *config.Config, loops *loop.Manager, background *jobs.Jobs) {
	r := gin.Default()
	r.Use(cors.Default())

	admin := r.Group("/api/admin")
	adminapi.RegisterAuthRoutes(admin, cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPassHash)

	admin.Use(middleware.JWTMiddleware(cfg.JWTSecret))
	adminapi.RegisterStatusRoutes(admin, loops, background)

	log.Info().Str("addr", cfg.ServerAddress).Msg("admin API listening")
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Error().Err(err).Msg("admin API stopped")
	}
}
