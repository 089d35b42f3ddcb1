package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tashware/muazzin/internal/config"
)

// LoadEnvironment reads and validates env vars.
func LoadEnvironment() *config.Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &config.Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),

		ServerAddress: os.Getenv("SERVER_ADDRESS"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),
		SourceBaseURL: os.Getenv("SOURCE_BASE_URL"),

		TickInterval: config.DefaultTickInterval,
	}

	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "./migrations"
	}
	if cfg.RedisAddress == "" {
		cfg.RedisAddress = "localhost:6379"
	}
	if raw := os.Getenv("TICK_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid TICK_INTERVAL")
		}
		cfg.TickInterval = d
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("missing required environment variables")
	}
	return cfg
}
