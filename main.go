package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"littlelemon/configs"
	"littlelemon/middlewares"
	"littlelemon/pkg/logger"
	"littlelemon/routes"
	"littlelemon/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// DB
	db, err := configs.OpenDatabase(cfg.DBDriver, cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := configs.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	if err := configs.SeedGroups(db); err != nil {
		log.Fatal().Err(err).Msg("seed groups")
	}
	if created, err := configs.SeedAdmin(db, cfg); err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	} else if created {
		log.Info().Str("username", cfg.AdminUsername).Msg("superuser seeded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var limiter middlewares.Limiter = middlewares.NewMemoryLimiter()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, throttling fails open until it recovers")
		}
		limiter = middlewares.NewRedisLimiter(rdb)
	}

	hub := ws.NewOrderHub(log)
	go hub.Run(ctx)

	// HTTP
	gin.SetMode(gin.ReleaseMode)
	r := routes.NewRouter(routes.Deps{DB: db, Config: cfg, Log: log, Hub: hub, Limiter: limiter})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Str("db_driver", cfg.DBDriver).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped")
}
