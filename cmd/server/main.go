package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/config"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/database"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/events"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/handlers"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/logger"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/middleware"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/repository"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/routes"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logr := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		Production: cfg.IsProduction(),
	})
	defer logr.Sync()

	if err := run(cfg, logr); err != nil {
		logr.Fatalw("server stopped with error", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TokenSecret == "your-secret-key-change-in-production" {
		logr.Warn("⚠️  TOKEN_SECRET not set, using the development default")
		if cfg.IsProduction() {
			return errors.New("TOKEN_SECRET must be set in production")
		}
	}

	// Relational store
	db, dialect, err := connectDatabase(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer db.Close()

	// Redis (optional): shared cache, rate limiting and cross-instance events
	var redisClient *redis.Client
	if cfg.RedisURI != "" {
		logr.Info("Connecting to Redis...")
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		logr.Info("✅ Connected to Redis")
	}

	// MongoDB (optional): entry revision history
	var history repository.HistoryStore = repository.NopHistoryStore{}
	if cfg.MongoURI != "" {
		logr.Info("Connecting to MongoDB...")
		var mongoClient *mongo.Client
		var mongoDB *mongo.Database
		mongoClient, mongoDB, err = database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer database.DisconnectMongo(mongoClient)

		store := repository.NewMongoHistoryStore(mongoDB)
		if err := store.EnsureIndexes(ctx); err != nil {
			logr.Warnw("⚠️  failed to ensure MongoDB history indexes", "error", err)
		}
		history = store
		logr.Infow("✅ Connected to MongoDB", "database", mongoDB.Name())
	}

	hub := events.NewHub(logr)
	var publishers events.Multi
	var broker *events.RedisBroker
	if redisClient != nil {
		broker = events.NewRedisBroker(redisClient, hub, logr)
		publishers = append(publishers, broker)
	} else {
		publishers = append(publishers, hub)
	}

	// AMQP (optional): outbound domain events
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, logr)
		if err != nil {
			return err
		}
		defer amqpPub.Close()
		publishers = append(publishers, amqpPub)
		logr.Infow("✅ Publishing events to AMQP", "exchange", cfg.AMQPExchange)
	}

	var (
		cache         services.CacheStore
		globalLimiter middleware.RateLimiter
		loginLimiter  middleware.RateLimiter
	)
	if redisClient != nil {
		cache = services.NewRedisCache(redisClient, services.DefaultCacheTTL)
		globalLimiter = middleware.NewRedisLimiter(redisClient, "global", 120, time.Minute)
		loginLimiter = middleware.NewRedisLimiter(redisClient, "login", 10, time.Minute)
	} else {
		cache = services.NewMemoryCache(services.DefaultCacheTTL)
		globalLimiter = middleware.NewMemoryLimiter(rate.Limit(2), 20)
		loginLimiter = middleware.NewMemoryLimiter(rate.Every(5*time.Second), 3)
	}

	// Services
	authService := services.NewAuthService(
		repository.NewSQLUserRepository(db, dialect), cfg.TokenSecret, cfg.TokenExpire, logr)
	emotionService := services.NewEmotionService(
		repository.NewSQLEmotionRepository(db, dialect), history, cache, publishers, logr)

	router := routes.NewRouter(routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, logr),
		Emotions:    handlers.NewEmotionHandler(emotionService, logr),
		Events:      handlers.NewEventsHandler(hub, cfg.AllowedOrigins, logr),
		Health:      handlers.NewHealthHandler(db, redisClient),
		RequireAuth: middleware.NewAuth(authService, logr),
	}, routes.Options{
		Log:            logr,
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
		AllowedHost:    cfg.AllowedHost,
		GlobalLimiter:  globalLimiter,
		LoginLimiter:   loginLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logr.Infow("🚀 Emotion tracker backend running", "port", cfg.Port, "env", cfg.Environment, "database", cfg.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if broker != nil {
		g.Go(func() error { return broker.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logr.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logr.Info("Server stopped gracefully")
	return nil
}

func connectDatabase(ctx context.Context, cfg *config.Config, logr *zap.SugaredLogger) (*sql.DB, database.Dialect, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		logr.Infow("Opening SQLite database...", "path", cfg.SQLitePath)
		db, err := database.ConnectSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, "", err
		}
		logr.Info("✅ SQLite database ready")
		return db, database.SQLite, nil
	default:
		logr.Info("Connecting to PostgreSQL...")
		db, err := database.ConnectPostgres(ctx, cfg.PostgresURI)
		if err != nil {
			return nil, "", err
		}
		logr.Info("✅ Connected to PostgreSQL")
		return db, database.Postgres, nil
	}
}
