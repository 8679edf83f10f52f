package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/otakushelf/otakushelf/internal/behavior"
	"github.com/otakushelf/otakushelf/internal/cache"
	"github.com/otakushelf/otakushelf/internal/config"
	"github.com/otakushelf/otakushelf/internal/handler"
	"github.com/otakushelf/otakushelf/internal/jobs"
	"github.com/otakushelf/otakushelf/internal/metadata"
	"github.com/otakushelf/otakushelf/internal/model"
	"github.com/otakushelf/otakushelf/internal/profilestore"
	"github.com/otakushelf/otakushelf/internal/recommend"
	"github.com/otakushelf/otakushelf/internal/repository"
	"github.com/otakushelf/otakushelf/internal/router"
	"github.com/otakushelf/otakushelf/internal/service"
	"github.com/otakushelf/otakushelf/internal/ws"
	"github.com/otakushelf/otakushelf/seeds"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config %v", err)
	}

	ctx := context.Background()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to parse database config %v", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatalf("failed to connect to database %v", err)
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool, log); err != nil {
		log.Fatalf("database not ready: %v", err)
	}
	log.Info("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := migrateDown(ctx, pool); err != nil {
			log.Fatalf("failed to migrate down %v", err)
		}
		log.Info("migrations dropped")
		return
	}

	if err := migrateUp(ctx, pool); err != nil {
		log.Fatalf("failed to migrate up %v", err)
	}

	repo := repository.New(pool)

	// ------------ Setup Seed Data ---------------
	if err := checkSeed(ctx, pool, repo, log); err != nil {
		log.Fatalf("failed to check seed %v", err)
	}

	// ------------ MongoDB (profiles) ---------------
	profiles, err := profilestore.New(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to mongodb %v", err)
	}
	defer profiles.Close(ctx)
	log.Info("connected to MongoDB")

	// ------------ Redis ---------------
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to parse redis url %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	recCache := cache.NewCache(redisClient, cfg.CacheTTL)
	if err := recCache.Ping(ctx); err != nil {
		log.Fatalf("failed to connect to redis %v", err)
	}
	log.Info("connected to Redis")

	// ------------ Pipeline ---------------
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	anilist := metadata.NewAniListClient(cfg.AniListURL)
	jikan := metadata.NewJikanClient(cfg.JikanURL)
	fetcher := metadata.NewClient(anilist, jikan, repo, cfg.MetadataCacheTTL, log)

	recommender := recommend.New(fetcher, rng, log)
	adaptor := behavior.New(rng)
	modelClient := model.NewClient(rng)
	hub := ws.NewHub(log)

	svc := service.NewService(repo, profiles, recCache, recommender, adaptor, modelClient, hub, log)

	// ------------ Background Jobs ---------------
	decay, err := jobs.NewDecayScheduler(profiles, log)
	if err != nil {
		log.Fatalf("failed to create scheduler %v", err)
	}
	if err := decay.Start(cfg.DecayHour); err != nil {
		log.Fatalf("failed to start decay job %v", err)
	}
	defer decay.Shutdown()

	// ---------------- Server --------------------
	h := handler.NewHandler(svc, hub)
	r := router.Setup(h)

	log.Infof("Server running on %s", cfg.Addr())
	log.Fatal(http.ListenAndServe(cfg.Addr(), r))
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, log *logrus.Logger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Infof("waiting for database... (%d/30)", i+1)
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := os.ReadFile("migrations/create_tables.down.sql")
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := os.ReadFile("migrations/create_tables.up.sql")
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, repo *repository.Repository, log *logrus.Logger) error {
	count, err := repo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("check users count: %w", err)
	}
	if count > 0 {
		log.Infof("database already seeded (%d users), skipping", count)
		return nil
	}
	return seeds.Setup(ctx, pool)
}
