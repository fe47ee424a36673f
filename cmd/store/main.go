package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Ngoclama/ecommerce-store-sub000/internal/config"
	"github.com/Ngoclama/ecommerce-store-sub000/internal/logger"
	"github.com/Ngoclama/ecommerce-store-sub000/internal/session"
	"github.com/Ngoclama/ecommerce-store-sub000/internal/storage"
	"github.com/Ngoclama/ecommerce-store-sub000/internal/store"
	"github.com/Ngoclama/ecommerce-store-sub000/internal/wishlist"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slot := newSlot(ctx, cfg)

	st, err := store.New(ctx, slot)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	sess := session.Guest()
	if cfg.AccessToken != "" {
		token := cfg.AccessToken
		sess = session.FromTokenSource(func(context.Context) (string, error) {
			return token, nil
		})
	}

	client := wishlist.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	svc := wishlist.NewService(st, client, sess, cfg.ResyncInterval)

	log.Printf("🛒 storefront store running (backend=%s, signed_in=%v)", cfg.StorageBackend, sess.SignedIn())
	svc.Run(ctx)
}

func newSlot(ctx context.Context, cfg *config.Config) storage.Slot {
	switch cfg.StorageBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		return storage.NewRedisSlot(rdb, cfg.SlotName)
	case "postgres":
		return storage.NewPostgresSlot(storage.InitDB(cfg), cfg.SlotName)
	default:
		return storage.NewFileSlot(cfg.StoragePath)
	}
}
