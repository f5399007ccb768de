package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis/v3"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"playlister/config"
	"playlister/db"
	"playlister/router"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := newLogger(cfg.LogDevelopment)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Veritabanı konteyneri geç ayağa kalkabilir, bağlantıyı birkaç kez dene.
	var store db.Store
	backoff := retry.WithMaxRetries(cfg.DBConnectRetries, retry.NewConstant(cfg.DBConnectBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		s, err := db.NewDatabase(ctx, log, cfg.DatabaseURL)
		if err != nil {
			log.Warn("Veritabanına bağlanılamadı, tekrar denenecek", zap.Error(err))
			return retry.RetryableError(err)
		}
		store = s
		return nil
	})
	if err != nil {
		log.Fatal("Veritabanına bağlanılamadı", zap.Error(err))
	}
	log.Info("Veritabanı bağlantısı kuruldu")

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, log, cfg.DatabaseURL); err != nil {
			store.Close()
			log.Fatal("Migration başarısız", zap.Error(err))
		}
	}

	var limiterStorage fiber.Storage
	var redisStore *redis.Storage
	if cfg.RedisHost != "" {
		redisStore = redis.New(redis.Config{
			Host: cfg.RedisHost,
			Port: cfg.RedisPort,
		})
		limiterStorage = redisStore
		log.Info("Rate limiter redis kullanıyor", zap.String("host", cfg.RedisHost))
	}

	app := router.New(router.Options{
		Store:           store,
		Log:             log,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		LimiterStorage:  limiterStorage,
	})

	go func() {
		<-ctx.Done()
		log.Info("Sunucu kapatılıyor...")

		var errs error
		errs = multierr.Append(errs, app.ShutdownWithTimeout(5*time.Second))
		if redisStore != nil {
			errs = multierr.Append(errs, redisStore.Close())
		}
		if errs != nil {
			log.Error("Kapatma hatası", zap.Error(errs))
		}
	}()

	log.Info("Sunucu dinliyor", zap.String("addr", cfg.ListenAddr))
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Error("Sunucu hatası", zap.Error(err))
	}

	store.Close()
	log.Info("Kapatma tamamlandı")
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
