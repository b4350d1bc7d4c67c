package store

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/coursemark/internal/config"
	"github.com/MrSnakeDoc/coursemark/internal/connect"
	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/logger"
	mongostore "github.com/MrSnakeDoc/coursemark/internal/store/mongo"
	redisstore "github.com/MrSnakeDoc/coursemark/internal/store/redis"
	sqlstore "github.com/MrSnakeDoc/coursemark/internal/store/sql"
)

// RetryOptions builds the shared connection retry policy from cfg.
func RetryOptions(cfg *config.Config) connect.RetryOptions {
	return connect.RetryOptions{
		ConnectTimeout: cfg.ConnectTimeout,
		RetryInterval:  cfg.RetryInterval,
		MaxWait:        cfg.MaxWait,
		PingTimeout:    cfg.PingTimeout,
		WarnThreshold:  cfg.WarnThreshold,
	}
}

// Open connects the backend selected by cfg.StoreDriver and prepares its
// schema (tables or indexes). Redis needs no preparation.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (domain.Store, error) {
	retry := RetryOptions(cfg)

	switch cfg.StoreDriver {
	case config.StoreSQLite, config.StorePostgres:
		s, err := sqlstore.Open(sqlstore.Options{
			Driver:       cfg.StoreDriver,
			DSN:          cfg.SQLDSN,
			MaxOpenConns: cfg.SQLMaxOpenConns,
			Debug:        cfg.SQLDebug,
		})
		if err != nil {
			return nil, err
		}
		addr := cfg.SQLDSN
		if cfg.StoreDriver == config.StorePostgres {
			addr = "postgres"
		}
		if err := connect.WithRetry(ctx, cfg.StoreDriver, addr, s.Ping, retry, log); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		return s, nil

	case config.StoreRedis:
		client, err := redisstore.NewClient(ctx, redisstore.ClientOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
		}, retry, log)
		if err != nil {
			return nil, err
		}
		return redisstore.NewStore(client), nil

	case config.StoreMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI, retry, log)
		if err != nil {
			return nil, err
		}
		s := mongostore.New(client, cfg.MongoDatabase)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		return s, nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
