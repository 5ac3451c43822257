package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/rl1809/product-inventory/internal/adapter/storage"
	"github.com/rl1809/product-inventory/internal/config"
	"github.com/rl1809/product-inventory/internal/port"
	"github.com/rl1809/product-inventory/internal/shutdown"
)

const connectTimeout = 10 * time.Second

// Store is an opened ItemStore together with the hook that releases its
// connections.
type Store struct {
	port.ItemStore
	Close func(context.Context) error
}

type schemaBootstrapper interface {
	EnsureSchema(ctx context.Context) error
}

// OpenStore connects the backend selected by cfg.StoreDriver and verifies it
// answers a ping.
func OpenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	logger.Info("connecting to store", zap.String("driver", string(cfg.StoreDriver)))

	var store *Store
	switch cfg.StoreDriver {
	case config.DriverMemory:
		store = &Store{
			ItemStore: storage.NewMemoryAdapter(),
			Close:     func(context.Context) error { return nil },
		}

	case config.DriverMySQL:
		db, err := storage.OpenMySQL(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = &Store{ItemStore: storage.NewMySQLAdapter(db), Close: shutdown.Close(db)}

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres pool: %w", err)
		}
		store = &Store{ItemStore: storage.NewPostgresAdapter(pool), Close: shutdown.ClosePool(pool)}

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DatabaseURL))
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		store = &Store{ItemStore: storage.NewMongoAdapter(client, cfg.MongoDBName), Close: shutdown.DisconnectMongo(client)}

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: 100,
		})
		store = &Store{ItemStore: storage.NewRedisAdapter(rdb), Close: shutdown.Close(rdb)}

	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}

	if err := store.Ping(ctx); err != nil {
		_ = store.Close(context.Background())
		return nil, fmt.Errorf("ping %s: %w", cfg.StoreDriver, err)
	}

	if cfg.BootstrapSchema {
		if b, ok := store.ItemStore.(schemaBootstrapper); ok {
			if err := b.EnsureSchema(ctx); err != nil {
				_ = store.Close(context.Background())
				return nil, err
			}
			logger.Info("store schema ensured")
		}
	}

	logger.Info("store connection established")
	return store, nil
}
