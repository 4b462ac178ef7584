package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"currycrave/pkg/config"
	"currycrave/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	Module      = fx.Provide(New)
	ErrNotFound = errors.New("not found")
)

type Client interface {
	Save(ctx context.Context, key string, value any, dur time.Duration) error
	SaveObj(ctx context.Context, key string, value any, dur time.Duration) error
	Find(ctx context.Context, key string) (value string, err error)
	Delete(ctx context.Context, key string) (err error)
	FindObj(ctx context.Context, key string, value any) error
}

type client struct {
	redis  redis.UniversalClient
	prefix string
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.IConfig
	Logger    logger.Logger
}

// New connects to redis. With no redis.addrs configured it returns a nil
// Client and consumers run without the shared cache.
func New(p Params) (Client, error) {
	var (
		addrs   = p.Config.GetStringSlice("redis.addrs")
		timeout = 5 * time.Second
		ctx     = context.Background()
	)

	if len(addrs) == 0 {
		p.Logger.Warn(ctx, "redis.addrs not set, shared pincode cache disabled")
		return nil, nil
	}

	connOpt := redis.UniversalOptions{
		ClientName:   p.Config.GetString("redis.clientName"),
		Addrs:        addrs,
		Username:     p.Config.GetString("redis.username"),
		Password:     p.Config.GetString("redis.password"),
		DB:           p.Config.GetInt("redis.db"),
		PoolSize:     p.Config.GetInt("redis.poolSize"),
		MaxRedirects: p.Config.GetInt("redis.maxRedirects"),
		DialTimeout:  timeout,
	}

	conn := redis.NewUniversalClient(&connOpt)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := conn.Ping(pingCtx).Err(); err != nil {
		p.Logger.Error(ctx, "failed to connect to redis", zap.Error(err), zap.Strings("addrs", addrs))
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return conn.Close()
		},
	})

	return NewWithConn(conn, p.Config.GetString("redis.prefix")), nil
}

func NewWithConn(conn redis.UniversalClient, prefix string) Client {
	return &client{
		redis:  conn,
		prefix: prefix,
	}
}

func (c client) getPrefixedKey(key string) string {
	return c.prefix + "." + key
}

func (c client) Save(ctx context.Context, key string, value interface{}, dur time.Duration) error {
	err := c.redis.Set(ctx, c.getPrefixedKey(key), value, dur).Err()
	if err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	return nil
}

func (c client) SaveObj(ctx context.Context, key string, value any, dur time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	if err := c.redis.Set(ctx, c.getPrefixedKey(key), b, dur).Err(); err != nil {
		return fmt.Errorf("failed to set obj: %w", err)
	}
	return nil
}

func (c client) Find(ctx context.Context, key string) (string, error) {
	value, err := c.redis.Get(ctx, c.getPrefixedKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get key: %w", err)
	}
	return value, nil
}

func (c client) Delete(ctx context.Context, key string) error {
	err := c.redis.Del(ctx, c.getPrefixedKey(key)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

func (c client) FindObj(ctx context.Context, key string, value interface{}) error {
	val, err := c.Find(ctx, key)
	if err != nil {
		return err
	}

	if err = json.Unmarshal([]byte(val), value); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}
