package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Gateway implements ports.Gateway with one plain string key per collection.
type Gateway struct {
	cli    *redis.Client
	prefix string
}

func NewGateway(cli *redis.Client, prefix string) *Gateway {
	return &Gateway{cli: cli, prefix: prefix}
}

func (g *Gateway) Get(ctx context.Context, key string) (string, bool, error) {
	out := g.cli.Get(ctx, g.key(key))
	if out.Err() != nil {
		if errors.Is(out.Err(), redis.Nil) {
			return "", false, nil
		}
		return "", false, out.Err()
	}
	return out.Val(), true, nil
}

func (g *Gateway) Set(ctx context.Context, key string, value string) error {
	return g.cli.Set(ctx, g.key(key), value, 0).Err()
}

// ClearAll removes every key under the gateway prefix. Used in tests only.
func (g *Gateway) ClearAll(ctx context.Context) error {
	keys, err := g.cli.Keys(ctx, g.key("*")).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return g.cli.Del(ctx, keys...).Err()
}

func (g *Gateway) key(k string) string { return g.prefix + k }
