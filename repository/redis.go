package repository

import (
	"context"
	"fmt"

	"go-splendor/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var (
	Rdb *redis.Client
	Ctx = context.Background()
)

// InitRedis 连接 Redis 并 Ping 一次
func InitRedis(cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr, // Docker 里用服务名或内网IP
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := Rdb.Ping(Ctx).Result(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}
	log.Info("✅ Redis 连接成功", zap.String("addr", cfg.Addr))
	return Rdb, nil
}
