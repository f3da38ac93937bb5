package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSink 每局一个列表 corpus:<gameID>，由训练进程消费
type RedisSink struct {
	Rdb *redis.Client
	TTL time.Duration
}

func CorpusKey(gameID string) string {
	return fmt.Sprintf("corpus:%s", gameID)
}

func (s *RedisSink) Write(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	pipe := s.Rdb.TxPipeline()
	byGame := make(map[string][]interface{})
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		byGame[rec.GameID] = append(byGame[rec.GameID], b)
	}
	for gameID, values := range byGame {
		key := CorpusKey(gameID)
		pipe.RPush(ctx, key, values...)
		if s.TTL > 0 {
			pipe.Expire(ctx, key, s.TTL)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入 Redis 训练语料失败: %w", err)
	}
	return nil
}

// Close 连接由 repository 统一管理
func (s *RedisSink) Close() error { return nil }
