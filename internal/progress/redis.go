package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRunStore 记录一次运行中已确认的交易签名。
// 运行中途失败时，操作者可以据此查看哪些批次已经不可逆地落链。
// 纯旁路记录：写失败不影响主流程，管线也从不读它做决策。
type RedisRunStore struct {
	rdb *redis.Client
	ttl time.Duration
}

const runKeyPrefix = "sweeper:run"

func NewRedisRunStore(rdb *redis.Client, ttl time.Duration) *RedisRunStore {
	return &RedisRunStore{rdb: rdb, ttl: ttl}
}

// RunKey 构造某个钱包的运行记录 key
func RunKey(wallet string) string {
	return fmt.Sprintf("%s:%s", runKeyPrefix, wallet)
}

// RecordConfirmed 追加一条已确认签名并刷新 TTL
func (s *RedisRunStore) RecordConfirmed(ctx context.Context, wallet, signature string) error {
	key := RunKey(wallet)
	if err := s.rdb.RPush(ctx, key, signature).Err(); err != nil {
		return fmt.Errorf("redis rpush error: %w", err)
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis expire error: %w", err)
	}
	return nil
}

// ConfirmedSignatures 返回某钱包本轮（按 TTL 窗口）已确认的全部签名，按确认顺序
func (s *RedisRunStore) ConfirmedSignatures(ctx context.Context, wallet string) ([]string, error) {
	sigs, err := s.rdb.LRange(ctx, RunKey(wallet), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange error: %w", err)
	}
	return sigs, nil
}
