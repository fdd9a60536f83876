package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"attendly/backend/config"
)

// Client Redis 客户端封装
// 当前用于 Token 黑名单与签到码缓存；后续可扩展分布式锁等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 签到码缓存 ──
//
// 开启签到时把签到码写入 Redis，学生签到走缓存校验，未命中时回源数据库。

const checkInCodePrefix = "session:code:"

// CacheCheckInCode 缓存某节次的签到码
func (c *Client) CacheCheckInCode(ctx context.Context, sessionID, code string, ttl time.Duration) error {
	return c.rdb.Set(ctx, checkInCodePrefix+sessionID, code, ttl).Err()
}

// GetCheckInCode 读取缓存中的签到码，未命中返回空串
func (c *Client) GetCheckInCode(ctx context.Context, sessionID string) (string, error) {
	code, err := c.rdb.Get(ctx, checkInCodePrefix+sessionID).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

// DropCheckInCode 节次关闭或终场时清除签到码
func (c *Client) DropCheckInCode(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, checkInCodePrefix+sessionID).Err()
}

// ── 速率限制 ──

// CheckRateLimit 固定窗口计数：窗口内超过 limit 返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
