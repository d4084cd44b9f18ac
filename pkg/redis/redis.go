package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"classconnect/backend/config"
)

// Client Redis 客户端封装
// 当前用于 Token 黑名单、接口限流与预约时段占位
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

// ── 接口限流（固定窗口计数）──

// CheckRateLimit 检查 key 在窗口内的请求数是否超限
// 返回 true 表示放行
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

// ── 预约时段占位 ──

const holdPrefix = "booking:hold:"

// HoldSlot 为 (导师, 日期, 开始时间) 时段设置短期占位
// 占位已被他人持有时返回 false；仅用于收窄查询与提交之间的竞态窗口，
// 最终一致性由提交事务内的冲突复查保证
func (c *Client) HoldSlot(ctx context.Context, tutorID, date, startTime, holderID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("%s%s:%s:%s", holdPrefix, tutorID, date, startTime)
	ok, err := c.rdb.SetNX(ctx, key, holderID, ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	// 同一学生重复提交时视为仍持有占位
	holder, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return holder == holderID, nil
}

// ReleaseSlot 释放时段占位（提交完成或放弃预约时调用）
func (c *Client) ReleaseSlot(ctx context.Context, tutorID, date, startTime string) error {
	key := fmt.Sprintf("%s%s:%s:%s", holdPrefix, tutorID, date, startTime)
	return c.rdb.Del(ctx, key).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
