package cache

import (
	"context"
	"net"
	"strconv"
	"time"

	"project-portal/config"
	"project-portal/internal/global/logger"
	"project-portal/internal/global/sentry/tracing"
	"project-portal/tools"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix 本服务所有 key 的前缀
const KeyPrefix = "portal:"

// Client 未配置 Redis 时为 nil，调用方需先判断 Enabled
var Client *redis.Client

func Init() {
	cfg := config.Get().Redis
	if cfg.Host == "" {
		logger.New("Cache").Warn("未配置 Redis，会话注销与计数缓存将被禁用")
		return
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if tracing.IsEnabled() {
		client.AddHook(tracing.NewRedisSentryHook())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tools.PanicOnErr(client.Ping(ctx).Err())
	Client = client
}

func Enabled() bool {
	return Client != nil
}

// Remember 读取整数缓存，未命中时调用 load 并写回
func Remember(ctx context.Context, key string, ttl time.Duration, load func() (int64, error)) (int64, error) {
	if !Enabled() {
		return load()
	}
	key = KeyPrefix + key
	if s, err := Client.Get(ctx, key).Result(); err == nil {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
	}
	n, err := load()
	if err != nil {
		return 0, err
	}
	if err := Client.Set(ctx, key, n, ttl).Err(); err != nil {
		logger.New("Cache").Warn("写入缓存失败", "key", key, "error", err)
	}
	return n, nil
}

// Forget 删除缓存，失败只记录日志
func Forget(ctx context.Context, keys ...string) {
	if !Enabled() || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = KeyPrefix + k
	}
	if err := Client.Del(ctx, full...).Err(); err != nil {
		logger.New("Cache").Warn("删除缓存失败", "keys", full, "error", err)
	}
}

// PendingCountKey 待审核数量，项目状态变化时删除
const PendingCountKey = "moderation:pending-count"
