package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"armenu/pkg/idgen"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// 分布式锁
// ============================================================================
//
// 【为什么 capture 要加锁？】
//
// capture 是不可逆的资金动作。同一笔支付如果两个验签请求并发进来：
//   goroutine1: 验签通过 -> capture -> 订单标记 paid
//   goroutine2: 验签通过 -> 再次 capture -> 网关报错 / 重复扣款风险
//
// 按 payment_id 加锁后，第二个请求要么等到锁、发现流水已存在直接返回，
// 要么拿锁失败报系统繁忙。
//
// 【Redis 锁原理】
//
// 加锁：SET key value NX EX timeout
//   - NX: 只有 key 不存在时才设置（保证互斥）
//   - EX: 设置过期时间（防止死锁）
//   - value: 锁持有者标识（释放时验证，防止误删别人的锁）
//
// 释放锁：Lua 脚本保证"检查+删除"的原子性
//
// ============================================================================

var ErrLockFailed = errors.New("获取分布式锁失败")

// DistributedLock 分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string
	expiration time.Duration
}

// NewDistributedLock 创建分布式锁
func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock 阻塞式获取锁（带重试）
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
			// 继续重试
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁
// 先验证 value 是自己的再删除，避免超时后误删别人的锁
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// NewCaptureLock 创建 capture 锁（按网关支付ID维度）
// 不同支付可以并发 capture，同一笔支付串行，这正是我们要的粒度
func NewCaptureLock(client *redis.Client, paymentID string) *DistributedLock {
	key := fmt.Sprintf("pay:capture:lock:%s", paymentID)
	// value 必须每个持有者唯一：锁超时被别人抢到后，
	// 原持有者的 Unlock 才能被 Lua 脚本的归属校验拦下来
	holder := fmt.Sprintf("%d", idgen.NextID())
	return NewDistributedLock(client, key, holder, 30*time.Second)
}
