// Package recovery 实现接口通道恢复协调器
package recovery

import (
	"time"
)

// ============================================================================
//                              契约常量
// ============================================================================

// 恢复契约常量。这些值是对外契约的一部分，不得静默漂移。
const (
	// MaxRecoveryAttempts 单接口最大恢复尝试次数
	MaxRecoveryAttempts = 8

	// BaseRetryDelay 退避基准时长
	BaseRetryDelay = 1 * time.Second

	// MaxRetryDelay 退避封顶时长
	MaxRetryDelay = 60 * time.Second

	// MaxConcurrentRecoveries 并发恢复尝试上限
	MaxConcurrentRecoveries = 3

	// HeartbeatRetryInterval 心跳重试间隔
	HeartbeatRetryInterval = 30 * time.Second
)

// attemptHistoryCap 单接口尝试历史固定容量，超出后先进先出淘汰
const attemptHistoryCap = 20

// ============================================================================
//                              恢复配置
// ============================================================================

// Config 恢复协调器配置
type Config struct {
	// MaxAttempts 单接口最大恢复尝试次数
	// 默认值: MaxRecoveryAttempts
	MaxAttempts int

	// BaseRetryDelay 退避基准时长
	// 默认值: BaseRetryDelay
	BaseRetryDelay time.Duration

	// MaxRetryDelay 退避封顶时长
	// 默认值: MaxRetryDelay
	MaxRetryDelay time.Duration

	// MaxConcurrent 并发恢复尝试上限
	// 默认值: MaxConcurrentRecoveries
	MaxConcurrent int

	// HeartbeatInterval 心跳重试间隔
	// 默认值: HeartbeatRetryInterval
	HeartbeatInterval time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:       MaxRecoveryAttempts,
		BaseRetryDelay:    BaseRetryDelay,
		MaxRetryDelay:     MaxRetryDelay,
		MaxConcurrent:     MaxConcurrentRecoveries,
		HeartbeatInterval: HeartbeatRetryInterval,
	}
}

// Validate 验证配置
//
// 修正无效值为默认值（不会返回错误）。
func (c *Config) Validate() error {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = MaxRecoveryAttempts
	}
	if c.BaseRetryDelay <= 0 {
		c.BaseRetryDelay = BaseRetryDelay
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = MaxRetryDelay
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = MaxConcurrentRecoveries
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = HeartbeatRetryInterval
	}
	return nil
}

// WithMaxAttempts 设置最大尝试次数
func (c *Config) WithMaxAttempts(n int) *Config {
	c.MaxAttempts = n
	return c
}

// WithRetryDelays 设置退避基准与封顶时长
func (c *Config) WithRetryDelays(base, max time.Duration) *Config {
	c.BaseRetryDelay = base
	c.MaxRetryDelay = max
	return c
}

// WithMaxConcurrent 设置并发恢复上限
func (c *Config) WithMaxConcurrent(n int) *Config {
	c.MaxConcurrent = n
	return c
}

// WithHeartbeatInterval 设置心跳重试间隔
func (c *Config) WithHeartbeatInterval(interval time.Duration) *Config {
	c.HeartbeatInterval = interval
	return c
}

// ============================================================================
//                              退避计算
// ============================================================================

// NextRetryDelay 计算下次尝试前的退避时长
//
// 公式: min(base * 2^(consecutiveFailures-1), max)。
// 连续失败次数为零（或负）时无需退避，返回 0。
func NextRetryDelay(base, max time.Duration, consecutiveFailures int) time.Duration {
	if consecutiveFailures <= 0 {
		return 0
	}

	// 指数位移封顶，防止溢出
	shift := consecutiveFailures - 1
	if shift > 30 {
		return max
	}

	delay := base << uint(shift)
	if delay <= 0 || delay > max {
		return max
	}
	return delay
}
