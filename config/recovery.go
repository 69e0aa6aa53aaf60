// Package config 提供统一的配置管理
package config

import (
	"fmt"
	"time"
)

// RecoveryConfig 接口通道恢复配置
//
// 配置恢复协调器的退避与并发参数。
type RecoveryConfig struct {
	// MaxAttempts 单接口最大恢复尝试次数
	// 默认值: 8
	MaxAttempts int `json:"max_attempts"`

	// BaseRetryDelay 退避基准时长
	// 默认值: 1s
	BaseRetryDelay Duration `json:"base_retry_delay"`

	// MaxRetryDelay 退避封顶时长
	// 默认值: 60s
	MaxRetryDelay Duration `json:"max_retry_delay"`

	// MaxConcurrent 最大并发恢复数
	// 默认值: 3
	MaxConcurrent int `json:"max_concurrent"`

	// HeartbeatEnabled 是否启用心跳重试循环
	// 默认值: true
	HeartbeatEnabled bool `json:"heartbeat_enabled"`

	// HeartbeatInterval 心跳重试间隔
	// 默认值: 30s
	HeartbeatInterval Duration `json:"heartbeat_interval"`
}

// DefaultRecoveryConfig 返回默认的恢复配置
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		MaxAttempts:       8,
		BaseRetryDelay:    Duration(1 * time.Second),
		MaxRetryDelay:     Duration(60 * time.Second),
		MaxConcurrent:     3,
		HeartbeatEnabled:  true,
		HeartbeatInterval: Duration(30 * time.Second),
	}
}

// Validate 验证恢复配置的有效性
func (c *RecoveryConfig) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("recovery: max_attempts must be >= 1")
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("recovery: max_concurrent must be >= 1")
	}
	if c.BaseRetryDelay <= 0 {
		return fmt.Errorf("recovery: base_retry_delay must be > 0")
	}
	if c.MaxRetryDelay < c.BaseRetryDelay {
		return fmt.Errorf("recovery: max_retry_delay must be >= base_retry_delay")
	}
	if c.HeartbeatEnabled && c.HeartbeatInterval <= 0 {
		return fmt.Errorf("recovery: heartbeat_interval must be > 0")
	}
	return nil
}
