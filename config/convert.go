package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// FromJSON 从 JSON 数据创建配置
//
// 支持从 JSON 文件或字符串加载配置。
// JSON 格式与 Config 结构体一一对应，未给出的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "central": {"name": "ccu-main"},
//	  "recovery": {"max_attempts": 4, "base_retry_delay": "2s"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为 JSON
func (c *Config) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// ApplyPreset 应用预设配置
//
// Preset 提供了针对不同场景优化的配置组合。
// 该函数将预设应用到配置上。
//
// 支持的预设：
//   - "standard": 默认配置
//   - "embedded": 嵌入式设备优化
//   - "testing": 测试用短时延配置
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case "standard":
		return applyStandardPreset(cfg)
	case "embedded":
		return applyEmbeddedPreset(cfg)
	case "testing":
		return applyTestingPreset(cfg)
	case "":
		// 空预设，不做任何操作
		return nil
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
}

// applyStandardPreset 应用标准预设
func applyStandardPreset(_ *Config) error {
	// 使用默认配置（已经是标准场景的取值）
	return nil
}

// applyEmbeddedPreset 应用嵌入式设备预设
//
// 嵌入式配置优化：
//   - 单并发恢复，减小峰值负载
//   - 更长的心跳间隔，减少空转唤醒
//   - 仅输出 warn 以上日志
func applyEmbeddedPreset(cfg *Config) error {
	cfg.Recovery.MaxConcurrent = 1
	cfg.Recovery.HeartbeatInterval = Duration(2 * time.Minute)
	cfg.Log.Level = "warn"
	return nil
}

// applyTestingPreset 应用测试预设
//
// 测试配置优化：
//   - 极短退避，缩短测试用时
//   - 禁用心跳循环，测试自行驱动恢复
//   - 输出 debug 日志
func applyTestingPreset(cfg *Config) error {
	cfg.Recovery.MaxAttempts = 3
	cfg.Recovery.BaseRetryDelay = Duration(time.Millisecond)
	cfg.Recovery.MaxRetryDelay = Duration(10 * time.Millisecond)
	cfg.Recovery.HeartbeatEnabled = false
	cfg.Log.Level = "debug"
	return nil
}
