// Package config 提供统一的配置管理
package config

import (
	"fmt"
	"log/slog"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别
	// 可选值: "debug", "info", "warn", "error"
	// 默认值: "info"
	Level string `json:"level"`

	// Format 输出格式
	// 可选值: "text", "json"
	// 默认值: "text"
	Format string `json:"format"`
}

// DefaultLogConfig 返回默认的日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate 验证日志配置的有效性
func (c *LogConfig) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("log: unknown format %q", c.Format)
	}
}

// SlogLevel 将级别字符串解析为 slog.Level
func (c *LogConfig) SlogLevel() (slog.Level, error) {
	switch c.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log: unknown level %q", c.Level)
	}
}
