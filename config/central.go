// Package config 提供统一的配置管理
package config

import (
	"fmt"
)

// CentralConfig 控制器实例配置
type CentralConfig struct {
	// Name 实例名称，用于注册表与日志标识
	// 默认值: "homecentral"
	Name string `json:"name"`

	// Interfaces 启动时注册的接口通道 ID 列表
	// 默认值: 空（接口由调用方按需添加）
	Interfaces []string `json:"interfaces,omitempty"`
}

// DefaultCentralConfig 返回默认的控制器实例配置
func DefaultCentralConfig() CentralConfig {
	return CentralConfig{
		Name: "homecentral",
	}
}

// Validate 验证控制器实例配置的有效性
func (c *CentralConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("central: name must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Interfaces))
	for _, id := range c.Interfaces {
		if id == "" {
			return fmt.Errorf("central: interface id must not be empty")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("central: duplicate interface id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
