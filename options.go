package homecentral

import (
	"fmt"

	"github.com/homecentral/go-homecentral/config"
	"github.com/homecentral/go-homecentral/pkg/interfaces"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 配置（预设先应用，显式配置后覆盖）
	preset string
	config *config.Config

	// 协作方
	health    interfaces.HealthTracker
	reconnect interfaces.ReconnectProvider

	// 启动时注册的接口通道（与配置中的列表合并）
	interfaceIDs []string
}

// WithPreset 应用预设配置
//
// 支持的预设见 config.ApplyPreset："standard"、"embedded"、"testing"。
func WithPreset(name string) Option {
	return func(o *options) error {
		o.preset = name
		return nil
	}
}

// WithConfig 使用完整配置
//
// 给出的配置整体替换默认配置；与 WithPreset 同用时预设先应用。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config must not be nil")
		}
		o.config = cfg
		return nil
	}
}

// WithHealthTracker 使用外部健康追踪器
//
// 缺省时从接口通道状态机推导故障列表（State() == Failed 的接口）。
func WithHealthTracker(tracker interfaces.HealthTracker) Option {
	return func(o *options) error {
		o.health = tracker
		return nil
	}
}

// WithReconnectProvider 设置重连回调提供方
//
// 恢复扫描与心跳重试通过它获取各接口的重连回调。
// 缺省时恢复操作必须由调用方自带回调驱动。
func WithReconnectProvider(provider interfaces.ReconnectProvider) Option {
	return func(o *options) error {
		o.reconnect = provider
		return nil
	}
}

// WithInterfaces 追加启动时注册的接口通道
func WithInterfaces(ids ...string) Option {
	return func(o *options) error {
		o.interfaceIDs = append(o.interfaceIDs, ids...)
		return nil
	}
}
