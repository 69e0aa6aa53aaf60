// Package interfaces 定义 homecentral 公共接口
//
// 本文件定义 EventBus 接口，提供类型化事件发布订阅功能。
package interfaces

import (
	"context"

	"github.com/homecentral/go-homecentral/pkg/types"
)

// Handler 事件处理函数
//
// 每次只接收一个与订阅类型形状一致的事件。
// handler 返回的 error（或 panic）被总线捕获并计入统计，
// 不会传播给 Publish 的调用方，也不影响其他 handler。
type Handler func(ctx context.Context, ev types.Event) error

// Unsubscribe 取消订阅函数
//
// 由 Subscribe 返回；重复调用为无操作。
type Unsubscribe func()

// EventBus 定义事件总线接口
//
// EventBus 提供类型安全的事件发布/订阅机制，带按键窄播
// 和逐 handler 统计。
type EventBus interface {
	// Subscribe 订阅指定类型的事件
	//
	// prototype 以指针形式给出事件形状（如 new(types.ClientStateChangedEvent)）。
	// key 为空字符串时为通配订阅，接收该类型的全部事件；
	// 非空时仅接收 EventKey() 与之相等的事件。
	Subscribe(prototype types.Event, key string, h Handler, opts ...SubscribeOption) (Unsubscribe, error)

	// Publish 发布事件并等待所有匹配 handler 执行完毕
	//
	// handler 的失败被隔离记录，Publish 本身不会因此失败。
	Publish(ctx context.Context, ev types.Event)

	// SubscriptionCount 返回指定类型的当前订阅数
	SubscriptionCount(prototype types.Event) int

	// HandlerStats 返回逐 handler 统计快照
	HandlerStats() map[string]types.HandlerStats

	// ClearStats 清空全部 handler 统计
	ClearStats()

	// Close 关闭总线，移除全部订阅
	Close() error
}

// SubscribeOption 订阅选项函数类型
type SubscribeOption func(*SubscribeSettings)

// SubscribeSettings 订阅设置（导出以供实现使用）
type SubscribeSettings struct {
	// Name handler 统计条目名称；为空时自动生成
	Name string
}

// WithSubscriberName 指定 handler 统计条目名称
func WithSubscriberName(name string) SubscribeOption {
	return func(s *SubscribeSettings) {
		s.Name = name
	}
}
