// Package eventbus 实现进程内类型化事件总线
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/homecentral/go-homecentral/pkg/interfaces"
	"github.com/homecentral/go-homecentral/pkg/lib/log"
	"github.com/homecentral/go-homecentral/pkg/types"
)

var logger = log.Logger("core/eventbus")

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrClosed 事件总线已关闭
	ErrClosed = errors.New("eventbus closed")

	// ErrInvalidEventType 无效的事件类型
	ErrInvalidEventType = errors.New("invalid event type")

	// ErrNonPointerType 非指针原型
	ErrNonPointerType = errors.New("subscribe called with non-pointer prototype")

	// ErrNilHandler handler 为 nil
	ErrNilHandler = errors.New("subscribe called with nil handler")
)

// ============================================================================
//                              Bus 实现
// ============================================================================

// Bus 事件总线
type Bus struct {
	mu sync.RWMutex

	// nodes 事件类型节点映射
	nodes map[reflect.Type]*node

	// stats 逐 handler 统计，按订阅名称索引
	statsMu sync.Mutex
	stats   map[string]*types.HandlerStats

	// closed 关闭标志
	closed atomic.Bool
}

// node 事件类型节点
type node struct {
	lk    sync.Mutex
	typ   reflect.Type
	sinks []*subscription        // 订阅者列表
	index map[*subscription]int // 订阅 → sinks 下标，退订 O(1)
}

// add 追加订阅，须持有 lk
func (n *node) add(sub *subscription) {
	n.index[sub] = len(n.sinks)
	n.sinks = append(n.sinks, sub)
}

// remove 末位交换移除订阅，须持有 lk
func (n *node) remove(sub *subscription) {
	i, ok := n.index[sub]
	if !ok {
		return
	}
	last := len(n.sinks) - 1
	if i != last {
		n.sinks[i] = n.sinks[last]
		n.index[n.sinks[i]] = i
	}
	n.sinks[last] = nil
	n.sinks = n.sinks[:last]
	delete(n.index, sub)
}

// subscription 一条订阅
type subscription struct {
	name    string
	key     string // 空串表示通配
	handler interfaces.Handler
}

// 确保实现接口
var _ interfaces.EventBus = (*Bus)(nil)

// NewBus 创建新的事件总线
func NewBus() *Bus {
	return &Bus{
		nodes: make(map[reflect.Type]*node),
		stats: make(map[string]*types.HandlerStats),
	}
}

// ============================================================================
//                              EventBus 接口实现
// ============================================================================

// Subscribe 订阅事件
//
// prototype 以指针形式给出事件形状；key 为空串时通配。
// 返回的取消函数幂等，重复调用为无操作。
func (b *Bus) Subscribe(prototype types.Event, key string, h interfaces.Handler, opts ...interfaces.SubscribeOption) (interfaces.Unsubscribe, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	if h == nil {
		return nil, ErrNilHandler
	}

	elemType, err := prototypeType(prototype)
	if err != nil {
		return nil, err
	}

	settings := &interfaces.SubscribeSettings{}
	for _, opt := range opts {
		opt(settings)
	}

	name := settings.Name
	if name == "" {
		name = fmt.Sprintf("%s#%s", elemType.Name(), uuid.NewString()[:8])
	}

	sub := &subscription{
		name:    name,
		key:     key,
		handler: h,
	}

	// 预创建统计条目，订阅即可见
	b.statsMu.Lock()
	if _, ok := b.stats[name]; !ok {
		b.stats[name] = &types.HandlerStats{}
	}
	b.statsMu.Unlock()

	b.withNode(elemType, func(n *node) {
		n.add(sub)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.removeSub(elemType, sub)
		})
	}, nil
}

// Publish 发布事件并等待所有匹配 handler 执行完毕
//
// 分发使用分发开始时刻的订阅集合快照；并发注册的订阅
// 可能被包含也可能不被包含。handler 失败被隔离记录。
func (b *Bus) Publish(ctx context.Context, ev types.Event) {
	if b.closed.Load() || ev == nil {
		return
	}

	elemType, err := prototypeType(ev)
	if err != nil {
		logger.Warn("忽略无效事件", "error", err)
		return
	}

	b.mu.RLock()
	n := b.nodes[elemType]
	b.mu.RUnlock()

	if n == nil {
		return
	}

	// 快照后迭代，不持锁调用 handler
	n.lk.Lock()
	sinks := make([]*subscription, len(n.sinks))
	copy(sinks, n.sinks)
	n.lk.Unlock()

	eventKey, keyed := eventKeyOf(ev)

	for _, sub := range sinks {
		if sub.key != "" && (!keyed || sub.key != eventKey) {
			continue
		}
		b.invoke(ctx, sub, ev)
	}
}

// SubscriptionCount 返回指定类型的当前订阅数
func (b *Bus) SubscriptionCount(prototype types.Event) int {
	elemType, err := prototypeType(prototype)
	if err != nil {
		return 0
	}

	b.mu.RLock()
	n := b.nodes[elemType]
	b.mu.RUnlock()

	if n == nil {
		return 0
	}

	n.lk.Lock()
	defer n.lk.Unlock()
	return len(n.sinks)
}

// HandlerStats 返回逐 handler 统计快照
func (b *Bus) HandlerStats() map[string]types.HandlerStats {
	b.statsMu.Lock()
	defer b.statsMu.Unlock()

	out := make(map[string]types.HandlerStats, len(b.stats))
	for name, st := range b.stats {
		out[name] = *st
	}
	return out
}

// ClearStats 清空全部 handler 统计
func (b *Bus) ClearStats() {
	b.statsMu.Lock()
	defer b.statsMu.Unlock()
	b.stats = make(map[string]*types.HandlerStats)
}

// Close 关闭总线，移除全部订阅
//
// 关闭后 Subscribe 返回 ErrClosed，Publish 为无操作。
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	b.nodes = make(map[reflect.Type]*node)
	b.mu.Unlock()

	return nil
}

// ============================================================================
//                              内部方法
// ============================================================================

// withNode 在节点上执行操作，节点不存在时创建
func (b *Bus) withNode(typ reflect.Type, cb func(*node)) {
	b.mu.Lock()

	n, ok := b.nodes[typ]
	if !ok {
		n = &node{
			typ:   typ,
			sinks: make([]*subscription, 0),
			index: make(map[*subscription]int),
		}
		b.nodes[typ] = n
	}

	n.lk.Lock()
	b.mu.Unlock()

	cb(n)
	n.lk.Unlock()
}

// removeSub 移除订阅，节点空置时删除节点
func (b *Bus) removeSub(typ reflect.Type, sub *subscription) {
	b.mu.Lock()
	n, ok := b.nodes[typ]
	if !ok {
		b.mu.Unlock()
		return
	}

	n.lk.Lock()
	n.remove(sub)
	empty := len(n.sinks) == 0
	n.lk.Unlock()

	if empty {
		delete(b.nodes, typ)
	}
	b.mu.Unlock()
}

// invoke 调用单个 handler，隔离失败并更新统计
func (b *Bus) invoke(ctx context.Context, sub *subscription, ev types.Event) {
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panic: %v", r)
			}
		}()
		return sub.handler(ctx, ev)
	}()

	elapsed := time.Since(start)
	b.recordInvocation(sub.name, elapsed, err != nil)

	if err != nil {
		logger.Warn("事件 handler 执行失败",
			"handler", sub.name,
			"type", ev.Type(),
			"error", err)
	}
}

// recordInvocation 记录一次 handler 执行
func (b *Bus) recordInvocation(name string, elapsed time.Duration, failed bool) {
	b.statsMu.Lock()
	defer b.statsMu.Unlock()

	st, ok := b.stats[name]
	if !ok {
		st = &types.HandlerStats{}
		b.stats[name] = st
	}

	st.Executions++
	if failed {
		st.Errors++
	}
	st.TotalDuration += elapsed
	if elapsed > st.MaxDuration {
		st.MaxDuration = elapsed
	}
}

// prototypeType 解析事件原型的元素类型
//
// 原型必须是指向事件结构体的指针（如 new(types.XxxEvent)）。
func prototypeType(prototype types.Event) (reflect.Type, error) {
	if prototype == nil {
		return nil, ErrInvalidEventType
	}

	typ := reflect.TypeOf(prototype)
	if typ == nil {
		return nil, ErrInvalidEventType
	}

	if typ.Kind() != reflect.Ptr {
		return nil, ErrNonPointerType
	}

	return typ.Elem(), nil
}

// eventKeyOf 提取事件窄播键
func eventKeyOf(ev types.Event) (string, bool) {
	if k, ok := ev.(types.Keyed); ok {
		return k.EventKey(), true
	}
	return "", false
}
