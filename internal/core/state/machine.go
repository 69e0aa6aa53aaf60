// Package state 实现带转换表的连接状态机
//
// 状态机只接受静态枚举转换表中存在的转换；表外转换是调用方的
// 逻辑错误，以独立错误类型上报，绝不静默忽略。每次成功转换
// 追加一条有界历史记录，并在共享事件总线上恰好发布一次变更事件。
package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/homecentral/go-homecentral/pkg/lib/log"
	"github.com/homecentral/go-homecentral/pkg/types"
)

var logger = log.Logger("core/state")

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrInvalidTransition 转换表外的状态转换
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrFailureReasonRequired 进入 Failed 状态必须携带非零故障原因
	ErrFailureReasonRequired = errors.New("failure reason required when entering failed state")
)

// InvalidTransitionError 表外转换错误
//
// 携带实体名与转换两端，方便调用方定位逻辑错误。
// errors.Is(err, ErrInvalidTransition) 恒为真。
type InvalidTransitionError struct {
	// Entity 状态机实体名（接口通道 ID 或 "central"）
	Entity string

	// From 当前状态
	From string

	// To 请求的目标状态
	To string
}

// Error 实现 error 接口
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: invalid state transition %s -> %s", e.Entity, e.From, e.To)
}

// Unwrap 支持 errors.Is(err, ErrInvalidTransition)
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ============================================================================
//                              共享状态机核心
// ============================================================================

// historyCapacity 转换历史固定容量，超出后先进先出淘汰
const historyCapacity = 50

// stateValue 状态枚举约束
type stateValue interface {
	comparable
	fmt.Stringer
}

// table 转换表: from → 允许的 to 集合
type table[S stateValue] map[S][]S

// allowed 查询 (from, to) 是否在表中
func (t table[S]) allowed(from, to S) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

// machine 共享状态机核心
//
// 持有当前状态、转换表与有界历史；由 ClientMachine/CentralMachine
// 封装使用。当前状态只能通过 transition 修改。
type machine[S stateValue] struct {
	mu sync.Mutex

	entity  string
	current S
	tbl     table[S]
	history []types.TransitionRecord
}

// newMachine 创建状态机核心
func newMachine[S stateValue](entity string, initial S, tbl table[S]) *machine[S] {
	return &machine[S]{
		entity:  entity,
		current: initial,
		tbl:     tbl,
	}
}

// state 返回当前状态
func (m *machine[S]) state() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// canTransitionTo 查询目标状态是否可达（纯查询，无副作用）
func (m *machine[S]) canTransitionTo(to S) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tbl.allowed(m.current, to)
}

// transition 执行状态转换
//
// 校验、状态置换、辅助字段更新（onApply 回调）与历史追加
// 在同一把锁内完成，调用方观察不到部分更新。返回转换前状态。
func (m *machine[S]) transition(to S, reason types.FailureReason, onApply func(from S)) (S, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.tbl.allowed(m.current, to) {
		return m.current, &InvalidTransitionError{
			Entity: m.entity,
			From:   m.current.String(),
			To:     to.String(),
		}
	}

	from := m.current
	m.current = to

	m.history = append(m.history, types.TransitionRecord{
		From:   from.String(),
		To:     to.String(),
		Reason: reason,
		Time:   time.Now(),
	})
	if len(m.history) > historyCapacity {
		m.history = m.history[len(m.history)-historyCapacity:]
	}

	if onApply != nil {
		onApply(from)
	}

	return from, nil
}

// read 在状态机锁内执行只读访问
//
// 封装类型的辅助字段（故障原因、降级集合）与当前状态共用
// 同一把锁，保证读取一致。
func (m *machine[S]) read(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f()
}

// transitionHistory 返回转换历史副本
func (m *machine[S]) transitionHistory() []types.TransitionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.TransitionRecord, len(m.history))
	copy(out, m.history)
	return out
}
