// Package state 实现带转换表的连接状态机
//
// 本文件定义聚合（中心实例级）状态机。
package state

import (
	"context"

	"github.com/homecentral/go-homecentral/pkg/interfaces"
	"github.com/homecentral/go-homecentral/pkg/types"
)

// ============================================================================
//                              转换表
// ============================================================================

// centralTable 聚合状态转换表
//
// Failed 可经恢复回到 Running/Degraded；Stopped 是终态。
var centralTable = table[types.CentralState]{
	types.CentralInit:     {types.CentralRunning, types.CentralFailed, types.CentralStopped},
	types.CentralRunning:  {types.CentralDegraded, types.CentralFailed, types.CentralStopped},
	types.CentralDegraded: {types.CentralRunning, types.CentralFailed, types.CentralStopped},
	types.CentralFailed:   {types.CentralRunning, types.CentralDegraded, types.CentralStopped},
	types.CentralStopped:  {},
}

// ============================================================================
//                              CentralMachine
// ============================================================================

// CentralMachine 聚合状态机
//
// 反映全部接口通道的整体健康状况。进入 Degraded 时记录
// 降级接口集合，进入 Running 时清除故障原因与降级集合。
type CentralMachine struct {
	core *machine[types.CentralState]
	bus  interfaces.EventBus // 可为 nil（不发布事件）

	// reason/degraded 受 core 锁保护
	reason   types.FailureReason
	degraded map[string]types.FailureReason
}

// 确保实现协调器消费的契约
var _ interfaces.CentralStateMachine = (*CentralMachine)(nil)

// NewCentralMachine 创建聚合状态机
func NewCentralMachine(bus interfaces.EventBus) *CentralMachine {
	return &CentralMachine{
		core:     newMachine("central", types.CentralInit, centralTable),
		bus:      bus,
		degraded: make(map[string]types.FailureReason),
	}
}

// State 返回当前聚合状态
func (c *CentralMachine) State() types.CentralState {
	return c.core.state()
}

// CanTransitionTo 查询目标状态是否可达（纯查询，无副作用）
func (c *CentralMachine) CanTransitionTo(target types.CentralState) bool {
	return c.core.canTransitionTo(target)
}

// FailureReason 返回当前故障原因（无故障时为 ReasonNone）
func (c *CentralMachine) FailureReason() types.FailureReason {
	var r types.FailureReason
	c.core.read(func() {
		r = c.reason
	})
	return r
}

// Degraded 返回当前降级接口集合副本
func (c *CentralMachine) Degraded() map[string]types.FailureReason {
	out := make(map[string]types.FailureReason)
	c.core.read(func() {
		for id, reason := range c.degraded {
			out[id] = reason
		}
	})
	return out
}

// History 返回转换历史副本
func (c *CentralMachine) History() []types.TransitionRecord {
	return c.core.transitionHistory()
}

// TransitionTo 执行聚合状态转换
//
// 规则：
//   - 进入 Failed 必须携带非零原因；
//   - 进入 Degraded 时 degraded 集合整体替换旧集合；
//   - 进入 Running 时故障原因与降级集合一并清除。
//
// 表外转换返回 *InvalidTransitionError，所有字段保持不变。
func (c *CentralMachine) TransitionTo(ctx context.Context, target types.CentralState, reason types.FailureReason, degraded map[string]types.FailureReason) error {
	if target == types.CentralFailed && reason == types.ReasonNone {
		return ErrFailureReasonRequired
	}

	from, err := c.core.transition(target, reason, func(types.CentralState) {
		switch target {
		case types.CentralFailed:
			c.reason = reason
		case types.CentralDegraded:
			c.degraded = make(map[string]types.FailureReason, len(degraded))
			for id, r := range degraded {
				c.degraded[id] = r
			}
		case types.CentralRunning:
			c.reason = types.ReasonNone
			c.degraded = make(map[string]types.FailureReason)
		}
	})
	if err != nil {
		return err
	}

	logger.Info("聚合状态转换",
		"from", from.String(),
		"to", target.String(),
		"reason", reason.String(),
		"degraded", len(degraded))

	// 转换已完整落地后再发布事件
	if c.bus != nil {
		c.bus.Publish(ctx, types.NewCentralStateChangedEvent(from, target, reason, c.Degraded()))
	}

	return nil
}
