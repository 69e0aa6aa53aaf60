// Package state 实现带转换表的连接状态机
//
// 本文件定义单个接口通道的状态机。
package state

import (
	"context"

	"github.com/homecentral/go-homecentral/pkg/interfaces"
	"github.com/homecentral/go-homecentral/pkg/types"
)

// ============================================================================
//                              转换表
// ============================================================================

// clientTable 接口通道状态转换表
//
// Stopped 是终态，无出边。
var clientTable = table[types.ClientState]{
	types.ClientInit:         {types.ClientConnected, types.ClientFailed, types.ClientStopped},
	types.ClientConnected:    {types.ClientDisconnected, types.ClientFailed, types.ClientStopped},
	types.ClientDisconnected: {types.ClientConnected, types.ClientFailed, types.ClientStopped},
	types.ClientFailed:       {types.ClientConnected, types.ClientDisconnected, types.ClientStopped},
	types.ClientStopped:      {},
}

// ============================================================================
//                              ClientMachine
// ============================================================================

// ClientMachine 单个接口通道的状态机
//
// 传输层观察到的连接变化汇报到这里；每次成功转换在共享总线上
// 发布一条按接口通道 ID 窄播的 ClientStateChangedEvent。
type ClientMachine struct {
	core        *machine[types.ClientState]
	bus         interfaces.EventBus // 可为 nil（不发布事件）
	interfaceID string

	// reason 进入 Failed 时设置，进入 Connected 时清除；受 core 锁保护
	reason types.FailureReason
}

// 确保实现接口
var _ interfaces.ClientStateMachine = (*ClientMachine)(nil)

// NewClientMachine 创建接口通道状态机
func NewClientMachine(interfaceID string, bus interfaces.EventBus) *ClientMachine {
	return &ClientMachine{
		core:        newMachine(interfaceID, types.ClientInit, clientTable),
		bus:         bus,
		interfaceID: interfaceID,
	}
}

// InterfaceID 返回接口通道 ID
func (c *ClientMachine) InterfaceID() string {
	return c.interfaceID
}

// State 返回当前状态
func (c *ClientMachine) State() types.ClientState {
	return c.core.state()
}

// CanTransitionTo 查询目标状态是否可达（纯查询，无副作用）
func (c *ClientMachine) CanTransitionTo(target types.ClientState) bool {
	return c.core.canTransitionTo(target)
}

// FailureReason 返回当前故障原因（无故障时为 ReasonNone）
func (c *ClientMachine) FailureReason() types.FailureReason {
	var r types.FailureReason
	c.core.read(func() {
		r = c.reason
	})
	return r
}

// History 返回转换历史副本
func (c *ClientMachine) History() []types.TransitionRecord {
	return c.core.transitionHistory()
}

// TransitionTo 执行状态转换
//
// 进入 Failed 必须携带非零原因；进入 Connected 清除原因。
// 表外转换返回 *InvalidTransitionError，当前状态不变。
func (c *ClientMachine) TransitionTo(ctx context.Context, target types.ClientState, reason types.FailureReason) error {
	if target == types.ClientFailed && reason == types.ReasonNone {
		return ErrFailureReasonRequired
	}

	from, err := c.core.transition(target, reason, func(types.ClientState) {
		switch target {
		case types.ClientFailed:
			c.reason = reason
		case types.ClientConnected:
			c.reason = types.ReasonNone
		}
	})
	if err != nil {
		return err
	}

	logger.Debug("接口通道状态转换",
		"interface", c.interfaceID,
		"from", from.String(),
		"to", target.String(),
		"reason", reason.String())

	// 转换已完整落地后再发布事件
	if c.bus != nil {
		c.bus.Publish(ctx, types.NewClientStateChangedEvent(c.interfaceID, from, target, reason))
	}

	return nil
}
