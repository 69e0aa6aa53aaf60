// Package interfaces 定义 homecentral 公共接口
//
// 本文件定义恢复协调器及其协作方契约。
// 协作方（重连回调、校验回调、健康追踪器）由 RPC 传输层实现，
// 核心只通过这些窄契约消费它们。
package interfaces

import (
	"context"

	"github.com/homecentral/go-homecentral/pkg/types"
)

// ============================================================================
//                              协作方契约
// ============================================================================

// ReconnectFunc 重连回调
//
// 返回值表示重连是否成功；返回 error 表示意外失败（按失败记账）。
// 上下文取消产生的 error 原样向上传播，不按普通失败处理。
type ReconnectFunc func(ctx context.Context) (bool, error)

// VerifyFunc 数据重载校验回调
//
// 返回值表示该接口通道重载的数据是否完整。
// 缺省（nil）表示仅信任重连结果。
type VerifyFunc func(ctx context.Context) (bool, error)

// ReconnectProvider 按接口通道 ID 提供重连回调
//
// 恢复扫描期间对每个故障接口调用一次。返回 nil 表示
// 该接口当前无法重连，按失败记账。
type ReconnectProvider func(interfaceID string) ReconnectFunc

// HealthTracker 健康快照提供方
//
// 暴露调用时刻的故障接口通道列表；协调器只读不写。
type HealthTracker interface {
	// FailedInterfaces 返回当前故障的接口通道 ID 列表
	FailedInterfaces() []string
}

// CentralStateMachine 聚合状态机契约
//
// 协调器通过本契约驱动聚合状态转换；在不确定当前状态时
// 必须先用 CanTransitionTo 探测。
type CentralStateMachine interface {
	// State 返回当前聚合状态
	State() types.CentralState

	// CanTransitionTo 查询目标状态是否可达（纯查询，无副作用）
	CanTransitionTo(target types.CentralState) bool

	// TransitionTo 执行状态转换
	TransitionTo(ctx context.Context, target types.CentralState, reason types.FailureReason, degraded map[string]types.FailureReason) error
}

// ============================================================================
//                              RecoveryCoordinator
// ============================================================================

// RecoveryCoordinator 恢复协调器接口
//
// 驱动故障接口通道的修复：有界指数退避、分阶段校验、
// 可取消且并发受限的执行。
type RecoveryCoordinator interface {
	// RegisterInterface 注册接口通道（幂等）
	RegisterInterface(interfaceID string) types.RecoverySnapshot

	// UnregisterInterface 注销接口通道
	UnregisterInterface(interfaceID string)

	// ResetInterface 就地清零接口通道的恢复记账
	ResetInterface(interfaceID string)

	// RecoveryStateOf 返回接口通道恢复状态快照
	RecoveryStateOf(interfaceID string) (types.RecoverySnapshot, bool)

	// RecoverClient 恢复单个接口通道
	//
	// error 仅在取消信号传播时非 nil，其余结局以结果值返回。
	RecoverClient(ctx context.Context, interfaceID string, reconnect ReconnectFunc, verify VerifyFunc) (types.RecoveryResult, error)

	// RecoverAllFailed 对全部故障接口执行一轮恢复扫描
	RecoverAllFailed(ctx context.Context, provider ReconnectProvider) (types.RecoveryResult, error)

	// HeartbeatRetry 心跳重试
	//
	// 仅当聚合状态机处于 Failed 时执行扫描，否则直接返回 Success。
	HeartbeatRetry(ctx context.Context, provider ReconnectProvider) (types.RecoveryResult, error)

	// RunHeartbeat 心跳重试循环，阻塞直到上下文取消或协调器关闭
	RunHeartbeat(ctx context.Context, provider ReconnectProvider)

	// Shutdown 置关闭标志；此后所有入口立即返回 Cancelled
	Shutdown()

	// SetHealthTracker 后期绑定健康追踪器
	SetHealthTracker(tracker HealthTracker)

	// SetStateMachine 后期绑定聚合状态机
	SetStateMachine(machine CentralStateMachine)

	// SetEventBus 后期绑定事件总线
	SetEventBus(bus EventBus)
}
