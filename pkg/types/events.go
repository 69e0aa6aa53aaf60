// Package types 定义 homecentral 公共类型
//
// 本文件定义事件相关类型。
package types

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
//                              Event - 事件接口
// ============================================================================

// Event 基础事件接口
//
// 事件一经发布即不可变，订阅者可在任意挂起点之后安全持有引用。
type Event interface {
	// Type 返回事件类型
	Type() string

	// Timestamp 返回事件时间戳
	Timestamp() time.Time
}

// Keyed 带窄播键的事件
//
// 实现本接口的事件可按键窄播：订阅时指定键的 handler
// 只接收键相等的事件。键通常是接口通道 ID。
type Keyed interface {
	// EventKey 返回窄播键
	EventKey() string
}

// BaseEvent 基础事件实现
type BaseEvent struct {
	EventType string
	EventID   string
	Time      time.Time
}

// Type 返回事件类型
func (e BaseEvent) Type() string {
	return e.EventType
}

// Timestamp 返回事件时间戳
func (e BaseEvent) Timestamp() time.Time {
	return e.Time
}

// ID 返回事件唯一标识
func (e BaseEvent) ID() string {
	return e.EventID
}

// NewBaseEvent 创建基础事件
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		EventID:   uuid.NewString(),
		Time:      time.Now(),
	}
}

// ============================================================================
//                              状态变更事件
// ============================================================================

// 事件类型常量
const (
	EventTypeCentralStateChanged = "central_state_changed"
	EventTypeClientStateChanged  = "client_state_changed"
	EventTypeRecoveryAttempt     = "recovery_attempt"
	EventTypeRecoverySweep       = "recovery_sweep"
)

// CentralStateChangedEvent 聚合状态变更事件
//
// 每次聚合状态机成功转换后恰好发布一次。
type CentralStateChangedEvent struct {
	BaseEvent

	// From 转换前状态
	From CentralState

	// To 转换后状态
	To CentralState

	// Reason 故障原因（进入 Failed 时非零）
	Reason FailureReason

	// Degraded 降级接口通道集合（进入 Degraded 时非空）
	Degraded map[string]FailureReason
}

// NewCentralStateChangedEvent 创建聚合状态变更事件
func NewCentralStateChangedEvent(from, to CentralState, reason FailureReason, degraded map[string]FailureReason) *CentralStateChangedEvent {
	return &CentralStateChangedEvent{
		BaseEvent: NewBaseEvent(EventTypeCentralStateChanged),
		From:      from,
		To:        to,
		Reason:    reason,
		Degraded:  degraded,
	}
}

// ClientStateChangedEvent 接口通道状态变更事件
//
// 按接口通道 ID 窄播。
type ClientStateChangedEvent struct {
	BaseEvent

	// InterfaceID 接口通道 ID
	InterfaceID string

	// From 转换前状态
	From ClientState

	// To 转换后状态
	To ClientState

	// Reason 故障原因（进入 Failed 时非零）
	Reason FailureReason
}

// EventKey 返回窄播键（接口通道 ID）
func (e *ClientStateChangedEvent) EventKey() string {
	return e.InterfaceID
}

// NewClientStateChangedEvent 创建接口通道状态变更事件
func NewClientStateChangedEvent(interfaceID string, from, to ClientState, reason FailureReason) *ClientStateChangedEvent {
	return &ClientStateChangedEvent{
		BaseEvent:   NewBaseEvent(EventTypeClientStateChanged),
		InterfaceID: interfaceID,
		From:        from,
		To:          to,
		Reason:      reason,
	}
}

// ============================================================================
//                              恢复事件
// ============================================================================

// RecoveryAttemptEvent 单次恢复尝试结果事件
//
// 按接口通道 ID 窄播。
type RecoveryAttemptEvent struct {
	BaseEvent

	// InterfaceID 接口通道 ID
	InterfaceID string

	// Result 尝试结果
	Result RecoveryResult

	// Stage 数据重载进度
	Stage DataLoadStage

	// Attempt 累计尝试次数（本次之后）
	Attempt int
}

// EventKey 返回窄播键（接口通道 ID）
func (e *RecoveryAttemptEvent) EventKey() string {
	return e.InterfaceID
}

// NewRecoveryAttemptEvent 创建恢复尝试事件
func NewRecoveryAttemptEvent(interfaceID string, result RecoveryResult, stage DataLoadStage, attempt int) *RecoveryAttemptEvent {
	return &RecoveryAttemptEvent{
		BaseEvent:   NewBaseEvent(EventTypeRecoveryAttempt),
		InterfaceID: interfaceID,
		Result:      result,
		Stage:       stage,
		Attempt:     attempt,
	}
}

// RecoverySweepEvent 一轮恢复扫描结果事件
type RecoverySweepEvent struct {
	BaseEvent

	// Result 扫描聚合结果
	Result RecoveryResult

	// Attempted 本轮实际尝试的接口通道 ID
	Attempted []string

	// Recovered 本轮恢复成功的接口通道 ID
	Recovered []string
}

// NewRecoverySweepEvent 创建恢复扫描事件
func NewRecoverySweepEvent(result RecoveryResult, attempted, recovered []string) *RecoverySweepEvent {
	return &RecoverySweepEvent{
		BaseEvent: NewBaseEvent(EventTypeRecoverySweep),
		Result:    result,
		Attempted: attempted,
		Recovered: recovered,
	}
}
