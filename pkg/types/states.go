// Package types 定义 homecentral 公共类型
//
// 本文件定义连接状态相关类型。
package types

import (
	"fmt"
	"time"
)

// ============================================================================
//                              CentralState - 聚合状态
// ============================================================================

// CentralState 中心实例聚合状态
//
// 反映所有接口通道的整体健康状况。状态只能沿转换表推进，
// 转换表定义见 internal/core/state。
type CentralState int

const (
	// CentralInit 已创建，未启动
	CentralInit CentralState = iota

	// CentralRunning 所有接口通道健康，正常服务
	CentralRunning

	// CentralDegraded 部分接口通道不健康，整体仍在服务
	CentralDegraded

	// CentralFailed 控制器整体不可用（所有恢复尝试已耗尽）
	CentralFailed

	// CentralStopped 已停止（终态）
	CentralStopped
)

// String 返回状态字符串表示
func (s CentralState) String() string {
	switch s {
	case CentralInit:
		return "init"
	case CentralRunning:
		return "running"
	case CentralDegraded:
		return "degraded"
	case CentralFailed:
		return "failed"
	case CentralStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ============================================================================
//                              ClientState - 接口通道状态
// ============================================================================

// ClientState 单个接口通道（RPC 客户端）状态
type ClientState int

const (
	// ClientInit 已创建，未连接
	ClientInit ClientState = iota

	// ClientConnected 已连接，正常收发
	ClientConnected

	// ClientDisconnected 连接已断开，等待恢复
	ClientDisconnected

	// ClientFailed 连接失败（恢复尝试已耗尽或不可恢复错误）
	ClientFailed

	// ClientStopped 已停止（终态）
	ClientStopped
)

// String 返回状态字符串表示
func (s ClientState) String() string {
	switch s {
	case ClientInit:
		return "init"
	case ClientConnected:
		return "connected"
	case ClientDisconnected:
		return "disconnected"
	case ClientFailed:
		return "failed"
	case ClientStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ============================================================================
//                              FailureReason - 故障原因
// ============================================================================

// FailureReason 故障原因标签
//
// 进入 Failed 状态时必须携带非零原因；进入 Running/Connected 时清除。
type FailureReason int

const (
	// ReasonNone 无故障（零值）
	ReasonNone FailureReason = iota

	// ReasonConnectionLost 连接丢失（传输层报告）
	ReasonConnectionLost

	// ReasonRPCError RPC 调用错误
	ReasonRPCError

	// ReasonTimeout 控制器响应超时
	ReasonTimeout

	// ReasonRecoveryExhausted 恢复尝试已耗尽
	ReasonRecoveryExhausted

	// ReasonShutdown 本地主动关闭
	ReasonShutdown
)

// String 返回原因字符串表示
func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonConnectionLost:
		return "connection_lost"
	case ReasonRPCError:
		return "rpc_error"
	case ReasonTimeout:
		return "timeout"
	case ReasonRecoveryExhausted:
		return "recovery_exhausted"
	case ReasonShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// ============================================================================
//                              TransitionRecord - 转换历史
// ============================================================================

// TransitionRecord 一条状态转换历史记录
//
// From/To 使用字符串表示，同一记录类型可服务于两种状态机。
type TransitionRecord struct {
	// From 转换前状态
	From string

	// To 转换后状态
	To string

	// Reason 故障原因（非 Failed 转换为 ReasonNone）
	Reason FailureReason

	// Time 转换发生时间
	Time time.Time
}
