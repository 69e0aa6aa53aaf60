// Package types 定义 homecentral 公共类型
//
// 本文件定义恢复相关类型。
package types

import (
	"fmt"
	"time"
)

// ============================================================================
//                              RecoveryResult - 恢复结果
// ============================================================================

// RecoveryResult 恢复操作结果
//
// 互斥且穷尽：任何恢复操作的结果恰好是其中之一。
// 除取消信号外，恢复失败以结果值返回，不以 error 返回。
type RecoveryResult int

const (
	// ResultSuccess 全部成功
	ResultSuccess RecoveryResult = iota

	// ResultPartial 部分成功（重连成功但校验未通过，或扫描中部分接口失败）
	ResultPartial

	// ResultFailed 失败
	ResultFailed

	// ResultMaxRetries 尝试次数已耗尽
	ResultMaxRetries

	// ResultCancelled 已取消（协调器已关闭或上下文已取消）
	ResultCancelled
)

// String 返回结果字符串表示
func (r RecoveryResult) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultPartial:
		return "partial"
	case ResultFailed:
		return "failed"
	case ResultMaxRetries:
		return "max_retries"
	case ResultCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// ============================================================================
//                              DataLoadStage - 数据重载进度
// ============================================================================

// DataLoadStage 数据重载进度标签
//
// 描述一次恢复尝试进行到哪一步，仅用于诊断记录，
// 协调器不解释其顺序。
type DataLoadStage int

const (
	// StageBasic 基础连接已建立
	StageBasic DataLoadStage = iota

	// StageDevices 设备清单已重载
	StageDevices

	// StageParamsets 参数集描述已重载
	StageParamsets

	// StageValues 当前值已重载
	StageValues

	// StageFull 全部数据已重载
	StageFull
)

// String 返回进度字符串表示
func (s DataLoadStage) String() string {
	switch s {
	case StageBasic:
		return "basic"
	case StageDevices:
		return "devices"
	case StageParamsets:
		return "paramsets"
	case StageValues:
		return "values"
	case StageFull:
		return "full"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ============================================================================
//                              RecoverySnapshot - 恢复状态快照
// ============================================================================

// RecoveryAttempt 一次恢复尝试的历史记录
type RecoveryAttempt struct {
	// Result 尝试结果
	Result RecoveryResult

	// Stage 数据重载进度
	Stage DataLoadStage

	// Time 尝试时间
	Time time.Time

	// Err 失败原因描述（成功时为空）
	Err string
}

// RecoverySnapshot 接口通道恢复状态的只读快照
//
// 恢复状态由协调器独占持有和修改，调用方只能拿到快照副本。
type RecoverySnapshot struct {
	// InterfaceID 接口通道 ID
	InterfaceID string

	// AttemptCount 累计尝试次数（reset 前单调不减）
	AttemptCount int

	// ConsecutiveFailures 连续失败次数（完全成功时归零）
	ConsecutiveFailures int

	// LastAttempt 最近一次尝试时间（零值表示从未尝试）
	LastAttempt time.Time

	// LastSuccess 最近一次完全成功时间（零值表示从未成功）
	LastSuccess time.Time

	// CanRetry 是否仍可尝试（AttemptCount 未达上限）
	CanRetry bool

	// NextRetryDelay 下次尝试前的退避时长
	NextRetryDelay time.Duration

	// History 最近尝试历史（固定容量，先进先出淘汰）
	History []RecoveryAttempt
}
