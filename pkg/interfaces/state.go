// Package interfaces 定义 homecentral 公共接口
//
// 本文件定义接口通道状态机契约。
package interfaces

import (
	"context"

	"github.com/homecentral/go-homecentral/pkg/types"
)

// ClientStateMachine 接口通道状态机契约
//
// 每个接口通道持有一台独立的状态机，转换按枚举表裁决。
type ClientStateMachine interface {
	// InterfaceID 返回接口通道 ID
	InterfaceID() string

	// State 返回当前状态
	State() types.ClientState

	// CanTransitionTo 查询目标状态是否可达（纯查询，无副作用）
	CanTransitionTo(target types.ClientState) bool

	// FailureReason 返回最近一次进入 Failed 的原因
	FailureReason() types.FailureReason

	// History 返回有界转换历史快照
	History() []types.TransitionRecord

	// TransitionTo 执行状态转换
	//
	// 目标为 Failed 时必须给出非零 reason。
	TransitionTo(ctx context.Context, target types.ClientState, reason types.FailureReason) error
}
