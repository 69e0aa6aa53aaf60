// Package state 实现带转换表的连接状态机
package state

import (
	"go.uber.org/fx"

	"github.com/homecentral/go-homecentral/pkg/interfaces"
)

// ============================================================================
//                              Fx 模块
// ============================================================================

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Central         *CentralMachine
	CentralContract interfaces.CentralStateMachine
}

// Module 返回 Fx 模块
//
// 只提供聚合状态机；接口通道状态机在运行时按接口创建
// （NewClientMachine），不走容器。
func Module() fx.Option {
	return fx.Module("state",
		fx.Provide(ProvideCentralMachine),
	)
}

// ProvideCentralMachine 提供聚合状态机实例
func ProvideCentralMachine(bus interfaces.EventBus) Result {
	m := NewCentralMachine(bus)
	return Result{
		Central:         m,
		CentralContract: m,
	}
}

// ============================================================================
//                              模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "state"
	// Description 模块描述
	Description = "状态机模块，提供接口通道与聚合两级带转换表的连接状态机"
)
