// Package recovery 实现接口通道恢复协调器
package recovery

import (
	"go.uber.org/fx"

	"github.com/homecentral/go-homecentral/pkg/interfaces"
)

// ============================================================================
//                              Fx 模块
// ============================================================================

// Params Fx 模块输入参数
type Params struct {
	fx.In

	Config *Config `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Coordinator interfaces.RecoveryCoordinator
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("recovery",
		fx.Provide(ProvideCoordinator),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideCoordinator 提供 RecoveryCoordinator 实例
func ProvideCoordinator(params Params) Result {
	return Result{
		Coordinator: NewCoordinator(params.Config),
	}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In

	LC          fx.Lifecycle
	Coordinator interfaces.RecoveryCoordinator
	EventBus    interfaces.EventBus `optional:"true"`
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	if input.EventBus != nil {
		input.Coordinator.SetEventBus(input.EventBus)
	}
	input.LC.Append(fx.StopHook(func() {
		input.Coordinator.Shutdown()
	}))
}

// ============================================================================
//                              模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "recovery"
	// Description 模块描述
	Description = "恢复协调器模块，提供有界指数退避、并发受限的接口通道恢复"
)
