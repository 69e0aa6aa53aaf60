package homecentral

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/homecentral/go-homecentral/config"
	"github.com/homecentral/go-homecentral/internal/app"
	"github.com/homecentral/go-homecentral/internal/core/recovery"
	"github.com/homecentral/go-homecentral/internal/core/registry"
	"github.com/homecentral/go-homecentral/internal/core/state"
	"github.com/homecentral/go-homecentral/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 组装所有内部模块：
//  1. EventBus: 事件总线（其余组件经由它解耦）
//  2. State: 聚合状态机
//  3. Recovery: 恢复协调器
//  4. Registry: 进程级实例注册表
//
// 组件经 injectComponents 注入到 Central 门面。
func buildFxApp(cfg *config.Config, central *Central) (*fx.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	recoveryCfg := recovery.DefaultConfig().
		WithMaxAttempts(cfg.Recovery.MaxAttempts).
		WithRetryDelays(cfg.Recovery.BaseRetryDelay.Duration(), cfg.Recovery.MaxRetryDelay.Duration()).
		WithMaxConcurrent(cfg.Recovery.MaxConcurrent).
		WithHeartbeatInterval(cfg.Recovery.HeartbeatInterval.Duration())

	modules := []fx.Option{
		// 配置注入
		fx.Supply(recoveryCfg),

		// 核心模块（清单见 internal/app/modulesets.go）
		app.AllModules(),

		// Central 组件注入
		fx.Invoke(injectComponents(central)),

		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	}

	return fx.New(modules...), nil
}

// centralInjectParams Central 组件注入参数
type centralInjectParams struct {
	fx.In

	Bus         interfaces.EventBus
	Machine     *state.CentralMachine
	Coordinator interfaces.RecoveryCoordinator
	Registry    *registry.Registry
}

// injectComponents 创建 Central 组件注入函数
func injectComponents(central *Central) interface{} {
	return func(p centralInjectParams) {
		central.bus = p.Bus
		central.machine = p.Machine
		central.coordinator = p.Coordinator
		central.registry = p.Registry
	}
}
