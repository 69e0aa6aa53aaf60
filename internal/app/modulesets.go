// Package app 提供模块集合清单
//
// modulesets.go 集中维护"哪些模块属于哪个层级"，是门面组装的唯一模块来源。
// 这样模块归属清单统一在 internal/app，避免双入口漂移。
package app

import (
	"go.uber.org/fx"

	"github.com/homecentral/go-homecentral/internal/core/eventbus"
	"github.com/homecentral/go-homecentral/internal/core/recovery"
	"github.com/homecentral/go-homecentral/internal/core/registry"
	"github.com/homecentral/go-homecentral/internal/core/state"
)

// ============================================================================
//                              固定必选模块集合
// ============================================================================

// FoundationModules 基础层模块组合
//
// 包含事件总线，是所有其他模块的解耦基础。
// 这些模块始终加载，不受配置开关控制。
func FoundationModules() fx.Option {
	return fx.Options(
		eventbus.Module(),
	)
}

// LifecycleModules 生命周期层模块组合
//
// 包含聚合状态机与恢复协调器。
// 这些模块始终加载，不受配置开关控制。
func LifecycleModules() fx.Option {
	return fx.Options(
		state.Module(),
		recovery.Module(),
	)
}

// ProcessModules 进程层模块组合
//
// 包含进程级实例注册表。
func ProcessModules() fx.Option {
	return fx.Options(
		registry.Module(),
	)
}

// ============================================================================
//                              组合模块集合（供测试/特殊场景使用）
// ============================================================================

// CoreModules 核心模块组合
//
// 包含连接生命周期核心所必需的模块（Foundation + Lifecycle）。
func CoreModules() fx.Option {
	return fx.Options(
		FoundationModules(),
		LifecycleModules(),
	)
}

// AllModules 所有模块组合
//
// 包含全部功能模块。主要用于测试或需要完整功能的场景。
func AllModules() fx.Option {
	return fx.Options(
		FoundationModules(),
		LifecycleModules(),
		ProcessModules(),
	)
}
