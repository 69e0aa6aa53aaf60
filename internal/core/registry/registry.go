// Package registry 实现进程级实例注册表
//
// 注册表按名称持有运行中的控制器实例，供信号处理等进程级
// 关注点枚举并统一停止全部实例。所有读取返回快照副本。
package registry

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/homecentral/go-homecentral/pkg/interfaces"
	"github.com/homecentral/go-homecentral/pkg/lib/log"
)

var logger = log.Logger("core/registry")

// ============================================================================
//                              Registry
// ============================================================================

// Registry 实例注册表
type Registry struct {
	mu        sync.RWMutex
	instances map[string]interfaces.Instance
}

// New 创建实例注册表
func New() *Registry {
	return &Registry{
		instances: make(map[string]interfaces.Instance),
	}
}

// defaultRegistry 进程级共享注册表
var defaultRegistry = New()

// Default 返回进程级共享注册表
func Default() *Registry {
	return defaultRegistry
}

// Register 按名称注册实例
//
// 同名实例被新实例替换（后注册者胜出）。
func (r *Registry) Register(name string, inst interfaces.Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[name]; exists {
		logger.Warn("同名实例已存在，将被替换", "name", name)
	}
	r.instances[name] = inst
}

// Unregister 按名称注销实例，返回是否存在
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[name]; !exists {
		return false
	}
	delete(r.instances, name)
	return true
}

// Get 按名称查找实例
func (r *Registry) Get(name string) (interfaces.Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instances[name]
	return inst, ok
}

// Contains 查询名称是否已注册
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.instances[name]
	return ok
}

// Len 返回已注册实例数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// Names 返回已注册实例名称快照（按名称排序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values 返回已注册实例快照
//
// 快照与内部映射隔离，遍历期间的注册/注销不影响返回值。
func (r *Registry) Values() []interfaces.Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := make([]interfaces.Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		values = append(values, inst)
	}
	return values
}

// StopAll 停止全部已注册实例
//
// 对快照中的每个实例调用 Stop，单个失败不阻止其余实例停止，
// 全部错误合并返回。
func (r *Registry) StopAll(ctx context.Context) error {
	instances := r.Values()

	logger.Info("停止全部实例", "count", len(instances))

	var errs error
	for _, inst := range instances {
		if err := inst.Stop(ctx); err != nil {
			logger.Error("实例停止失败", "name", inst.Name(), "error", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
