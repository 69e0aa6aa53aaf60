package homecentral

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/homecentral/go-homecentral/config"
	"github.com/homecentral/go-homecentral/internal/core/registry"
	"github.com/homecentral/go-homecentral/internal/core/state"
	"github.com/homecentral/go-homecentral/pkg/interfaces"
	"github.com/homecentral/go-homecentral/pkg/lib/log"
	"github.com/homecentral/go-homecentral/pkg/types"
)

var logger = log.Logger("homecentral")

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期常量
// ════════════════════════════════════════════════════════════════════════════

const (
	// startTimeout 启动超时（Fx App Start）
	startTimeout = 30 * time.Second

	// stopTimeout 停止超时（Fx App Stop）
	stopTimeout = 10 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              Central
// ════════════════════════════════════════════════════════════════════════════

// Central 控制器实例
//
// Central 是用户与控制器交互的主入口。
// 它是一个门面（Facade），聚合了所有内部组件。
//
// 架构层次：
//   - API Layer: Central (本层，用户直接交互)
//   - Core Layer: EventBus, StateMachine, RecoveryCoordinator, Registry
//
// 可以在 Start 之后随时添加或移除接口通道；Stop 之后实例不可复用。
type Central struct {
	mu sync.Mutex

	name string
	cfg  *config.Config

	// app Fx 应用，聚合全部内部模块
	app fxApp

	// 由 Fx 注入的组件
	bus         interfaces.EventBus
	machine     *state.CentralMachine
	coordinator interfaces.RecoveryCoordinator
	registry    *registry.Registry

	// clients 接口通道状态机，按接口 ID 索引
	clients map[string]*state.ClientMachine

	// 协作方（可选）
	health    interfaces.HealthTracker
	reconnect interfaces.ReconnectProvider

	// 心跳循环
	heartbeatCancel context.CancelFunc
	heartbeatDone   chan struct{}

	started bool
	closed  bool
}

// 确保实现接口
var _ interfaces.Instance = (*Central)(nil)

// fxApp 抽象 *fx.App 的生命周期，便于测试替换
type fxApp interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// New 创建控制器实例
//
// name 为实例名称，用于注册表与日志标识；为空时取配置中的名称。
// 实例创建后处于 Init 状态，必须调用 Start 才能使用。
func New(name string, opts ...Option) (*Central, error) {
	var o options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg := o.config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := config.ApplyPreset(cfg, o.preset); err != nil {
		return nil, err
	}
	if name != "" {
		cfg.Central.Name = name
	}
	cfg.Central.Interfaces = append(cfg.Central.Interfaces, o.interfaceIDs...)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	applyLogConfig(cfg.Log)

	c := &Central{
		name:      cfg.Central.Name,
		cfg:       cfg,
		clients:   make(map[string]*state.ClientMachine),
		health:    o.health,
		reconnect: o.reconnect,
	}

	app, err := buildFxApp(cfg, c)
	if err != nil {
		return nil, err
	}
	c.app = app

	return c, nil
}

// Start 快捷启动函数
//
// 创建实例并立即启动。
// 等价于 New() + Start()。
func Start(ctx context.Context, name string, opts ...Option) (*Central, error) {
	c, err := New(name, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// applyLogConfig 应用日志配置
func applyLogConfig(cfg config.LogConfig) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		log.SetDefault(log.NewJSON(os.Stderr, opts))
		return
	}
	log.SetDefault(log.New(os.Stderr, opts))
}

// Name 返回实例名称
func (c *Central) Name() string {
	return c.name
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期管理
// ════════════════════════════════════════════════════════════════════════════

// Start 启动实例
//
// 启动流程：
//  1. 启动 Fx App，初始化所有组件并完成注入
//  2. 绑定协调器协作方（健康追踪器、聚合状态机）
//  3. 聚合状态 Init → Running
//  4. 注册配置中的接口通道
//  5. 注册到进程级注册表，按需启动心跳循环
func (c *Central) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCentralClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}

	logger.Info("正在启动实例", "name", c.name)

	initCtx, initCancel := context.WithTimeout(ctx, startTimeout)
	defer initCancel()

	if err := c.app.Start(initCtx); err != nil {
		logger.Error("实例启动失败", "name", c.name, "error", err)
		return fmt.Errorf("start failed: %w", err)
	}

	// 协调器协作方绑定
	c.coordinator.SetStateMachine(c.machine)
	if c.health != nil {
		c.coordinator.SetHealthTracker(c.health)
	} else {
		c.coordinator.SetHealthTracker(&failedClientTracker{central: c})
	}

	// Init → Running
	if err := c.machine.TransitionTo(ctx, types.CentralRunning, types.ReasonNone, nil); err != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
		defer stopCancel()
		_ = c.app.Stop(stopCtx)
		return err
	}

	// 注册配置中的接口通道
	for _, id := range c.cfg.Central.Interfaces {
		c.addInterfaceLocked(id)
	}

	c.registry.Register(c.name, c)

	// 心跳循环（需要重连回调提供方）
	if c.cfg.Recovery.HeartbeatEnabled && c.reconnect != nil {
		hbCtx, hbCancel := context.WithCancel(context.Background())
		c.heartbeatCancel = hbCancel
		c.heartbeatDone = make(chan struct{})
		go func() {
			defer close(c.heartbeatDone)
			c.coordinator.RunHeartbeat(hbCtx, c.reconnect)
		}()
	}

	c.started = true
	logger.Info("实例已启动", "name", c.name, "interfaces", len(c.clients))
	return nil
}

// Stop 停止实例
//
// 停止流程：
//  1. 停止心跳循环并等待其退出
//  2. 全部接口通道与聚合状态转换到 Stopped
//  3. 关闭恢复协调器、停止 Fx App（关闭事件总线）
//  4. 从进程级注册表注销
//
// 幂等：重复调用返回 nil。单步失败不阻止后续步骤，错误合并返回。
func (c *Central) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	started := c.started
	c.started = false
	heartbeatCancel := c.heartbeatCancel
	heartbeatDone := c.heartbeatDone
	c.mu.Unlock()

	if !started {
		return nil
	}

	logger.Info("正在停止实例", "name", c.name)

	// 心跳循环可能正经由健康追踪器取 c.mu，须在锁外等待其退出
	if heartbeatCancel != nil {
		heartbeatCancel()
		<-heartbeatDone
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs error

	// 接口通道先于聚合状态停止
	for _, client := range c.clients {
		if client.CanTransitionTo(types.ClientStopped) {
			if err := client.TransitionTo(ctx, types.ClientStopped, types.ReasonShutdown); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	if c.machine.CanTransitionTo(types.CentralStopped) {
		if err := c.machine.TransitionTo(ctx, types.CentralStopped, types.ReasonShutdown, nil); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	c.coordinator.Shutdown()

	stopCtx, stopCancel := context.WithTimeout(ctx, stopTimeout)
	defer stopCancel()
	if err := c.app.Stop(stopCtx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("stop failed: %w", err))
	}

	c.registry.Unregister(c.name)

	logger.Info("实例已停止", "name", c.name)
	return errs
}

// ════════════════════════════════════════════════════════════════════════════
//                              接口通道管理
// ════════════════════════════════════════════════════════════════════════════

// AddInterface 注册接口通道
//
// 为接口创建独立的状态机并在协调器中建立恢复记账。
func (c *Central) AddInterface(_ context.Context, interfaceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCentralClosed
	}
	if !c.started {
		return ErrNotStarted
	}
	if interfaceID == "" {
		return fmt.Errorf("interface id must not be empty")
	}
	if _, exists := c.clients[interfaceID]; exists {
		return ErrInterfaceExists
	}

	c.addInterfaceLocked(interfaceID)
	logger.Info("接口通道已注册", "name", c.name, "interface", interfaceID)
	return nil
}

// addInterfaceLocked 创建状态机并建立恢复记账，须持有 c.mu
func (c *Central) addInterfaceLocked(interfaceID string) {
	if _, exists := c.clients[interfaceID]; exists {
		return
	}
	c.clients[interfaceID] = state.NewClientMachine(interfaceID, c.bus)
	c.coordinator.RegisterInterface(interfaceID)
}

// RemoveInterface 注销接口通道
//
// 状态机先转换到 Stopped（可达时），随后销毁其恢复记账。
func (c *Central) RemoveInterface(ctx context.Context, interfaceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	client, exists := c.clients[interfaceID]
	if !exists {
		return ErrInterfaceNotFound
	}

	var errs error
	if client.CanTransitionTo(types.ClientStopped) {
		if err := client.TransitionTo(ctx, types.ClientStopped, types.ReasonShutdown); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	delete(c.clients, interfaceID)
	c.coordinator.UnregisterInterface(interfaceID)

	logger.Info("接口通道已注销", "name", c.name, "interface", interfaceID)
	return errs
}

// Client 按 ID 查找接口通道状态机
func (c *Central) Client(interfaceID string) (interfaces.ClientStateMachine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	client, ok := c.clients[interfaceID]
	if !ok {
		return nil, false
	}
	return client, true
}

// Interfaces 返回已注册接口通道 ID 快照（按 ID 排序）
func (c *Central) Interfaces() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.clients))
	for id := range c.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ════════════════════════════════════════════════════════════════════════════
//                              组件访问
// ════════════════════════════════════════════════════════════════════════════

// EventBus 返回事件总线
func (c *Central) EventBus() interfaces.EventBus {
	return c.bus
}

// StateMachine 返回聚合状态机
func (c *Central) StateMachine() interfaces.CentralStateMachine {
	return c.machine
}

// State 返回当前聚合状态
func (c *Central) State() types.CentralState {
	return c.machine.State()
}

// Recovery 返回恢复协调器
func (c *Central) Recovery() interfaces.RecoveryCoordinator {
	return c.coordinator
}

// RecoverAll 对全部故障接口执行一轮恢复扫描
//
// 使用 WithReconnectProvider 配置的提供方；未配置时扫描中的
// 每个接口按失败记账。
func (c *Central) RecoverAll(ctx context.Context) (types.RecoveryResult, error) {
	c.mu.Lock()
	if c.closed || !c.started {
		c.mu.Unlock()
		return types.ResultCancelled, nil
	}
	provider := c.reconnect
	coordinator := c.coordinator
	c.mu.Unlock()

	return coordinator.RecoverAllFailed(ctx, provider)
}

// ════════════════════════════════════════════════════════════════════════════
//                              默认健康追踪器
// ════════════════════════════════════════════════════════════════════════════

// failedClientTracker 从接口通道状态机推导故障列表
//
// 未配置外部健康追踪器时的缺省实现：State() == Failed 的接口
// 视为故障。
type failedClientTracker struct {
	central *Central
}

func (t *failedClientTracker) FailedInterfaces() []string {
	t.central.mu.Lock()
	defer t.central.mu.Unlock()

	var failed []string
	for id, client := range t.central.clients {
		if client.State() == types.ClientFailed {
			failed = append(failed, id)
		}
	}
	sort.Strings(failed)
	return failed
}
