// Package recovery 实现接口通道恢复协调器
package recovery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/homecentral/go-homecentral/pkg/interfaces"
	"github.com/homecentral/go-homecentral/pkg/lib/log"
	"github.com/homecentral/go-homecentral/pkg/types"
)

var logger = log.Logger("core/recovery")

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrNoReconnectFunc 接口通道缺少重连回调
	ErrNoReconnectFunc = errors.New("no reconnect func for interface")

	// ErrReconnectRejected 重连回调报告失败
	ErrReconnectRejected = errors.New("reconnect reported failure")

	// ErrVerifyIncomplete 校验回调报告数据不完整
	ErrVerifyIncomplete = errors.New("verify reported incomplete data")
)

// ============================================================================
//                              Coordinator
// ============================================================================

// Coordinator 恢复协调器
//
// 持有逐接口恢复记账，驱动故障接口修复并按聚合结局转换聚合
// 状态机。健康追踪器与聚合状态机后期绑定，协调器可先行构造。
type Coordinator struct {
	mu sync.Mutex

	// 配置
	config *Config

	// clk 可注入时钟（测试使用 clock.Mock）
	clk clock.Clock

	// 依赖组件（后期绑定）
	bus     interfaces.EventBus
	health  interfaces.HealthTracker
	central interfaces.CentralStateMachine

	// states 逐接口恢复记账，受 mu 保护
	states map[string]*recoveryState

	// closed 一次性关闭标志，所有公有入口开头检查
	closed atomic.Bool
}

// 确保实现接口
var _ interfaces.RecoveryCoordinator = (*Coordinator)(nil)

// NewCoordinator 创建恢复协调器
func NewCoordinator(config *Config) *Coordinator {
	if config == nil {
		config = DefaultConfig()
	}
	// Validate 修正无效值为默认值（不会返回错误）
	_ = config.Validate()

	return &Coordinator{
		config: config,
		clk:    clock.New(),
		states: make(map[string]*recoveryState),
	}
}

// ============================================================================
//                              依赖绑定
// ============================================================================

// SetHealthTracker 后期绑定健康追踪器
func (c *Coordinator) SetHealthTracker(tracker interfaces.HealthTracker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health = tracker
}

// SetStateMachine 后期绑定聚合状态机
func (c *Coordinator) SetStateMachine(machine interfaces.CentralStateMachine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.central = machine
}

// SetEventBus 后期绑定事件总线
func (c *Coordinator) SetEventBus(bus interfaces.EventBus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bus = bus
}

// ============================================================================
//                              接口通道记账管理
// ============================================================================

// RegisterInterface 注册接口通道（幂等）
//
// 重复注册返回同一份记账的快照，不会清零已有计数。
func (c *Coordinator) RegisterInterface(interfaceID string) types.RecoverySnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[interfaceID]
	if !ok {
		if c.closed.Load() {
			// 关闭后不再产生新记账
			return types.RecoverySnapshot{InterfaceID: interfaceID}
		}
		st = newRecoveryState(interfaceID)
		c.states[interfaceID] = st
		logger.Debug("接口通道已注册", "interface", interfaceID)
	}

	return st.snapshot(c.config)
}

// UnregisterInterface 注销接口通道，销毁其记账
//
// 关闭后为无操作，已有记账原样保留。
func (c *Coordinator) UnregisterInterface(interfaceID string) {
	if c.closed.Load() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, interfaceID)
}

// ResetInterface 就地清零接口通道的恢复记账
//
// 关闭后为无操作，已有记账原样保留。
func (c *Coordinator) ResetInterface(interfaceID string) {
	if c.closed.Load() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.states[interfaceID]; ok {
		st.reset()
	}
}

// RecoveryStateOf 返回接口通道恢复状态快照
func (c *Coordinator) RecoveryStateOf(interfaceID string) (types.RecoverySnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[interfaceID]
	if !ok {
		return types.RecoverySnapshot{}, false
	}
	return st.snapshot(c.config), true
}

// ============================================================================
//                              单接口恢复
// ============================================================================

// RecoverClient 恢复单个接口通道
//
// 结局规则：
//   - 协调器已关闭或上下文已取消 → Cancelled（后者附带原 error）；
//   - 尝试次数已耗尽 → MaxRetries，不调用 reconnect；
//   - reconnect 报错或返回 false → Failed，按失败记账；
//   - reconnect 成功、verify 报错或返回 false → Partial，
//     attemptCount 递增但 consecutiveFailures 保持不变；
//   - verify 缺省或通过 → Success，consecutiveFailures 归零。
//
// 取消信号（context.Canceled/DeadlineExceeded）原样向上传播，
// 不按普通失败记账。
func (c *Coordinator) RecoverClient(ctx context.Context, interfaceID string, reconnect interfaces.ReconnectFunc, verify interfaces.VerifyFunc) (types.RecoveryResult, error) {
	if c.closed.Load() {
		return types.ResultCancelled, nil
	}
	if err := ctx.Err(); err != nil {
		return types.ResultCancelled, err
	}

	c.mu.Lock()
	st, ok := c.states[interfaceID]
	if !ok {
		// 未注册的接口懒注册，避免丢失记账
		st = newRecoveryState(interfaceID)
		c.states[interfaceID] = st
	}
	canRetry := st.canRetry(c.config.MaxAttempts)
	c.mu.Unlock()

	if !canRetry {
		logger.Warn("接口通道恢复尝试已耗尽",
			"interface", interfaceID,
			"max_attempts", c.config.MaxAttempts)
		return types.ResultMaxRetries, nil
	}

	if reconnect == nil {
		c.recordAttempt(ctx, interfaceID, types.ResultFailed, types.StageBasic, ErrNoReconnectFunc)
		return types.ResultFailed, nil
	}

	// 重连
	ok, err := reconnect(ctx)
	if err != nil {
		if isCancellation(err) {
			return types.ResultCancelled, err
		}
		logger.Warn("接口通道重连失败", "interface", interfaceID, "error", err)
		c.recordAttempt(ctx, interfaceID, types.ResultFailed, types.StageBasic, err)
		return types.ResultFailed, nil
	}
	if !ok {
		c.recordAttempt(ctx, interfaceID, types.ResultFailed, types.StageBasic, ErrReconnectRejected)
		return types.ResultFailed, nil
	}

	// 数据重载校验
	if verify != nil {
		verified, verr := verify(ctx)
		if verr != nil && isCancellation(verr) {
			return types.ResultCancelled, verr
		}
		if verr != nil || !verified {
			if verr == nil {
				verr = ErrVerifyIncomplete
			}
			logger.Warn("接口通道数据重载校验未通过",
				"interface", interfaceID,
				"error", verr)
			c.recordAttempt(ctx, interfaceID, types.ResultPartial, types.StageBasic, verr)
			return types.ResultPartial, nil
		}
	}

	logger.Info("接口通道恢复成功", "interface", interfaceID)
	c.recordAttempt(ctx, interfaceID, types.ResultSuccess, types.StageFull, nil)
	return types.ResultSuccess, nil
}

// ============================================================================
//                              恢复扫描
// ============================================================================

// RecoverAllFailed 对全部故障接口执行一轮恢复扫描
//
// 从健康快照读取故障接口列表；对每个未耗尽的接口执行 RecoverClient，
// 每个接口先等待自己的退避时长，并发数受 MaxConcurrent 限制。
// 聚合结局：
//   - 全部耗尽且本轮无成功 → 聚合状态转 Failed，返回 MaxRetries；
//   - 全部尝试成功 → 聚合状态转 Running，返回 Success；
//   - 部分成功 → 聚合状态转 Degraded，返回 Partial；
//   - 全部失败（未耗尽）→ 聚合状态转 Degraded，返回 Failed。
func (c *Coordinator) RecoverAllFailed(ctx context.Context, provider interfaces.ReconnectProvider) (types.RecoveryResult, error) {
	if c.closed.Load() {
		return types.ResultCancelled, nil
	}
	if err := ctx.Err(); err != nil {
		return types.ResultCancelled, err
	}

	c.mu.Lock()
	health := c.health
	c.mu.Unlock()

	if health == nil {
		logger.Error("未配置健康追踪器，无法执行恢复扫描")
		return types.ResultFailed, nil
	}

	failed := health.FailedInterfaces()
	if len(failed) == 0 {
		return types.ResultSuccess, nil
	}

	logger.Info("开始恢复扫描", "failed", len(failed))

	// 划分已耗尽与可尝试的接口
	var attemptable []string
	delays := make(map[string]int)
	c.mu.Lock()
	for _, id := range failed {
		st, ok := c.states[id]
		if !ok {
			st = newRecoveryState(id)
			c.states[id] = st
		}
		if !st.canRetry(c.config.MaxAttempts) {
			continue
		}
		attemptable = append(attemptable, id)
		delays[id] = st.consecutiveFailures
	}
	c.mu.Unlock()

	// 全部耗尽：控制器整体不可恢复
	if len(attemptable) == 0 {
		logger.Warn("全部故障接口恢复尝试已耗尽", "failed", len(failed))
		c.transitionCentral(ctx, types.CentralFailed, types.ReasonRecoveryExhausted, nil)
		c.publishSweep(ctx, types.ResultMaxRetries, nil, nil)
		return types.ResultMaxRetries, nil
	}

	// 并发受限地执行恢复，每个接口先等待自己的退避时长
	results := make(map[string]types.RecoveryResult, len(attemptable))
	var resultsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.MaxConcurrent)

	for _, id := range attemptable {
		id := id
		g.Go(func() error {
			delay := NextRetryDelay(c.config.BaseRetryDelay, c.config.MaxRetryDelay, delays[id])
			if delay > 0 {
				timer := c.clk.Timer(delay)
				select {
				case <-timer.C:
				case <-gctx.Done():
					timer.Stop()
					return gctx.Err()
				}
			}

			var reconnect interfaces.ReconnectFunc
			if provider != nil {
				reconnect = provider(id)
			}

			result, err := c.RecoverClient(gctx, id, reconnect, nil)
			if err != nil {
				return err
			}

			resultsMu.Lock()
			results[id] = result
			resultsMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// 取消信号原样向上传播
		return types.ResultCancelled, err
	}

	return c.finishSweep(ctx, results), nil
}

// finishSweep 聚合本轮扫描结果并驱动聚合状态机
func (c *Coordinator) finishSweep(ctx context.Context, results map[string]types.RecoveryResult) types.RecoveryResult {
	attempted := make([]string, 0, len(results))
	recovered := make([]string, 0, len(results))
	stuck := make(map[string]types.FailureReason)

	for id, result := range results {
		attempted = append(attempted, id)
		switch result {
		case types.ResultSuccess:
			recovered = append(recovered, id)
		case types.ResultMaxRetries:
			stuck[id] = types.ReasonRecoveryExhausted
		default:
			stuck[id] = types.ReasonConnectionLost
		}
	}

	var overall types.RecoveryResult
	switch {
	case len(recovered) == len(attempted):
		overall = types.ResultSuccess
		c.transitionCentral(ctx, types.CentralRunning, types.ReasonNone, nil)
	case len(recovered) > 0:
		overall = types.ResultPartial
		c.transitionCentral(ctx, types.CentralDegraded, types.ReasonNone, stuck)
	default:
		overall = types.ResultFailed
		c.transitionCentral(ctx, types.CentralDegraded, types.ReasonNone, stuck)
	}

	logger.Info("恢复扫描完成",
		"result", overall.String(),
		"attempted", len(attempted),
		"recovered", len(recovered))

	c.publishSweep(ctx, overall, attempted, recovered)
	return overall
}

// ============================================================================
//                              心跳重试
// ============================================================================

// HeartbeatRetry 心跳重试
//
// 仅当聚合状态机处于 Failed（控制器整体不可用）时执行恢复扫描，
// 其余状态下为无操作，直接返回 Success。用于以固定间隔低成本探测
// 完全宕机的控制器，避免全量恢复扫描的开销。
func (c *Coordinator) HeartbeatRetry(ctx context.Context, provider interfaces.ReconnectProvider) (types.RecoveryResult, error) {
	if c.closed.Load() {
		return types.ResultCancelled, nil
	}
	if err := ctx.Err(); err != nil {
		return types.ResultCancelled, err
	}

	c.mu.Lock()
	central := c.central
	c.mu.Unlock()

	if central == nil || central.State() != types.CentralFailed {
		return types.ResultSuccess, nil
	}

	logger.Debug("心跳重试：控制器处于 Failed，执行恢复扫描")
	return c.RecoverAllFailed(ctx, provider)
}

// RunHeartbeat 心跳重试循环
//
// 按固定间隔调用 HeartbeatRetry，直到上下文取消或协调器关闭。
// 通常由顶层实例在 Start 时以 goroutine 启动。
func (c *Coordinator) RunHeartbeat(ctx context.Context, provider interfaces.ReconnectProvider) {
	ticker := c.clk.Ticker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	logger.Info("心跳重试循环已启动", "interval", c.config.HeartbeatInterval)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("心跳重试循环退出", "reason", ctx.Err())
			return
		case <-ticker.C:
			if c.closed.Load() {
				logger.Debug("心跳重试循环退出", "reason", "coordinator shut down")
				return
			}
			if _, err := c.HeartbeatRetry(ctx, provider); err != nil {
				logger.Debug("心跳重试循环退出", "reason", err)
				return
			}
		}
	}
}

// ============================================================================
//                              关闭
// ============================================================================

// Shutdown 置一次性关闭标志
//
// 此后所有公有入口立即返回 Cancelled，不再产生任何记账或状态变更；
// 进行中的回调调用不被强行中断，由其自身的挂起点观察取消。
func (c *Coordinator) Shutdown() {
	if c.closed.CompareAndSwap(false, true) {
		logger.Info("恢复协调器已关闭")
	}
}

// IsShutdown 查询关闭标志
func (c *Coordinator) IsShutdown() bool {
	return c.closed.Load()
}

// ============================================================================
//                              内部方法
// ============================================================================

// recordAttempt 记录一次尝试并发布尝试事件
func (c *Coordinator) recordAttempt(ctx context.Context, interfaceID string, result types.RecoveryResult, stage types.DataLoadStage, err error) {
	c.mu.Lock()
	st, ok := c.states[interfaceID]
	if !ok {
		c.mu.Unlock()
		return
	}
	st.record(result, stage, c.clk.Now(), err)
	attempt := st.attemptCount
	bus := c.bus
	c.mu.Unlock()

	if bus != nil {
		bus.Publish(ctx, types.NewRecoveryAttemptEvent(interfaceID, result, stage, attempt))
	}
}

// publishSweep 发布扫描结果事件
func (c *Coordinator) publishSweep(ctx context.Context, result types.RecoveryResult, attempted, recovered []string) {
	c.mu.Lock()
	bus := c.bus
	c.mu.Unlock()

	if bus != nil {
		bus.Publish(ctx, types.NewRecoverySweepEvent(result, attempted, recovered))
	}
}

// transitionCentral 驱动聚合状态机转换
//
// 协调器不掌控聚合状态机的当前状态，转换前必须用 CanTransitionTo
// 探测，不可达时跳过而非报错。
func (c *Coordinator) transitionCentral(ctx context.Context, target types.CentralState, reason types.FailureReason, degraded map[string]types.FailureReason) {
	c.mu.Lock()
	central := c.central
	c.mu.Unlock()

	if central == nil {
		return
	}
	if central.State() == target {
		return
	}
	if !central.CanTransitionTo(target) {
		logger.Debug("聚合状态不可达，跳过转换",
			"current", central.State().String(),
			"target", target.String())
		return
	}

	if err := central.TransitionTo(ctx, target, reason, degraded); err != nil {
		logger.Warn("聚合状态转换失败",
			"target", target.String(),
			"error", err)
	}
}

// isCancellation 判断 error 是否取消信号
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
