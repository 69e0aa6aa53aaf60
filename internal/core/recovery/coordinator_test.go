package recovery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/homecentral/go-homecentral/pkg/interfaces"
	"github.com/homecentral/go-homecentral/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

// mockHealth 模拟健康追踪器
type mockHealth struct {
	mu    sync.Mutex
	ids   []string
	calls int
}

func (m *mockHealth) FailedInterfaces() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}

// mockCentral 模拟聚合状态机
type mockCentral struct {
	mu          sync.Mutex
	state       types.CentralState
	transitions []types.CentralState
	lastReason  types.FailureReason
}

func (m *mockCentral) State() types.CentralState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *mockCentral) CanTransitionTo(target types.CentralState) bool {
	return true
}

func (m *mockCentral) TransitionTo(_ context.Context, target types.CentralState, reason types.FailureReason, _ map[string]types.FailureReason) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = target
	m.transitions = append(m.transitions, target)
	m.lastReason = reason
	return nil
}

func (m *mockCentral) history() []types.CentralState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.CentralState, len(m.transitions))
	copy(out, m.transitions)
	return out
}

// mockBus 模拟事件总线，仅记录发布的事件
type mockBus struct {
	mu     sync.Mutex
	events []types.Event
}

func (m *mockBus) Subscribe(_ types.Event, _ string, _ interfaces.Handler, _ ...interfaces.SubscribeOption) (interfaces.Unsubscribe, error) {
	return func() {}, nil
}

func (m *mockBus) Publish(_ context.Context, ev types.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockBus) SubscriptionCount(_ types.Event) int         { return 0 }
func (m *mockBus) HandlerStats() map[string]types.HandlerStats { return nil }
func (m *mockBus) ClearStats()                                 {}
func (m *mockBus) Close() error                                { return nil }

func (m *mockBus) published() []types.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Event, len(m.events))
	copy(out, m.events)
	return out
}

// succeedingReconnect 返回总是成功的重连回调，并计数调用次数
func succeedingReconnect(calls *atomic.Int32) interfaces.ReconnectFunc {
	return func(_ context.Context) (bool, error) {
		calls.Add(1)
		return true, nil
	}
}

// failingReconnect 返回总是失败的重连回调
func failingReconnect(calls *atomic.Int32) interfaces.ReconnectFunc {
	return func(_ context.Context) (bool, error) {
		calls.Add(1)
		return false, nil
	}
}

// ============================================================================
//                              单接口恢复测试
// ============================================================================

// TestRecoverClientSuccess 测试重连成功
func TestRecoverClientSuccess(t *testing.T) {
	c := NewCoordinator(nil)
	bus := &mockBus{}
	c.SetEventBus(bus)
	c.RegisterInterface("hmip")

	result, err := c.RecoverClient(context.Background(), "hmip",
		func(_ context.Context) (bool, error) { return true, nil }, nil)
	if err != nil {
		t.Fatalf("RecoverClient 返回错误: %v", err)
	}
	if result != types.ResultSuccess {
		t.Fatalf("result = %v, 期望 Success", result)
	}

	snap, ok := c.RecoveryStateOf("hmip")
	if !ok {
		t.Fatal("应存在恢复记账")
	}
	if snap.AttemptCount != 1 || snap.ConsecutiveFailures != 0 {
		t.Errorf("快照计数 = %d/%d, 期望 1/0", snap.AttemptCount, snap.ConsecutiveFailures)
	}
	if snap.LastSuccess.IsZero() {
		t.Error("成功应更新 LastSuccess")
	}

	events := bus.published()
	if len(events) != 1 {
		t.Fatalf("发布事件数 = %d, 期望 1", len(events))
	}
	attempt, ok := events[0].(*types.RecoveryAttemptEvent)
	if !ok {
		t.Fatalf("事件类型错误: %T", events[0])
	}
	if attempt.InterfaceID != "hmip" || attempt.Result != types.ResultSuccess {
		t.Errorf("尝试事件内容错误: %+v", attempt)
	}
}

// TestRecoverClientFailure 测试重连失败的记账与退避递增
func TestRecoverClientFailure(t *testing.T) {
	c := NewCoordinator(nil)
	c.RegisterInterface("hmip")
	ctx := context.Background()

	var calls atomic.Int32
	for i := 0; i < 2; i++ {
		result, err := c.RecoverClient(ctx, "hmip", failingReconnect(&calls), nil)
		if err != nil {
			t.Fatalf("RecoverClient 返回错误: %v", err)
		}
		if result != types.ResultFailed {
			t.Fatalf("result = %v, 期望 Failed", result)
		}
	}

	snap, _ := c.RecoveryStateOf("hmip")
	if snap.AttemptCount != 2 || snap.ConsecutiveFailures != 2 {
		t.Errorf("快照计数 = %d/%d, 期望 2/2", snap.AttemptCount, snap.ConsecutiveFailures)
	}
	// 连续两次失败后退避翻倍
	if snap.NextRetryDelay != 2*BaseRetryDelay {
		t.Errorf("NextRetryDelay = %v, 期望 %v", snap.NextRetryDelay, 2*BaseRetryDelay)
	}
}

// TestRecoverClientPartial 测试重连成功但校验未通过
func TestRecoverClientPartial(t *testing.T) {
	c := NewCoordinator(nil)
	c.RegisterInterface("hmip")
	ctx := context.Background()

	// 先产生一次硬失败，验证部分成功不改动 consecutiveFailures
	var calls atomic.Int32
	if _, err := c.RecoverClient(ctx, "hmip", failingReconnect(&calls), nil); err != nil {
		t.Fatalf("预置失败出错: %v", err)
	}

	result, err := c.RecoverClient(ctx, "hmip",
		succeedingReconnect(&calls),
		func(_ context.Context) (bool, error) { return false, nil })
	if err != nil {
		t.Fatalf("RecoverClient 返回错误: %v", err)
	}
	if result != types.ResultPartial {
		t.Fatalf("result = %v, 期望 Partial", result)
	}

	snap, _ := c.RecoveryStateOf("hmip")
	if snap.AttemptCount != 2 {
		t.Errorf("AttemptCount = %d, 期望 2", snap.AttemptCount)
	}
	if snap.ConsecutiveFailures != 1 {
		t.Errorf("ConsecutiveFailures = %d, 期望保持 1", snap.ConsecutiveFailures)
	}
	if !snap.LastSuccess.IsZero() {
		t.Error("部分成功不应更新 LastSuccess")
	}
}

// TestRecoverClientMaxRetries 测试尝试耗尽后不再调用重连回调
func TestRecoverClientMaxRetries(t *testing.T) {
	cfg := DefaultConfig().WithMaxAttempts(2)
	c := NewCoordinator(cfg)
	c.RegisterInterface("hmip")
	ctx := context.Background()

	var calls atomic.Int32
	for i := 0; i < 2; i++ {
		if _, err := c.RecoverClient(ctx, "hmip", failingReconnect(&calls), nil); err != nil {
			t.Fatalf("预置失败出错: %v", err)
		}
	}

	before := calls.Load()
	result, err := c.RecoverClient(ctx, "hmip", failingReconnect(&calls), nil)
	if err != nil {
		t.Fatalf("RecoverClient 返回错误: %v", err)
	}
	if result != types.ResultMaxRetries {
		t.Fatalf("result = %v, 期望 MaxRetries", result)
	}
	if calls.Load() != before {
		t.Error("尝试耗尽后不应调用重连回调")
	}

	snap, _ := c.RecoveryStateOf("hmip")
	if snap.CanRetry {
		t.Error("快照应报告不可重试")
	}
	// MaxRetries 判定不计入尝试
	if snap.AttemptCount != 2 {
		t.Errorf("AttemptCount = %d, 期望保持 2", snap.AttemptCount)
	}
}

// TestRecoverClientCancellation 测试取消信号原样传播
func TestRecoverClientCancellation(t *testing.T) {
	c := NewCoordinator(nil)
	c.RegisterInterface("hmip")

	// 上下文已取消
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := c.RecoverClient(ctx, "hmip",
		func(_ context.Context) (bool, error) { return true, nil }, nil)
	if result != types.ResultCancelled {
		t.Fatalf("result = %v, 期望 Cancelled", result)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, 期望 context.Canceled", err)
	}

	// 重连回调返回取消信号
	result, err = c.RecoverClient(context.Background(), "hmip",
		func(_ context.Context) (bool, error) { return false, context.DeadlineExceeded }, nil)
	if result != types.ResultCancelled {
		t.Fatalf("result = %v, 期望 Cancelled", result)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, 期望 context.DeadlineExceeded", err)
	}

	// 取消不计入记账
	snap, _ := c.RecoveryStateOf("hmip")
	if snap.AttemptCount != 0 {
		t.Errorf("取消后 AttemptCount = %d, 期望 0", snap.AttemptCount)
	}
}

// TestRecoverClientLazyRegistration 测试未注册接口的懒注册
func TestRecoverClientLazyRegistration(t *testing.T) {
	c := NewCoordinator(nil)

	if _, ok := c.RecoveryStateOf("wired"); ok {
		t.Fatal("未注册接口不应存在记账")
	}

	var calls atomic.Int32
	if _, err := c.RecoverClient(context.Background(), "wired", succeedingReconnect(&calls), nil); err != nil {
		t.Fatalf("RecoverClient 返回错误: %v", err)
	}

	if _, ok := c.RecoveryStateOf("wired"); !ok {
		t.Error("恢复后应存在懒注册的记账")
	}
}

// ============================================================================
//                              记账管理测试
// ============================================================================

// TestRegisterIdempotent 测试重复注册保留既有计数
func TestRegisterIdempotent(t *testing.T) {
	c := NewCoordinator(nil)
	c.RegisterInterface("hmip")

	var calls atomic.Int32
	if _, err := c.RecoverClient(context.Background(), "hmip", failingReconnect(&calls), nil); err != nil {
		t.Fatalf("预置失败出错: %v", err)
	}

	snap := c.RegisterInterface("hmip")
	if snap.AttemptCount != 1 {
		t.Errorf("重复注册后 AttemptCount = %d, 期望保留 1", snap.AttemptCount)
	}
}

// TestResetAndUnregister 测试清零与注销
func TestResetAndUnregister(t *testing.T) {
	c := NewCoordinator(nil)
	c.RegisterInterface("hmip")

	var calls atomic.Int32
	if _, err := c.RecoverClient(context.Background(), "hmip", failingReconnect(&calls), nil); err != nil {
		t.Fatalf("预置失败出错: %v", err)
	}

	c.ResetInterface("hmip")
	snap, ok := c.RecoveryStateOf("hmip")
	if !ok {
		t.Fatal("reset 不应销毁记账")
	}
	if snap.AttemptCount != 0 || snap.ConsecutiveFailures != 0 {
		t.Errorf("reset 后计数 = %d/%d, 期望 0/0", snap.AttemptCount, snap.ConsecutiveFailures)
	}

	c.UnregisterInterface("hmip")
	if _, ok := c.RecoveryStateOf("hmip"); ok {
		t.Error("注销后不应存在记账")
	}
}

// ============================================================================
//                              恢复扫描测试
// ============================================================================

// sweepProvider 按接口 ID 返回预设结局的重连回调
func sweepProvider(outcomes map[string]bool, calls *atomic.Int32) interfaces.ReconnectProvider {
	return func(interfaceID string) interfaces.ReconnectFunc {
		ok := outcomes[interfaceID]
		return func(_ context.Context) (bool, error) {
			calls.Add(1)
			return ok, nil
		}
	}
}

// TestRecoverAllFailedAllSuccess 测试全部恢复成功
func TestRecoverAllFailedAllSuccess(t *testing.T) {
	c := NewCoordinator(nil)
	bus := &mockBus{}
	central := &mockCentral{state: types.CentralDegraded}
	c.SetEventBus(bus)
	c.SetStateMachine(central)
	c.SetHealthTracker(&mockHealth{ids: []string{"hmip", "wired"}})

	var calls atomic.Int32
	result, err := c.RecoverAllFailed(context.Background(),
		sweepProvider(map[string]bool{"hmip": true, "wired": true}, &calls))
	if err != nil {
		t.Fatalf("RecoverAllFailed 返回错误: %v", err)
	}
	if result != types.ResultSuccess {
		t.Fatalf("result = %v, 期望 Success", result)
	}
	if calls.Load() != 2 {
		t.Errorf("重连调用次数 = %d, 期望 2", calls.Load())
	}
	if central.State() != types.CentralRunning {
		t.Errorf("聚合状态 = %v, 期望 Running", central.State())
	}

	// 2 个尝试事件 + 1 个扫描事件
	var sweeps int
	for _, ev := range bus.published() {
		if sweep, ok := ev.(*types.RecoverySweepEvent); ok {
			sweeps++
			if sweep.Result != types.ResultSuccess || len(sweep.Recovered) != 2 || len(sweep.Attempted) != 2 {
				t.Errorf("扫描事件内容错误: %+v", sweep)
			}
		}
	}
	if sweeps != 1 {
		t.Errorf("扫描事件数 = %d, 期望 1", sweeps)
	}
}

// TestRecoverAllFailedPartial 测试部分恢复成功转 Degraded
func TestRecoverAllFailedPartial(t *testing.T) {
	c := NewCoordinator(nil)
	central := &mockCentral{state: types.CentralRunning}
	c.SetStateMachine(central)
	c.SetHealthTracker(&mockHealth{ids: []string{"hmip", "wired"}})

	var calls atomic.Int32
	result, err := c.RecoverAllFailed(context.Background(),
		sweepProvider(map[string]bool{"hmip": true, "wired": false}, &calls))
	if err != nil {
		t.Fatalf("RecoverAllFailed 返回错误: %v", err)
	}
	if result != types.ResultPartial {
		t.Fatalf("result = %v, 期望 Partial", result)
	}
	if central.State() != types.CentralDegraded {
		t.Errorf("聚合状态 = %v, 期望 Degraded", central.State())
	}
}

// TestRecoverAllFailedNoneRecovered 测试全部失败转 Degraded
func TestRecoverAllFailedNoneRecovered(t *testing.T) {
	c := NewCoordinator(nil)
	central := &mockCentral{state: types.CentralRunning}
	c.SetStateMachine(central)
	c.SetHealthTracker(&mockHealth{ids: []string{"hmip", "wired"}})

	var calls atomic.Int32
	result, err := c.RecoverAllFailed(context.Background(),
		sweepProvider(map[string]bool{}, &calls))
	if err != nil {
		t.Fatalf("RecoverAllFailed 返回错误: %v", err)
	}
	if result != types.ResultFailed {
		t.Fatalf("result = %v, 期望 Failed", result)
	}
	if central.State() != types.CentralDegraded {
		t.Errorf("聚合状态 = %v, 期望 Degraded", central.State())
	}
}

// TestRecoverAllFailedExhausted 测试全部耗尽转 Failed
func TestRecoverAllFailedExhausted(t *testing.T) {
	cfg := DefaultConfig().WithMaxAttempts(1)
	c := NewCoordinator(cfg)
	central := &mockCentral{state: types.CentralDegraded}
	c.SetStateMachine(central)
	c.SetHealthTracker(&mockHealth{ids: []string{"hmip", "wired"}})
	ctx := context.Background()

	// 每个接口用尽唯一一次尝试
	var calls atomic.Int32
	for _, id := range []string{"hmip", "wired"} {
		if _, err := c.RecoverClient(ctx, id, failingReconnect(&calls), nil); err != nil {
			t.Fatalf("预置失败出错: %v", err)
		}
	}

	before := calls.Load()
	result, err := c.RecoverAllFailed(ctx,
		sweepProvider(map[string]bool{"hmip": true, "wired": true}, &calls))
	if err != nil {
		t.Fatalf("RecoverAllFailed 返回错误: %v", err)
	}
	if result != types.ResultMaxRetries {
		t.Fatalf("result = %v, 期望 MaxRetries", result)
	}
	if calls.Load() != before {
		t.Error("全部耗尽时不应调用任何重连回调")
	}
	if central.State() != types.CentralFailed {
		t.Errorf("聚合状态 = %v, 期望 Failed", central.State())
	}
	if central.lastReason != types.ReasonRecoveryExhausted {
		t.Errorf("失败原因 = %v, 期望 RecoveryExhausted", central.lastReason)
	}
}

// TestRecoverAllFailedNoTracker 测试缺少健康追踪器
func TestRecoverAllFailedNoTracker(t *testing.T) {
	c := NewCoordinator(nil)

	result, err := c.RecoverAllFailed(context.Background(), nil)
	if err != nil {
		t.Fatalf("RecoverAllFailed 返回错误: %v", err)
	}
	if result != types.ResultFailed {
		t.Errorf("result = %v, 期望 Failed", result)
	}
}

// TestRecoverAllFailedNothingToDo 测试无故障接口直接成功
func TestRecoverAllFailedNothingToDo(t *testing.T) {
	c := NewCoordinator(nil)
	central := &mockCentral{state: types.CentralRunning}
	c.SetStateMachine(central)
	c.SetHealthTracker(&mockHealth{})

	result, err := c.RecoverAllFailed(context.Background(), nil)
	if err != nil {
		t.Fatalf("RecoverAllFailed 返回错误: %v", err)
	}
	if result != types.ResultSuccess {
		t.Errorf("result = %v, 期望 Success", result)
	}
	if len(central.history()) != 0 {
		t.Error("无故障接口时不应驱动聚合状态机")
	}
}

// TestRecoverAllFailedConcurrencyBound 测试并发在途重连数不超过 MaxConcurrent
func TestRecoverAllFailedConcurrencyBound(t *testing.T) {
	const limit = 2
	ids := []string{"if-0", "if-1", "if-2", "if-3", "if-4", "if-5"}

	c := NewCoordinator(DefaultConfig().WithMaxConcurrent(limit))
	c.SetStateMachine(&mockCentral{state: types.CentralDegraded})
	c.SetHealthTracker(&mockHealth{ids: ids})
	for _, id := range ids {
		c.RegisterInterface(id)
	}

	// 重连回调阻塞片刻并记录在途数的高水位
	var inflight, highWater, calls atomic.Int32
	provider := func(_ string) interfaces.ReconnectFunc {
		return func(_ context.Context) (bool, error) {
			cur := inflight.Add(1)
			defer inflight.Add(-1)
			for {
				hw := highWater.Load()
				if cur <= hw || highWater.CompareAndSwap(hw, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			calls.Add(1)
			return true, nil
		}
	}

	result, err := c.RecoverAllFailed(context.Background(), provider)
	if err != nil {
		t.Fatalf("RecoverAllFailed 返回错误: %v", err)
	}
	if result != types.ResultSuccess {
		t.Fatalf("result = %v, 期望 Success", result)
	}
	if calls.Load() != int32(len(ids)) {
		t.Errorf("重连调用次数 = %d, 期望 %d", calls.Load(), len(ids))
	}
	if hw := highWater.Load(); hw > limit {
		t.Errorf("并发在途重连数高水位 = %d, 超过上限 %d", hw, limit)
	}
}

// TestRecoverAllFailedBackoffCancellation 测试退避等待期间取消
func TestRecoverAllFailedBackoffCancellation(t *testing.T) {
	c := NewCoordinator(nil)
	mock := clock.NewMock()
	c.clk = mock
	c.SetHealthTracker(&mockHealth{ids: []string{"hmip"}})
	ctx, cancel := context.WithCancel(context.Background())

	// 预置一次失败，使扫描前必须退避等待
	var calls atomic.Int32
	if _, err := c.RecoverClient(ctx, "hmip", failingReconnect(&calls), nil); err != nil {
		t.Fatalf("预置失败出错: %v", err)
	}
	before := calls.Load()

	type sweepOut struct {
		result types.RecoveryResult
		err    error
	}
	done := make(chan sweepOut, 1)
	go func() {
		result, err := c.RecoverAllFailed(ctx,
			sweepProvider(map[string]bool{"hmip": true}, &calls))
		done <- sweepOut{result, err}
	}()

	// 模拟时钟永不推进，取消是唯一出路
	cancel()

	select {
	case out := <-done:
		if out.result != types.ResultCancelled {
			t.Errorf("result = %v, 期望 Cancelled", out.result)
		}
		if !errors.Is(out.err, context.Canceled) {
			t.Errorf("err = %v, 期望 context.Canceled", out.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("扫描未在取消后返回")
	}

	if calls.Load() != before {
		t.Error("退避等待期间取消不应调用重连回调")
	}
}

// ============================================================================
//                              心跳与关闭测试
// ============================================================================

// TestHeartbeatRetrySkipsHealthy 测试非 Failed 状态下心跳为无操作
func TestHeartbeatRetrySkipsHealthy(t *testing.T) {
	c := NewCoordinator(nil)
	health := &mockHealth{ids: []string{"hmip"}}
	c.SetHealthTracker(health)
	c.SetStateMachine(&mockCentral{state: types.CentralRunning})

	result, err := c.HeartbeatRetry(context.Background(), nil)
	if err != nil {
		t.Fatalf("HeartbeatRetry 返回错误: %v", err)
	}
	if result != types.ResultSuccess {
		t.Errorf("result = %v, 期望 Success", result)
	}
	health.mu.Lock()
	calls := health.calls
	health.mu.Unlock()
	if calls != 0 {
		t.Error("非 Failed 状态下不应查询健康快照")
	}
}

// TestHeartbeatRetryRunsWhenFailed 测试 Failed 状态下心跳触发扫描
func TestHeartbeatRetryRunsWhenFailed(t *testing.T) {
	c := NewCoordinator(nil)
	central := &mockCentral{state: types.CentralFailed}
	c.SetStateMachine(central)
	c.SetHealthTracker(&mockHealth{ids: []string{"hmip"}})

	var calls atomic.Int32
	result, err := c.HeartbeatRetry(context.Background(),
		sweepProvider(map[string]bool{"hmip": true}, &calls))
	if err != nil {
		t.Fatalf("HeartbeatRetry 返回错误: %v", err)
	}
	if result != types.ResultSuccess {
		t.Errorf("result = %v, 期望 Success", result)
	}
	if calls.Load() != 1 {
		t.Errorf("重连调用次数 = %d, 期望 1", calls.Load())
	}
	if central.State() != types.CentralRunning {
		t.Errorf("聚合状态 = %v, 期望 Running", central.State())
	}
}

// TestShutdown 测试关闭后所有入口返回 Cancelled 且不再触碰记账
func TestShutdown(t *testing.T) {
	c := NewCoordinator(nil)
	c.RegisterInterface("hmip")
	c.SetHealthTracker(&mockHealth{ids: []string{"hmip"}})
	ctx := context.Background()

	// 先产生一次失败记账，关闭后记账必须原样冻结
	var calls atomic.Int32
	if result, err := c.RecoverClient(ctx, "hmip", failingReconnect(&calls), nil); result != types.ResultFailed || err != nil {
		t.Fatalf("关闭前 RecoverClient = (%v, %v), 期望 (Failed, nil)", result, err)
	}

	c.Shutdown()
	if !c.IsShutdown() {
		t.Fatal("IsShutdown 应为 true")
	}

	result, err := c.RecoverClient(ctx, "hmip", succeedingReconnect(&calls), nil)
	if result != types.ResultCancelled || err != nil {
		t.Errorf("关闭后 RecoverClient = (%v, %v), 期望 (Cancelled, nil)", result, err)
	}

	result, err = c.RecoverAllFailed(ctx, nil)
	if result != types.ResultCancelled || err != nil {
		t.Errorf("关闭后 RecoverAllFailed = (%v, %v), 期望 (Cancelled, nil)", result, err)
	}

	result, err = c.HeartbeatRetry(ctx, nil)
	if result != types.ResultCancelled || err != nil {
		t.Errorf("关闭后 HeartbeatRetry = (%v, %v), 期望 (Cancelled, nil)", result, err)
	}

	if calls.Load() != 1 {
		t.Errorf("关闭后不应调用任何回调, 调用次数 = %d, 期望 1", calls.Load())
	}

	// 就地清零与注销关闭后同样为无操作
	c.ResetInterface("hmip")
	snap, ok := c.RecoveryStateOf("hmip")
	if !ok {
		t.Fatal("关闭后记账不应消失")
	}
	if snap.AttemptCount != 1 || snap.ConsecutiveFailures != 1 || len(snap.History) != 1 {
		t.Errorf("关闭后 ResetInterface 改动了记账: (%d, %d, %d), 期望 (1, 1, 1)",
			snap.AttemptCount, snap.ConsecutiveFailures, len(snap.History))
	}

	c.UnregisterInterface("hmip")
	if _, ok := c.RecoveryStateOf("hmip"); !ok {
		t.Error("关闭后 UnregisterInterface 不应销毁记账")
	}

	// 关闭后不再产生新记账
	c.RegisterInterface("late")
	if _, ok := c.RecoveryStateOf("late"); ok {
		t.Error("关闭后注册不应创建记账")
	}

	// 幂等
	c.Shutdown()
}
