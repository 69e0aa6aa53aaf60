// Package recovery 实现接口通道恢复协调器
//
// 本文件定义单接口恢复记账。recoveryState 由协调器独占持有和修改
// （受协调器锁保护），调用方只能拿到快照副本。
package recovery

import (
	"time"

	"github.com/homecentral/go-homecentral/pkg/types"
)

// recoveryState 单接口恢复记账
type recoveryState struct {
	id                  string
	attemptCount        int
	consecutiveFailures int
	lastAttempt         time.Time
	lastSuccess         time.Time
	history             []types.RecoveryAttempt
}

// newRecoveryState 创建恢复记账
func newRecoveryState(id string) *recoveryState {
	return &recoveryState{id: id}
}

// record 记录一次尝试
//
// 记账规则：
//   - 任何结局都使 attemptCount 递增、lastAttempt 更新、历史追加；
//   - 完全成功（Success）使 consecutiveFailures 归零、lastSuccess 更新；
//   - 失败（Failed）使 consecutiveFailures 递增；
//   - 部分成功（Partial，重连成功但校验未通过）保持 consecutiveFailures
//     不变：既不按完全成功清零，也不按硬失败累加。
func (s *recoveryState) record(result types.RecoveryResult, stage types.DataLoadStage, now time.Time, err error) {
	s.attemptCount++
	s.lastAttempt = now

	switch result {
	case types.ResultSuccess:
		s.consecutiveFailures = 0
		s.lastSuccess = now
	case types.ResultFailed:
		s.consecutiveFailures++
	}

	entry := types.RecoveryAttempt{
		Result: result,
		Stage:  stage,
		Time:   now,
	}
	if err != nil {
		entry.Err = err.Error()
	}

	s.history = append(s.history, entry)
	if len(s.history) > attemptHistoryCap {
		s.history = s.history[len(s.history)-attemptHistoryCap:]
	}
}

// reset 就地清零记账
func (s *recoveryState) reset() {
	s.attemptCount = 0
	s.consecutiveFailures = 0
	s.lastAttempt = time.Time{}
	s.lastSuccess = time.Time{}
	s.history = nil
}

// canRetry 查询是否仍可尝试
func (s *recoveryState) canRetry(maxAttempts int) bool {
	return s.attemptCount < maxAttempts
}

// snapshot 生成只读快照副本
func (s *recoveryState) snapshot(cfg *Config) types.RecoverySnapshot {
	history := make([]types.RecoveryAttempt, len(s.history))
	copy(history, s.history)

	return types.RecoverySnapshot{
		InterfaceID:         s.id,
		AttemptCount:        s.attemptCount,
		ConsecutiveFailures: s.consecutiveFailures,
		LastAttempt:         s.lastAttempt,
		LastSuccess:         s.lastSuccess,
		CanRetry:            s.canRetry(cfg.MaxAttempts),
		NextRetryDelay:      NextRetryDelay(cfg.BaseRetryDelay, cfg.MaxRetryDelay, s.consecutiveFailures),
		History:             history,
	}
}
