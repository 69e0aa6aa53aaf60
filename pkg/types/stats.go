// Package types 定义 homecentral 公共类型
//
// 本文件定义 handler 统计类型。
package types

import "time"

// HandlerStats 单个 handler 的执行统计
//
// 由总线持有和更新，调用方拿到的是快照副本。
// 无论执行成功与否，每次调用后都会更新。
type HandlerStats struct {
	// Executions 累计执行次数
	Executions uint64

	// Errors 累计失败次数（返回 error 或 panic）
	Errors uint64

	// TotalDuration 累计执行时长
	TotalDuration time.Duration

	// MaxDuration 单次最大执行时长
	MaxDuration time.Duration
}
