// Package interfaces 定义 homecentral 公共接口
//
// 本文件定义实例注册表存储的实例契约。
package interfaces

import "context"

// Instance 顶层实例契约
//
// 注册表按名称持有实例引用，供进程级信号处理器在正常调度
// 上下文之外定位存活实例并请求停机。
type Instance interface {
	// Name 返回实例名称（注册表内唯一）
	Name() string

	// Stop 停止实例
	Stop(ctx context.Context) error
}
