package homecentral

import "errors"

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 实例生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 实例未启动
	ErrNotStarted = errors.New("central not started")

	// ErrAlreadyStarted 实例已启动
	ErrAlreadyStarted = errors.New("central already started")

	// ErrCentralClosed 实例已关闭
	ErrCentralClosed = errors.New("central closed")

	// ────────────────────────────────────────────────────────────────────────
	// 接口通道错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrInterfaceExists 接口通道已注册
	ErrInterfaceExists = errors.New("interface already registered")

	// ErrInterfaceNotFound 接口通道未注册
	ErrInterfaceNotFound = errors.New("interface not found")
)
