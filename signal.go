package homecentral

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homecentral/go-homecentral/internal/core/registry"
)

// shutdownStopTimeout 信号触发停止的统一超时
const shutdownStopTimeout = 30 * time.Second

// HandleShutdownSignals 阻塞等待终止信号并统一停止全部实例
//
// 收到 SIGINT/SIGTERM（或上下文取消）后，对进程级注册表中的
// 全部实例调用 Stop。通常在 main 中最后调用：
//
//	central, _ := homecentral.New("ccu-main")
//	central.Start(ctx)
//	homecentral.HandleShutdownSignals(ctx)
func HandleShutdownSignals(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("收到终止信号", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("上下文已取消", "reason", ctx.Err())
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownStopTimeout)
	defer cancel()
	return registry.Default().StopAll(stopCtx)
}

// StopAll 停止进程级注册表中的全部实例
func StopAll(ctx context.Context) error {
	return registry.Default().StopAll(ctx)
}
