// Package homecentral 提供家庭自动化控制器客户端的连接生命周期核心
//
// Central 是用户与控制器实例交互的主入口。
// 它是一个门面（Facade），聚合了所有内部组件：
//   - EventBus: 进程内类型化事件总线
//   - StateMachine: 聚合与接口通道两级枚举状态机
//   - RecoveryCoordinator: 有界指数退避的恢复协调器
//   - Registry: 进程级实例注册表
//
// 使用示例：
//
//	// 创建并启动控制器实例
//	central, err := homecentral.New("ccu-main",
//	    homecentral.WithPreset("standard"),
//	    homecentral.WithReconnectProvider(provider),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := central.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer central.Stop(ctx)
//
//	// 注册接口通道
//	central.AddInterface(ctx, "hmip")
//
//	// 观察状态变化
//	central.EventBus().Subscribe(new(types.ClientStateChangedEvent), "hmip",
//	    func(ctx context.Context, ev types.Event) error {
//	        change := ev.(*types.ClientStateChangedEvent)
//	        fmt.Println(change.From, "->", change.To)
//	        return nil
//	    })
//
//	// 传输层汇报连接丢失
//	client, _ := central.Client("hmip")
//	client.TransitionTo(ctx, types.ClientFailed, types.ReasonConnectionLost)
//
//	// 驱动一轮恢复扫描
//	result, err := central.RecoverAll(ctx)
package homecentral
