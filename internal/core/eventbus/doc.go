// Package eventbus 实现进程内类型化事件总线
//
// 总线按事件类型分发，支持按键窄播与逐 handler 统计：
//
//   - 订阅以指针原型声明事件形状（new(types.XxxEvent)），
//     键为空时通配接收该类型全部事件；
//   - Publish 等待所有匹配 handler 执行完毕，逐个隔离失败：
//     handler 返回 error 或 panic 只计入统计并记录日志，
//     既不影响其他 handler，也不传播给发布方；
//   - 分发对订阅集合做快照后迭代，订阅/退订可与分发并发进行，
//     进行中的分发不会观察到半修改的订阅集合。
//
// 使用示例：
//
//	bus := eventbus.NewBus()
//	unsub, _ := bus.Subscribe(new(types.ClientStateChangedEvent), "hmip", handler)
//	defer unsub()
//	bus.Publish(ctx, types.NewClientStateChangedEvent("hmip", from, to, reason))
package eventbus
