// Package recovery 实现接口通道恢复协调器
//
// 协调器驱动故障接口通道的修复，同时避免重连风暴压垮控制器：
//
//   - 逐接口记账：尝试次数、连续失败次数、时间戳与有界尝试历史，
//     退避时长按连续失败次数指数增长并封顶；
//   - 单接口恢复（RecoverClient）：重连回调 + 可选数据重载校验回调，
//     校验未通过记为部分成功（PARTIAL）；
//   - 恢复扫描（RecoverAllFailed）：读取健康快照，对未耗尽的故障接口
//     并发执行恢复（并发数受限），按聚合结局驱动聚合状态机转换；
//   - 心跳重试（HeartbeatRetry）：聚合状态为 Failed 时按固定间隔
//     低成本探测控制器是否恢复；
//   - 协作式取消：Shutdown 置一次性关闭标志，所有公有入口开头检查，
//     上下文取消信号原样向上传播。
//
// 除取消外，一切预期结局以 types.RecoveryResult 值返回，不走异常式
// 控制流。重连/校验回调由 RPC 传输层提供，本包不做任何直接 I/O。
package recovery
