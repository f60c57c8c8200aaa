// Package channel 实现安全通道的控制平面
//
// 包含：
//   - 信任策略（TrustPolicy）：每次握手对对端已验证身份求值一次
//   - 通道 Worker：握手状态机、出站加密、入站认证解密与转发
//   - 通道监听器（Listener）：按握手请求孵化新的 Worker
//   - 身份附件（LocalInfo）：标记消息最近一跳的已验证身份
//   - 访问控制谓词：投递前根据身份附件放行或丢弃
//
// 每个 Worker / Listener 是路由运行时上的独立 actor，
// 私有状态只在自己的邮箱 goroutine 上被访问。
// 通道可以任意深度嵌套（隧道）：每一跳独立认证、独立附加身份附件，
// 同类附件覆盖外层跳点留下的附件。
package channel
