// Package node 实现消息路由运行时
//
// 运行时持有地址到邮箱的注册表。每个邮箱由独立的 goroutine 驱动，
// 一次向处理器投递一条消息（actor 模型，按路径 FIFO）。
// actor 的私有状态只在自己的邮箱 goroutine 上被访问，核心内无需加锁；
// 互斥仅存在于注册表本身。
//
// 投递受保护地址前，运行时逐条消息求值访问控制谓词，
// 拒绝即静默丢弃（不向发送方反馈）。
package node
