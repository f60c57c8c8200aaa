// Package types 定义 go-securechannel 的基础类型
//
// 包含地址、路由、身份标识符、本地消息等值类型，
// 以及全部公共错误定义。
//
// 本包不依赖任何其他内部包，是依赖图的最底层。
package types
