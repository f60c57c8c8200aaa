// Package runtime 定义路由运行时的处理器与访问控制接口
//
// 路由运行时（internal/core/node）持有每个地址的邮箱并按序投递消息；
// 本包定义运行时与其托管的 actor 之间的契约。
package runtime

import "github.com/dep2p/go-securechannel/pkg/types"

// ============================================================================
//                              消息处理器
// ============================================================================

// Handler actor 的消息处理回调
//
// 运行时保证同一 Handler 同一时刻只处理一条消息（按到达顺序），
// 处理器状态由其所属 actor 独占，无需加锁。
type Handler interface {
	// HandleMessage 处理一条投递到本 actor 的消息
	//
	// dest 是消息实际送达的本 actor 地址（一个 actor 可注册多个地址）。
	// 返回的错误只做本地记录，不回传给发送者。
	HandleMessage(dest types.Address, msg *types.LocalMessage) error
}

// HandlerFunc 函数形式的 Handler
type HandlerFunc func(dest types.Address, msg *types.LocalMessage) error

// HandleMessage 实现 Handler 接口
func (f HandlerFunc) HandleMessage(dest types.Address, msg *types.LocalMessage) error {
	return f(dest, msg)
}

// ============================================================================
//                              访问控制
// ============================================================================

// AccessControl 投递前访问控制谓词
//
// 由运行时在向受保护地址投递每条消息前调用；
// 不得修改消息；消息未携带任何认证附件时也必须安全可调用。
// 每条消息独立求值，结果绝不跨消息缓存。
type AccessControl interface {
	// IsAuthorized 判断消息是否允许投递
	//
	// 返回 false 表示拒绝（静默丢弃，不是错误）；
	// 返回 error 表示谓词本身无法求值。
	IsAuthorized(msg *types.LocalMessage) (bool, error)
}
