package securechannel

import (
	"github.com/dep2p/go-securechannel/internal/core/channel"
	"github.com/dep2p/go-securechannel/internal/core/node"
	runtimeif "github.com/dep2p/go-securechannel/pkg/interfaces/runtime"
	"github.com/dep2p/go-securechannel/pkg/lib/crypto"
	"github.com/dep2p/go-securechannel/pkg/types"
)

// ============================================================================
//                              类型再导出
// ============================================================================

type (
	// Address 路由地址
	Address = types.Address

	// Route 消息路由
	Route = types.Route

	// Identifier 身份标识符
	Identifier = types.Identifier

	// LocalMessage 本地消息
	LocalMessage = types.LocalMessage

	// Attachment 消息附件
	Attachment = types.Attachment

	// AttachmentKind 附件类型令牌
	AttachmentKind = types.AttachmentKind

	// Identity 本地身份（Ed25519）
	Identity = crypto.Ed25519Identity

	// Runtime 消息路由运行时
	Runtime = node.Node

	// Context 应用端点
	Context = node.Context

	// RegisterOption Worker 注册选项
	RegisterOption = node.RegisterOption

	// Handler actor 消息处理回调
	Handler = runtimeif.Handler

	// HandlerFunc 函数形式的 Handler
	HandlerFunc = runtimeif.HandlerFunc

	// AccessControl 投递前访问控制谓词
	AccessControl = runtimeif.AccessControl

	// TrustPolicy 信任策略
	TrustPolicy = channel.TrustPolicy

	// TrustIdentifierPolicy 固定身份信任策略
	TrustIdentifierPolicy = channel.TrustIdentifierPolicy

	// TrustEveryonePolicy 接受任何身份的信任策略
	TrustEveryonePolicy = channel.TrustEveryonePolicy

	// Listener 安全通道监听器
	Listener = channel.Listener

	// LocalInfo 安全通道身份附件
	LocalInfo = channel.LocalInfo

	// IdentifierAccessControl 固定身份访问控制谓词
	IdentifierAccessControl = channel.IdentifierAccessControl

	// AnyIdentifierAccessControl 任意已认证身份访问控制谓词
	AnyIdentifierAccessControl = channel.AnyIdentifierAccessControl
)

// LocalInfoKind 安全通道身份附件的类型令牌
const LocalInfoKind = channel.LocalInfoKind

// ============================================================================
//                              构造函数再导出
// ============================================================================

// NewRoute 从给定跳点创建路由
func NewRoute(hops ...Address) Route {
	return types.NewRoute(hops...)
}

// NewAddress 生成全局唯一的新地址
func NewAddress() Address {
	return types.NewAddress()
}

// GenerateIdentity 生成新的 Ed25519 身份
func GenerateIdentity() (*Identity, error) {
	return crypto.GenerateIdentity()
}

// NewTrustIdentifierPolicy 创建只接受固定身份的信任策略
func NewTrustIdentifierPolicy(expected Identifier) TrustIdentifierPolicy {
	return channel.NewTrustIdentifierPolicy(expected)
}

// NewIdentifierAccessControl 创建固定身份访问控制谓词
func NewIdentifierAccessControl(theirIdentifier Identifier) IdentifierAccessControl {
	return channel.NewIdentifierAccessControl(theirIdentifier)
}

// FindLocalInfo 取回消息的安全通道身份附件
//
// 缺失以 ErrLocalInfoNotFound 表示，是正常情况。
func FindLocalInfo(msg *LocalMessage) (Identifier, error) {
	return channel.FindLocalInfo(msg)
}

// WithAccessControl 为注册的 Worker 配置访问控制谓词
func WithAccessControl(ac AccessControl) RegisterOption {
	return node.WithAccessControl(ac)
}
