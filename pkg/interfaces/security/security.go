// Package security 定义加密提供者接口
//
// 安全通道核心通过本接口消费外部加密实现（握手、AEAD 加解密），
// 不直接依赖任何具体算法。具体实现见 internal/core/security/noise。
package security

import "github.com/dep2p/go-securechannel/pkg/types"

// ============================================================================
//                              握手角色
// ============================================================================

// Role 握手角色
type Role int

const (
	// RoleInitiator 发起方
	RoleInitiator Role = iota

	// RoleResponder 响应方
	RoleResponder
)

// String 返回角色的字符串表示
func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleResponder:
		return "responder"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              握手接口
// ============================================================================

// HandshakeResult 单步握手推进的结果
type HandshakeResult struct {
	// Outgoing 需要发往对端的字节（可能为空）
	Outgoing []byte

	// Complete 双向认证是否已完成
	Complete bool

	// PeerIdentity 对端已验证的身份（仅在 Complete 时有效）
	PeerIdentity types.Identifier

	// Session 会话密钥（仅在 Complete 时有效）
	Session Session
}

// Handshake 一次进行中的握手
//
// 每次 Advance 调用必须是确定性的，副作用仅限于自身会话状态。
type Handshake interface {
	// Advance 用收到的字节推进握手状态
	//
	// 发起方第一次调用传入 nil，产生首条握手消息。
	// 加密层验证失败返回包装 types.ErrHandshakeFailed 的错误。
	Advance(incoming []byte) (*HandshakeResult, error)

	// Release 释放未完成的握手，丢弃中间状态
	//
	// 取消时调用；已完成的握手无需调用。
	Release()
}

// ============================================================================
//                              会话接口
// ============================================================================

// Session 已建立通道的会话密钥
type Session interface {
	// Encrypt 用会话密钥加密明文
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt 认证解密密文
	//
	// MAC 校验失败返回包装 types.ErrAuthenticationFailed 的错误，
	// 绝不返回未认证的明文。
	Decrypt(ciphertext []byte) ([]byte, error)
}

// ============================================================================
//                              提供者接口
// ============================================================================

// Provider 加密提供者
type Provider interface {
	// NewHandshake 以给定角色开始一次新握手
	NewHandshake(role Role) (Handshake, error)
}
