// Package types 定义 go-securechannel 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              信任策略相关错误
// ============================================================================

var (
	// ErrTrustRejected 信任策略拒绝了对端身份（该次握手永久失败）
	ErrTrustRejected = errors.New("trust policy rejected peer identity")

	// ErrPolicyEvaluation 信任策略无法得出结论（区别于拒绝）
	ErrPolicyEvaluation = errors.New("trust policy evaluation failed")
)

// ============================================================================
//                              安全通道相关错误
// ============================================================================

var (
	// ErrHandshakeFailed 握手过程中的加密层失败
	ErrHandshakeFailed = errors.New("secure channel handshake failed")

	// ErrAuthenticationFailed 消息解密/认证失败
	ErrAuthenticationFailed = errors.New("message authentication failed")

	// ErrChannelNotReady 通道尚未建立完成
	ErrChannelNotReady = errors.New("secure channel not ready")

	// ErrChannelClosed 通道已关闭
	ErrChannelClosed = errors.New("secure channel closed")

	// ErrInvalidEnvelope 无法解析的通道协议消息
	ErrInvalidEnvelope = errors.New("invalid channel protocol envelope")
)

// ============================================================================
//                              路由相关错误
// ============================================================================

var (
	// ErrAddressNotFound 目标地址未注册或已注销
	ErrAddressNotFound = errors.New("address not found")

	// ErrEmptyRoute 路由为空，无下一跳
	ErrEmptyRoute = errors.New("empty route")

	// ErrNodeStopped 路由运行时已停止
	ErrNodeStopped = errors.New("node stopped")

	// ErrReceiveTimeout 等待消息超时
	ErrReceiveTimeout = errors.New("receive timeout")
)

// ============================================================================
//                              附件相关错误
// ============================================================================

var (
	// ErrLocalInfoNotFound 消息未携带指定类型的附件
	//
	// 这是正常情况（消息未经过安全通道），不应与"空身份"混淆。
	ErrLocalInfoNotFound = errors.New("local info attachment not found")
)

// ============================================================================
//                              身份相关错误
// ============================================================================

var (
	// ErrEmptyIdentifier 空身份标识符
	ErrEmptyIdentifier = errors.New("empty identifier")

	// ErrNilPublicKey 空公钥
	ErrNilPublicKey = errors.New("nil public key")

	// ErrInvalidSignature 签名验证失败
	ErrInvalidSignature = errors.New("invalid signature")
)
