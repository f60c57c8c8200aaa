package securechannel

import "github.com/dep2p/go-securechannel/pkg/types"

// ============================================================================
//                              错误再导出
// ============================================================================

var (
	// ErrTrustRejected 信任策略拒绝了对端身份
	ErrTrustRejected = types.ErrTrustRejected

	// ErrPolicyEvaluation 信任策略无法得出结论
	ErrPolicyEvaluation = types.ErrPolicyEvaluation

	// ErrHandshakeFailed 握手加密层失败
	ErrHandshakeFailed = types.ErrHandshakeFailed

	// ErrAuthenticationFailed 消息认证失败
	ErrAuthenticationFailed = types.ErrAuthenticationFailed

	// ErrChannelNotReady 通道尚未建立完成
	ErrChannelNotReady = types.ErrChannelNotReady

	// ErrChannelClosed 通道已关闭
	ErrChannelClosed = types.ErrChannelClosed

	// ErrAddressNotFound 目标地址未注册或已注销
	ErrAddressNotFound = types.ErrAddressNotFound

	// ErrLocalInfoNotFound 消息未携带安全通道身份附件
	ErrLocalInfoNotFound = types.ErrLocalInfoNotFound
)
