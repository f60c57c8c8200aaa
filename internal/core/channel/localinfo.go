package channel

import "github.com/dep2p/go-securechannel/pkg/types"

// ============================================================================
//                              LocalInfo - 身份附件
// ============================================================================

// LocalInfoKind 安全通道身份附件的类型令牌
//
// 该令牌在整个系统内稳定，下游消费者据此取回附件。
const LocalInfoKind types.AttachmentKind = "securechannel/identity"

// LocalInfo 安全通道身份附件
//
// 命名处理该消息的最近一跳通道所验证的对端身份。
// 每经过一跳恰好产生一个新附件（在认证解密成功后立即附加），
// 并覆盖外层跳点留下的同类附件——不做跨跳身份链。
type LocalInfo struct {
	theirIdentifier types.Identifier
}

// NewLocalInfo 创建身份附件
func NewLocalInfo(theirIdentifier types.Identifier) *LocalInfo {
	return &LocalInfo{theirIdentifier: theirIdentifier}
}

// AttachmentKind 实现 types.Attachment
func (l *LocalInfo) AttachmentKind() types.AttachmentKind {
	return LocalInfoKind
}

// TheirIdentifier 返回对端已验证的身份标识符
func (l *LocalInfo) TheirIdentifier() types.Identifier {
	return l.theirIdentifier
}

// ============================================================================
//                              查找
// ============================================================================

// FindLocalInfo 取回消息的安全通道身份附件
//
// 缺失是正常情况（消息从未经过安全通道），以
// types.ErrLocalInfoNotFound 表示，不与"空身份"混淆。
func FindLocalInfo(msg *types.LocalMessage) (types.Identifier, error) {
	a, ok := msg.Attachment(LocalInfoKind)
	if !ok {
		return types.EmptyIdentifier, types.ErrLocalInfoNotFound
	}
	info, ok := a.(*LocalInfo)
	if !ok {
		return types.EmptyIdentifier, types.ErrLocalInfoNotFound
	}
	return info.TheirIdentifier(), nil
}
