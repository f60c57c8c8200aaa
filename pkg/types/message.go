package types

// ============================================================================
//                              消息附件
// ============================================================================

// AttachmentKind 附件类型令牌
//
// 类型令牌在整个系统内必须稳定，下游消费者依赖它
// 可靠地取回特定类型的附件（如安全通道身份附件）。
type AttachmentKind string

// Attachment 附加在单条消息上的类型化元数据
//
// 附件随消息跨通道跳点累积；同一类型的新附件覆盖旧附件。
type Attachment interface {
	// AttachmentKind 返回附件的类型令牌
	AttachmentKind() AttachmentKind
}

// ============================================================================
//                              LocalMessage - 本地消息
// ============================================================================

// LocalMessage 路由运行时内的消息信封
//
// 持有载荷字节、前向路由、返回路由，以及按类型索引的附件集合。
// 消息由运行时在路由时创建，跨通道跳点时累积附件，
// 送达最终目的地后被消费丢弃。
type LocalMessage struct {
	// Payload 载荷字节
	Payload []byte

	// OnwardRoute 前向路由（头部为下一跳）
	OnwardRoute Route

	// ReturnRoute 返回路由（用于回复）
	ReturnRoute Route

	// attachments 按类型索引的附件（惰性创建）
	attachments map[AttachmentKind]Attachment
}

// NewLocalMessage 创建本地消息
func NewLocalMessage(payload []byte, onward, ret Route) *LocalMessage {
	return &LocalMessage{
		Payload:     payload,
		OnwardRoute: onward,
		ReturnRoute: ret,
	}
}

// SetAttachment 设置附件
//
// 同一类型的已有附件会被替换（附件是跳点本地的，不跨跳点组合）。
func (m *LocalMessage) SetAttachment(a Attachment) {
	if m.attachments == nil {
		m.attachments = make(map[AttachmentKind]Attachment, 1)
	}
	m.attachments[a.AttachmentKind()] = a
}

// Attachment 按类型取回附件
//
// 第二个返回值指示附件是否存在；缺失是正常情况。
func (m *LocalMessage) Attachment(kind AttachmentKind) (Attachment, bool) {
	a, ok := m.attachments[kind]
	return a, ok
}

// Attachments 返回全部附件的副本
func (m *LocalMessage) Attachments() map[AttachmentKind]Attachment {
	out := make(map[AttachmentKind]Attachment, len(m.attachments))
	for k, v := range m.attachments {
		out[k] = v
	}
	return out
}
