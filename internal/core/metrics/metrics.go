// Package metrics 提供安全通道的可观测性计数器
//
// 认证失败和访问控制拒绝对发送方是静默的（fail closed, stay quiet），
// 但必须在本地可观测；本包是该审计信号的唯一出口。
package metrics

import "github.com/prometheus/client_golang/prometheus"

// namespace 指标命名空间
const namespace = "securechannel"

// ============================================================================
//                              Security - 安全指标
// ============================================================================

// Security 安全通道相关指标集合
//
// 所有计数器在未注册时也可安全使用（只是不会被抓取）。
type Security struct {
	// HandshakesCompleted 成功建立的通道数
	HandshakesCompleted prometheus.Counter

	// HandshakesFailed 加密层握手失败数
	HandshakesFailed prometheus.Counter

	// TrustRejections 信任策略拒绝数
	TrustRejections prometheus.Counter

	// DecryptFailures 已建立通道上的消息认证失败数
	DecryptFailures prometheus.Counter

	// AccessControlDrops 访问控制静默丢弃的消息数
	AccessControlDrops prometheus.Counter

	// MessagesForwarded 解密后成功转发的消息数
	MessagesForwarded prometheus.Counter
}

// NewSecurity 创建安全指标集合
//
// reg 为 nil 时不注册，计数器仍可使用。
func NewSecurity(reg prometheus.Registerer) *Security {
	s := &Security{
		HandshakesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_completed_total",
			Help:      "Secure channels successfully established.",
		}),
		HandshakesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_failed_total",
			Help:      "Handshakes aborted by a crypto-level failure.",
		}),
		TrustRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trust_rejections_total",
			Help:      "Handshakes aborted by a trust policy rejection.",
		}),
		DecryptFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decrypt_failures_total",
			Help:      "Post-establishment messages that failed authenticated decryption.",
		}),
		AccessControlDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_control_drops_total",
			Help:      "Messages silently dropped by an access control predicate.",
		}),
		MessagesForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_forwarded_total",
			Help:      "Decrypted messages forwarded to their next hop.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			s.HandshakesCompleted,
			s.HandshakesFailed,
			s.TrustRejections,
			s.DecryptFailures,
			s.AccessControlDrops,
			s.MessagesForwarded,
		)
	}

	return s
}
