package channel

import (
	"context"
	"fmt"

	"github.com/dep2p/go-securechannel/internal/core/metrics"
	"github.com/dep2p/go-securechannel/internal/core/node"
	securityif "github.com/dep2p/go-securechannel/pkg/interfaces/security"
	"github.com/dep2p/go-securechannel/pkg/lib/log"
	"github.com/dep2p/go-securechannel/pkg/types"
)

var logger = log.Logger("core/channel")

// ============================================================================
//                              通道状态
// ============================================================================

// State 通道生命周期状态
//
// 状态转移：Initiating → HandshakeInProgress → Established → Closing → Closed，
// 错误路径：HandshakeInProgress → Failed，Established → Failed。
type State int

const (
	// StateInitiating 已创建，首条握手消息尚未发出
	StateInitiating State = iota

	// StateHandshakeInProgress 握手进行中
	StateHandshakeInProgress

	// StateEstablished 通道已建立，可收发数据
	StateEstablished

	// StateClosing 正在关闭
	StateClosing

	// StateClosed 已关闭
	StateClosed

	// StateFailed 握手失败或认证失败过多
	StateFailed
)

// String 返回状态的字符串表示
func (s State) String() string {
	switch s {
	case StateInitiating:
		return "initiating"
	case StateHandshakeInProgress:
		return "handshake_in_progress"
	case StateEstablished:
		return "established"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              worker - 通道端点
// ============================================================================

// worker 已建立隧道的一个端点
//
// 运行握手状态机，加密出站/解密入站载荷，附加身份附件并沿路由转发。
// 全部可变状态只在自己的邮箱 goroutine 上被访问，无锁。
//
// 每个 worker 注册两个共享一个邮箱的地址：
//   - localAddr：明文侧，应用向这里发送待加密的消息（即通道句柄）
//   - remoteAddr：线缆侧，对端向这里发送协议信封
type worker struct {
	n        *node.Node
	provider securityif.Provider
	policy   TrustPolicy
	role     securityif.Role
	sec      *metrics.Security

	maxDecryptFailures int

	localAddr  types.Address
	remoteAddr types.Address

	// remoteRoute 通往对端线缆地址的路由；每条握手消息的
	// 返回路由都会刷新它（隧道场景下路径随外层通道变化）
	remoteRoute types.Route

	hs      securityif.Handshake
	session securityif.Session

	// peer 对端已验证身份；当且仅当 Established 时非空
	peer types.Identifier

	state State

	// pending 建立完成前到达的应用消息，按序排队，建立后冲刷
	pending []*types.LocalMessage

	// confirmed 发起方是否已收到响应方的加密建立确认
	confirmed bool

	decryptFailures int

	// done 建立结果的 future：nil 表示成功，否则为失败原因
	done     chan error
	resolved bool
}

// newWorker 创建通道端点
func newWorker(n *node.Node, provider securityif.Provider, policy TrustPolicy, role securityif.Role, cfg *config) *worker {
	return &worker{
		n:                  n,
		provider:           provider,
		policy:             policy,
		role:               role,
		sec:                n.Metrics(),
		maxDecryptFailures: cfg.maxDecryptFailures,
		localAddr:          types.NewAddress(),
		remoteAddr:         types.NewAddress(),
		state:              StateInitiating,
		done:               make(chan error, 1),
	}
}

// register 注册两个地址，共享一个邮箱
func (w *worker) register() error {
	return w.n.Register(w, nil, w.localAddr, w.remoteAddr)
}

// ============================================================================
//                              创建与关闭
// ============================================================================

// CreateSecureChannel 向目标路由发起安全通道
//
// route 的末跳必须是一个通道监听器地址。阻塞直到通道建立
//（返回通道句柄：明文侧地址）或得到确定的失败原因：
// ErrTrustRejected、ErrHandshakeFailed、ErrPolicyEvaluation、
// ErrChannelClosed，或 ctx 结束。
func CreateSecureChannel(ctx context.Context, n *node.Node, route types.Route, policy TrustPolicy, provider securityif.Provider, opts ...Option) (types.Address, error) {
	if route.IsEmpty() {
		return types.EmptyAddress, types.ErrEmptyRoute
	}

	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	w := newWorker(n, provider, policy, securityif.RoleInitiator, cfg)
	w.remoteRoute = route

	if err := w.register(); err != nil {
		return types.EmptyAddress, err
	}

	if err := w.startHandshake(); err != nil {
		_ = n.Deregister(w.remoteAddr)
		return types.EmptyAddress, err
	}

	select {
	case err := <-w.done:
		if err != nil {
			return types.EmptyAddress, err
		}
		return w.localAddr, nil
	case <-ctx.Done():
		// 取消：释放 worker；等待方得到确定的失败而不是挂起
		_ = n.Deregister(w.remoteAddr)
		return types.EmptyAddress, ctx.Err()
	}
}

// CloseSecureChannel 关闭通道端点
//
// 注销通道的两个地址；随后路由到这些地址的消息以
// ErrAddressNotFound 失败，而不是挂起。
func CloseSecureChannel(n *node.Node, channelAddr types.Address) error {
	return n.Deregister(channelAddr)
}

// startHandshake 发出首条握手消息
//
// 在创建者 goroutine 上运行；此后 worker 状态只在邮箱 goroutine 上变化。
func (w *worker) startHandshake() error {
	hs, err := w.provider.NewHandshake(w.role)
	if err != nil {
		return fmt.Errorf("begin handshake: %w", err)
	}

	res, err := hs.Advance(nil)
	if err != nil {
		hs.Release()
		return err
	}

	w.hs = hs
	w.state = StateHandshakeInProgress
	w.sendWire(envHandshake, res.Outgoing)
	return nil
}

// ============================================================================
//                              消息处理
// ============================================================================

// HandleMessage 实现 runtime.Handler
//
// 握手消息与数据消息共享一个邮箱，严格按到达顺序处理。
func (w *worker) HandleMessage(dest types.Address, msg *types.LocalMessage) error {
	switch dest {
	case w.remoteAddr:
		return w.handleWire(msg)
	case w.localAddr:
		w.handleLocal(msg)
		return nil
	default:
		return fmt.Errorf("message for unexpected address %q", dest)
	}
}

// handleWire 处理线缆侧消息（协议信封）
func (w *worker) handleWire(msg *types.LocalMessage) error {
	kind, body, err := decodeEnvelope(msg.Payload)
	if err != nil {
		logger.Warn("malformed envelope dropped",
			"channel", log.TruncateID(string(w.localAddr), 8))
		return nil
	}

	switch kind {
	case envHandshake:
		w.handleHandshake(msg, body)
	case envData:
		w.handleData(body)
	case envDenied:
		w.handleDenied()
	}
	return nil
}

// handleHandshake 推进握手状态机
func (w *worker) handleHandshake(msg *types.LocalMessage, body []byte) {
	if w.state != StateHandshakeInProgress {
		logger.Warn("handshake message in unexpected state dropped",
			"channel", log.TruncateID(string(w.localAddr), 8), "state", w.state.String())
		return
	}

	// 刷新通往对端的路径（隧道场景下随外层通道变化）
	w.remoteRoute = msg.ReturnRoute

	res, err := w.hs.Advance(body)
	if err != nil {
		w.sec.HandshakesFailed.Inc()
		w.fail(err)
		return
	}

	if !res.Complete {
		if len(res.Outgoing) > 0 {
			w.sendWire(envHandshake, res.Outgoing)
		}
		return
	}

	// 信任策略：每次握手恰好求值一次，严格先于 Established，
	// 也先于发出最后一条握手消息——拒绝时不泄露任何数据
	accepted, perr := w.policy.Check(context.Background(), res.PeerIdentity)
	if perr != nil {
		w.fail(fmt.Errorf("%w: %v", types.ErrPolicyEvaluation, perr))
		return
	}
	if !accepted {
		w.sec.TrustRejections.Inc()
		logger.Info("peer identity rejected by trust policy",
			"channel", log.TruncateID(string(w.localAddr), 8),
			"peer", log.TruncateID(string(res.PeerIdentity), 12))
		if w.role == securityif.RoleResponder {
			// 向发起方发送拒绝通知（不携带细节），令其得到确定的失败
			w.sendWire(envDenied, nil)
		}
		w.fail(types.ErrTrustRejected)
		return
	}

	if len(res.Outgoing) > 0 {
		w.sendWire(envHandshake, res.Outgoing)
	}
	w.establish(res)
}

// establish 进入 Established
func (w *worker) establish(res *securityif.HandshakeResult) {
	w.hs = nil
	w.session = res.Session
	w.peer = res.PeerIdentity
	w.state = StateEstablished
	w.sec.HandshakesCompleted.Inc()

	logger.Debug("secure channel established",
		"channel", log.TruncateID(string(w.localAddr), 8),
		"role", w.role.String(),
		"peer", log.TruncateID(string(w.peer), 12))

	if w.role == securityif.RoleResponder {
		// 加密的零长度确认：发起方由此得到响应方策略已放行的信号
		w.sendConfirmation()
		w.flushPending()
		w.resolve(nil)
	}
	// 发起方等待确认后才冲刷与放行（拒绝时不得有数据流出）
}

// handleData 处理入站数据消息
func (w *worker) handleData(body []byte) {
	switch w.state {
	case StateEstablished:
	case StateInitiating, StateHandshakeInProgress:
		// 握手完成前的数据消息不得乱序处理
		logger.Warn("data message before establishment dropped",
			"channel", log.TruncateID(string(w.localAddr), 8))
		return
	default:
		return
	}

	plaintext, err := w.session.Decrypt(body)
	if err != nil {
		// 认证失败：丢弃，不转发，不向发送方反馈；本地可观测
		w.sec.DecryptFailures.Inc()
		w.decryptFailures++
		logger.Warn("message authentication failed",
			"channel", log.TruncateID(string(w.localAddr), 8),
			"failures", w.decryptFailures)
		if w.decryptFailures >= w.maxDecryptFailures {
			w.fail(types.ErrAuthenticationFailed)
		}
		return
	}

	if w.role == securityif.RoleInitiator && !w.confirmed {
		w.confirmed = true
		w.flushPending()
		w.resolve(nil)
	}

	inner, err := decodeInner(plaintext)
	if err != nil {
		logger.Warn("undecodable inner message dropped",
			"channel", log.TruncateID(string(w.localAddr), 8))
		return
	}

	// 空前向路由 = 纯建立确认，不转发
	if inner.OnwardRoute.IsEmpty() {
		return
	}

	// 认证解密成功：附加身份附件（覆盖外层跳点的同类附件），
	// 补全返回路由后沿缩短的前向路由转发——下一跳可能是
	// 最终目的地，也可能是另一个通道端点（隧道对本层透明）
	forward := types.NewLocalMessage(inner.Payload, inner.OnwardRoute, inner.ReturnRoute.Prepend(w.localAddr))
	forward.SetAttachment(NewLocalInfo(w.peer))

	w.sec.MessagesForwarded.Inc()
	if err := w.n.Route(forward); err != nil {
		logger.Warn("decrypted message could not be forwarded",
			"channel", log.TruncateID(string(w.localAddr), 8), "err", err)
	}
}

// handleDenied 处理响应方的信任拒绝通知
func (w *worker) handleDenied() {
	if w.role != securityif.RoleInitiator {
		return
	}
	switch w.state {
	case StateHandshakeInProgress:
		w.fail(types.ErrTrustRejected)
	case StateEstablished:
		if !w.confirmed {
			w.fail(types.ErrTrustRejected)
		}
	}
}

// handleLocal 处理明文侧（应用）消息
func (w *worker) handleLocal(msg *types.LocalMessage) {
	switch w.state {
	case StateEstablished:
		if w.role == securityif.RoleInitiator && !w.confirmed {
			w.pending = append(w.pending, msg)
			return
		}
		w.encryptAndForward(msg)
	case StateInitiating, StateHandshakeInProgress:
		// 通道未就绪：排队等待建立，不静默丢弃
		w.pending = append(w.pending, msg)
	default:
		logger.Warn("message to closed channel dropped",
			"channel", log.TruncateID(string(w.localAddr), 8),
			"err", types.ErrChannelClosed)
	}
}

// encryptAndForward 加密应用消息并发往对端
func (w *worker) encryptAndForward(msg *types.LocalMessage) {
	// 消费本通道跳点，剩余路由在对端继续
	inner := types.NewLocalMessage(msg.Payload, msg.OnwardRoute.Step(), msg.ReturnRoute)

	ciphertext, err := w.session.Encrypt(encodeInner(inner))
	if err != nil {
		logger.Error("encrypt failed, message dropped",
			"channel", log.TruncateID(string(w.localAddr), 8), "err", err)
		return
	}
	w.sendWire(envData, ciphertext)
}

// flushPending 按序冲刷建立前排队的应用消息
func (w *worker) flushPending() {
	pending := w.pending
	w.pending = nil
	for _, m := range pending {
		w.encryptAndForward(m)
	}
}

// sendConfirmation 发送加密的零长度建立确认
func (w *worker) sendConfirmation() {
	inner := types.NewLocalMessage(nil, types.Route{}, types.Route{})
	ciphertext, err := w.session.Encrypt(encodeInner(inner))
	if err != nil {
		logger.Error("encrypt confirmation failed",
			"channel", log.TruncateID(string(w.localAddr), 8), "err", err)
		return
	}
	w.sendWire(envData, ciphertext)
}

// sendWire 沿 remoteRoute 发送协议信封
func (w *worker) sendWire(kind byte, body []byte) {
	wire := types.NewLocalMessage(encodeEnvelope(kind, body), w.remoteRoute, types.NewRoute(w.remoteAddr))
	if err := w.n.Route(wire); err != nil {
		logger.Warn("wire send failed",
			"channel", log.TruncateID(string(w.localAddr), 8), "err", err)
	}
}

// ============================================================================
//                              终止
// ============================================================================

// fail 使通道进入 Failed 并释放资源
//
// 失败原因只上报给通道创建者（如仍在等待），不发往远端。
func (w *worker) fail(err error) {
	if w.hs != nil {
		w.hs.Release()
		w.hs = nil
	}
	w.session = nil
	w.peer = types.EmptyIdentifier
	w.pending = nil
	w.state = StateFailed
	w.resolve(err)
	_ = w.n.Deregister(w.remoteAddr)
}

// Shutdown 实现 node.ShutdownHandler
//
// 邮箱注销后在其 goroutine 上恰好调用一次；关闭中途的握手被释放，
// 仍在等待建立的创建者得到确定的失败而不是挂起。
func (w *worker) Shutdown() {
	switch w.state {
	case StateFailed, StateClosed:
	default:
		w.state = StateClosing
		if w.hs != nil {
			w.hs.Release()
			w.hs = nil
		}
		w.session = nil
		w.peer = types.EmptyIdentifier
		w.pending = nil
		w.state = StateClosed
	}
	w.resolve(types.ErrChannelClosed)
}

// resolve 解析建立 future（恰好一次）
func (w *worker) resolve(err error) {
	if w.resolved {
		return
	}
	w.resolved = true
	w.done <- err
}
