package channel

import (
	"fmt"

	"github.com/dep2p/go-securechannel/internal/core/node"
	securityif "github.com/dep2p/go-securechannel/pkg/interfaces/security"
	"github.com/dep2p/go-securechannel/pkg/lib/log"
	"github.com/dep2p/go-securechannel/pkg/types"
)

// ============================================================================
//                              Listener - 通道监听器
// ============================================================================

// Listener 安全通道监听器
//
// 在一个公开地址上被动接受通道创建请求：每收到一条握手发起消息，
// 就孵化一个绑定全新地址的响应方 Worker，以监听器的信任策略为种子，
// 并把发起消息转投给该 Worker 继续握手。
//
// 监听器状态创建后不可变：一个监听器可并发服务任意多个相互独立的
// Worker，各 Worker 的握手成败完全不影响监听器本身。
type Listener struct {
	n        *node.Node
	provider securityif.Provider
	policy   TrustPolicy
	addr     types.Address
	cfg      *config
}

// CreateSecureChannelListener 注册通道监听器
func CreateSecureChannelListener(n *node.Node, addr types.Address, policy TrustPolicy, provider securityif.Provider, opts ...Option) (*Listener, error) {
	if addr.IsEmpty() {
		return nil, fmt.Errorf("listener address is empty")
	}

	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	l := &Listener{
		n:        n,
		provider: provider,
		policy:   policy,
		addr:     addr,
		cfg:      cfg,
	}

	if err := n.Register(l, nil, addr); err != nil {
		return nil, err
	}

	logger.Debug("secure channel listener registered",
		"addr", log.TruncateID(string(addr), 8))
	return l, nil
}

// Address 返回监听地址
func (l *Listener) Address() types.Address {
	return l.addr
}

// HandleMessage 实现 runtime.Handler
//
// 只接受握手发起信封；其余消息丢弃。
func (l *Listener) HandleMessage(_ types.Address, msg *types.LocalMessage) error {
	kind, _, err := decodeEnvelope(msg.Payload)
	if err != nil || kind != envHandshake {
		logger.Warn("non-initiation message at listener dropped",
			"addr", log.TruncateID(string(l.addr), 8))
		return nil
	}
	return l.spawnWorker(msg)
}

// spawnWorker 为一次握手发起孵化响应方 Worker
func (l *Listener) spawnWorker(initiation *types.LocalMessage) error {
	w := newWorker(l.n, l.provider, l.policy, securityif.RoleResponder, l.cfg)

	hs, err := l.provider.NewHandshake(securityif.RoleResponder)
	if err != nil {
		return fmt.Errorf("begin responder handshake: %w", err)
	}
	w.hs = hs
	w.state = StateHandshakeInProgress

	if err := w.register(); err != nil {
		hs.Release()
		return err
	}

	// 把发起消息转投给新 Worker 的线缆地址，保留返回路由，
	// 使 Worker 知道如何把握手应答送回发起方
	fwd := types.NewLocalMessage(initiation.Payload, types.NewRoute(w.remoteAddr), initiation.ReturnRoute)
	return l.n.Route(fwd)
}

// Stop 注销监听器
//
// 已孵化的 Worker 不受影响。
func (l *Listener) Stop() error {
	return l.n.Deregister(l.addr)
}
