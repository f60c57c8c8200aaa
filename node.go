package securechannel

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-securechannel/internal/core/channel"
	"github.com/dep2p/go-securechannel/internal/core/metrics"
	"github.com/dep2p/go-securechannel/internal/core/node"
	securityif "github.com/dep2p/go-securechannel/pkg/interfaces/security"
	"github.com/dep2p/go-securechannel/pkg/lib/crypto"
	"github.com/dep2p/go-securechannel/pkg/lib/log"
)

var logger = log.Logger("securechannel")

// defaultLifecycleTimeout fx 启动/停止超时
const defaultLifecycleTimeout = 15 * time.Second

// ============================================================================
//                              Node - 节点
// ============================================================================

// Node 安全通道节点
//
// 一个节点 = 一个本地身份 + 加密提供者 + 路由运行时。
// 多个节点可通过 WithRuntime 共享同一运行时，实现进程内互通。
type Node struct {
	app      *fx.App
	identity *crypto.Ed25519Identity
	provider securityif.Provider
	rt       *node.Node
	sec      *metrics.Security
	chanOpts []channel.Option
}

// New 创建并启动节点
func New(opts ...Option) (*Node, error) {
	cfg := defaultNodeConfig()
	for _, o := range opts {
		o(cfg)
	}

	n := &Node{chanOpts: cfg.chanOpts}
	app := newApp(cfg, n)

	ctx, cancel := context.WithTimeout(context.Background(), defaultLifecycleTimeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	n.app = app

	logger.Debug("node started",
		"identifier", log.TruncateID(string(n.identity.Identifier()), 12))
	return n, nil
}

// Identifier 返回本地身份标识符
func (n *Node) Identifier() Identifier {
	return n.identity.Identifier()
}

// Identity 返回本地身份
func (n *Node) Identity() *Identity {
	return n.identity
}

// Runtime 返回路由运行时（可传给 WithRuntime 共享）
func (n *Node) Runtime() *Runtime {
	return n.rt
}

// ============================================================================
//                              安全通道操作
// ============================================================================

// CreateSecureChannelListener 在给定地址注册通道监听器
func (n *Node) CreateSecureChannelListener(addr Address, policy TrustPolicy) (*Listener, error) {
	return channel.CreateSecureChannelListener(n.rt, addr, policy, n.provider, n.chanOpts...)
}

// CreateSecureChannel 向目标路由发起安全通道
//
// 阻塞直到建立完成（返回通道句柄地址）或得到确定的失败：
// ErrTrustRejected、ErrHandshakeFailed、ErrPolicyEvaluation、
// ErrChannelClosed，或 ctx 结束。
func (n *Node) CreateSecureChannel(ctx context.Context, route Route, policy TrustPolicy) (Address, error) {
	return channel.CreateSecureChannel(ctx, n.rt, route, policy, n.provider, n.chanOpts...)
}

// CloseSecureChannel 关闭本节点创建的通道端点
func (n *Node) CloseSecureChannel(addr Address) error {
	return channel.CloseSecureChannel(n.rt, addr)
}

// ============================================================================
//                              Worker 与端点
// ============================================================================

// NewContext 注册一个应用端点
func (n *Node) NewContext() (*Context, error) {
	return n.rt.NewContext()
}

// StartWorker 在给定地址注册一个应用 Worker
//
// 用 WithAccessControl 选项保护投递。
func (n *Node) StartWorker(addr Address, h Handler, opts ...RegisterOption) error {
	return n.rt.Register(h, opts, addr)
}

// StopWorker 注销应用 Worker
func (n *Node) StopWorker(addr Address) error {
	return n.rt.Deregister(addr)
}

// ============================================================================
//                              关闭
// ============================================================================

// Stop 停止节点
//
// 自有的路由运行时随之关闭；共享的运行时不受影响。
func (n *Node) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultLifecycleTimeout)
	defer cancel()
	return n.app.Stop(ctx)
}
