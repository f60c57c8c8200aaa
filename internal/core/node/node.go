package node

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-securechannel/internal/core/metrics"
	runtimeif "github.com/dep2p/go-securechannel/pkg/interfaces/runtime"
	"github.com/dep2p/go-securechannel/pkg/lib/log"
	"github.com/dep2p/go-securechannel/pkg/types"
)

var logger = log.Logger("core/node")

// ============================================================================
//                              Node - 路由运行时
// ============================================================================

// Node 消息路由运行时
type Node struct {
	mu        sync.RWMutex
	mailboxes map[types.Address]*mailbox
	stopped   bool

	clk clock.Clock
	sec *metrics.Security
	wg  sync.WaitGroup
}

// New 创建路由运行时
func New(opts ...Option) *Node {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	return &Node{
		mailboxes: make(map[types.Address]*mailbox),
		clk:       cfg.clk,
		sec:       cfg.sec,
	}
}

// Clock 返回运行时使用的时钟
func (n *Node) Clock() clock.Clock {
	return n.clk
}

// Metrics 返回安全指标集合
func (n *Node) Metrics() *metrics.Security {
	return n.sec
}

// ============================================================================
//                              注册与注销
// ============================================================================

// Register 注册一个 actor，服务一个或多个地址
//
// 同一 actor 的多个地址共享一个邮箱：消息严格按到达顺序处理。
// 处理器如实现 ShutdownHandler，注销后会在邮箱 goroutine 上收到回调。
func (n *Node) Register(handler runtimeif.Handler, opts []RegisterOption, addrs ...types.Address) error {
	if len(addrs) == 0 {
		return types.ErrEmptyRoute
	}

	rc := &registerConfig{mailboxSize: defaultMailboxSize}
	for _, o := range opts {
		o(rc)
	}

	mb := newMailbox(handler, rc.ac, rc.mailboxSize, addrs)

	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return types.ErrNodeStopped
	}
	for _, a := range addrs {
		if _, exists := n.mailboxes[a]; exists {
			n.mu.Unlock()
			return fmt.Errorf("register %q: address already in use", a)
		}
	}
	for _, a := range addrs {
		n.mailboxes[a] = mb
	}
	n.mu.Unlock()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		mb.run()
	}()

	return nil
}

// Deregister 注销地址
//
// 注销该地址所属邮箱的全部别名地址。随后路由到这些地址的消息
// 以 ErrAddressNotFound 失败，而不是挂起。
// 可以从邮箱自身的处理器内安全调用（不等待 goroutine 退出）。
func (n *Node) Deregister(addr types.Address) error {
	n.mu.Lock()
	mb, ok := n.mailboxes[addr]
	if !ok {
		n.mu.Unlock()
		return fmt.Errorf("deregister %q: %w", addr, types.ErrAddressNotFound)
	}
	for _, a := range mb.addrs {
		delete(n.mailboxes, a)
	}
	n.mu.Unlock()

	mb.stop()
	return nil
}

// ============================================================================
//                              路由
// ============================================================================

// Route 将消息路由到其前向路由的下一跳
//
// 下一跳未注册返回 ErrAddressNotFound。目的地配置了访问控制时，
// 谓词逐条消息求值（绝不缓存），拒绝即静默丢弃并返回 nil。
func (n *Node) Route(msg *types.LocalMessage) error {
	dest, err := msg.OnwardRoute.Next()
	if err != nil {
		return err
	}

	n.mu.RLock()
	mb, ok := n.mailboxes[dest]
	stopped := n.stopped
	n.mu.RUnlock()

	if stopped {
		return types.ErrNodeStopped
	}
	if !ok {
		return fmt.Errorf("route to %q: %w", dest, types.ErrAddressNotFound)
	}

	if mb.ac != nil {
		authorized, err := mb.ac.IsAuthorized(msg)
		if err != nil {
			// 谓词无法求值：fail closed，丢弃并记录
			logger.Error("access control evaluation failed",
				"dest", log.TruncateID(string(dest), 8), "err", err)
			if n.sec != nil {
				n.sec.AccessControlDrops.Inc()
			}
			return nil
		}
		if !authorized {
			logger.Debug("message dropped by access control",
				"dest", log.TruncateID(string(dest), 8))
			if n.sec != nil {
				n.sec.AccessControlDrops.Inc()
			}
			return nil
		}
	}

	if !mb.deliver(dest, msg) {
		return fmt.Errorf("route to %q: %w", dest, types.ErrAddressNotFound)
	}
	return nil
}

// ============================================================================
//                              关闭
// ============================================================================

// Close 停止运行时
//
// 注销全部邮箱并等待所有 actor goroutine 退出。
func (n *Node) Close() error {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return nil
	}
	n.stopped = true
	boxes := make(map[*mailbox]struct{}, len(n.mailboxes))
	for _, mb := range n.mailboxes {
		boxes[mb] = struct{}{}
	}
	n.mailboxes = make(map[types.Address]*mailbox)
	n.mu.Unlock()

	for mb := range boxes {
		mb.stop()
	}
	n.wg.Wait()

	return nil
}
