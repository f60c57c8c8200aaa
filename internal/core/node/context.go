package node

import (
	"context"
	"sync"
	"time"

	"github.com/dep2p/go-securechannel/pkg/types"
)

// ============================================================================
//                              Context - 应用端点
// ============================================================================

// Context 应用侧的可收发端点
//
// 持有一个独立地址和接收队列；应用代码（及测试）用它向任意路由
// 发送消息、并按到达顺序接收发给自己的消息。
type Context struct {
	n    *Node
	addr types.Address

	ch       chan *types.LocalMessage
	quit     chan struct{}
	quitOnce sync.Once
}

// NewContext 注册一个新的应用端点
func (n *Node) NewContext() (*Context, error) {
	c := &Context{
		n:    n,
		addr: types.NewAddress(),
		ch:   make(chan *types.LocalMessage, defaultMailboxSize),
		quit: make(chan struct{}),
	}

	if err := n.Register(c, nil, c.addr); err != nil {
		return nil, err
	}
	return c, nil
}

// Address 返回端点地址
func (c *Context) Address() types.Address {
	return c.addr
}

// HandleMessage 实现 runtime.Handler：消息入接收队列
func (c *Context) HandleMessage(_ types.Address, msg *types.LocalMessage) error {
	select {
	case c.ch <- msg:
	case <-c.quit:
	}
	return nil
}

// Shutdown 实现 ShutdownHandler
func (c *Context) Shutdown() {
	c.quitOnce.Do(func() {
		close(c.quit)
	})
}

// Send 沿路由发送载荷，返回路由指向本端点
func (c *Context) Send(route types.Route, payload []byte) error {
	msg := types.NewLocalMessage(payload, route, types.NewRoute(c.addr))
	return c.n.Route(msg)
}

// SendMessage 发送已构造的消息
func (c *Context) SendMessage(msg *types.LocalMessage) error {
	return c.n.Route(msg)
}

// Receive 接收下一条消息，阻塞直到消息到达或 ctx 结束
func (c *Context) Receive(ctx context.Context) (*types.LocalMessage, error) {
	select {
	case msg := <-c.ch:
		return msg, nil
	case <-c.quit:
		return nil, types.ErrNodeStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ReceiveTimeout 接收下一条消息，超时返回 ErrReceiveTimeout
func (c *Context) ReceiveTimeout(d time.Duration) (*types.LocalMessage, error) {
	t := c.n.clk.Timer(d)
	defer t.Stop()

	select {
	case msg := <-c.ch:
		return msg, nil
	case <-c.quit:
		return nil, types.ErrNodeStopped
	case <-t.C:
		return nil, types.ErrReceiveTimeout
	}
}

// Stop 注销端点
func (c *Context) Stop() error {
	return c.n.Deregister(c.addr)
}
