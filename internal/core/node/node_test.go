package node

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	runtimeif "github.com/dep2p/go-securechannel/pkg/interfaces/runtime"
	"github.com/dep2p/go-securechannel/pkg/types"
)

// collector 把收到的投递写入 channel 的测试处理器
type collector struct {
	ch chan delivery
}

func newCollector() *collector {
	return &collector{ch: make(chan delivery, 256)}
}

func (c *collector) HandleMessage(dest types.Address, msg *types.LocalMessage) error {
	c.ch <- delivery{dest: dest, msg: msg}
	return nil
}

func (c *collector) next(t *testing.T) delivery {
	t.Helper()
	select {
	case d := <-c.ch:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("no delivery within 5s")
		return delivery{}
	}
}

// denyAll 总是拒绝的访问控制
type denyAll struct{}

func (denyAll) IsAuthorized(*types.LocalMessage) (bool, error) { return false, nil }

// brokenAC 无法求值的访问控制
type brokenAC struct{}

func (brokenAC) IsAuthorized(*types.LocalMessage) (bool, error) {
	return true, fmt.Errorf("lookup unavailable")
}

// ============================================================================
//                              路由测试
// ============================================================================

func TestNode_RegisterAndRoute(t *testing.T) {
	n := New()
	defer n.Close()

	c := newCollector()
	require.NoError(t, n.Register(c, nil, "worker"))

	msg := types.NewLocalMessage([]byte("hello"), types.NewRoute("worker"), types.Route{})
	require.NoError(t, n.Route(msg))

	d := c.next(t)
	require.Equal(t, types.Address("worker"), d.dest)
	require.Equal(t, []byte("hello"), d.msg.Payload)
}

func TestNode_RouteUnknownAddress(t *testing.T) {
	n := New()
	defer n.Close()

	msg := types.NewLocalMessage(nil, types.NewRoute("nobody"), types.Route{})
	require.ErrorIs(t, n.Route(msg), types.ErrAddressNotFound)
}

func TestNode_Deregister(t *testing.T) {
	n := New()
	defer n.Close()

	c := newCollector()
	require.NoError(t, n.Register(c, nil, "worker"))
	require.NoError(t, n.Deregister("worker"))

	// 注销后路由失败，而不是挂起
	msg := types.NewLocalMessage(nil, types.NewRoute("worker"), types.Route{})
	require.ErrorIs(t, n.Route(msg), types.ErrAddressNotFound)

	require.ErrorIs(t, n.Deregister("worker"), types.ErrAddressNotFound)
}

func TestNode_Aliases(t *testing.T) {
	// 一个邮箱服务多个地址；dest 标明实际送达地址；
	// 注销任一地址即注销全部别名
	n := New()
	defer n.Close()

	c := newCollector()
	require.NoError(t, n.Register(c, nil, "plain", "wire"))

	require.NoError(t, n.Route(types.NewLocalMessage(nil, types.NewRoute("wire"), types.Route{})))
	require.Equal(t, types.Address("wire"), c.next(t).dest)

	require.NoError(t, n.Route(types.NewLocalMessage(nil, types.NewRoute("plain"), types.Route{})))
	require.Equal(t, types.Address("plain"), c.next(t).dest)

	require.NoError(t, n.Deregister("wire"))
	err := n.Route(types.NewLocalMessage(nil, types.NewRoute("plain"), types.Route{}))
	require.ErrorIs(t, err, types.ErrAddressNotFound)
}

func TestNode_DuplicateAddress(t *testing.T) {
	n := New()
	defer n.Close()

	require.NoError(t, n.Register(newCollector(), nil, "worker"))
	require.Error(t, n.Register(newCollector(), nil, "worker"))
}

func TestNode_FIFOOrder(t *testing.T) {
	// 同一发送方到同一 Worker 的消息按发送顺序处理
	n := New()
	defer n.Close()

	c := newCollector()
	require.NoError(t, n.Register(c, nil, "worker"))

	const count = 100
	for i := 0; i < count; i++ {
		payload := []byte{byte(i)}
		require.NoError(t, n.Route(types.NewLocalMessage(payload, types.NewRoute("worker"), types.Route{})))
	}
	for i := 0; i < count; i++ {
		d := c.next(t)
		require.Equal(t, byte(i), d.msg.Payload[0], "out of order at %d", i)
	}
}

// ============================================================================
//                              访问控制测试
// ============================================================================

func TestNode_AccessControlDeny(t *testing.T) {
	n := New()
	defer n.Close()

	c := newCollector()
	opts := []RegisterOption{WithAccessControl(denyAll{})}
	require.NoError(t, n.Register(c, opts, "protected"))

	// 拒绝是静默的：Route 返回 nil，消息不送达
	require.NoError(t, n.Route(types.NewLocalMessage(nil, types.NewRoute("protected"), types.Route{})))

	select {
	case <-c.ch:
		t.Fatal("message delivered despite access control denial")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNode_AccessControlError(t *testing.T) {
	// 谓词无法求值：fail closed
	n := New()
	defer n.Close()

	c := newCollector()
	opts := []RegisterOption{WithAccessControl(brokenAC{})}
	require.NoError(t, n.Register(c, opts, "protected"))

	require.NoError(t, n.Route(types.NewLocalMessage(nil, types.NewRoute("protected"), types.Route{})))

	select {
	case <-c.ch:
		t.Fatal("message delivered despite predicate failure")
	case <-time.After(200 * time.Millisecond):
	}
}

// ============================================================================
//                              Context 测试
// ============================================================================

func TestContext_SendReceive(t *testing.T) {
	n := New()
	defer n.Close()

	a, err := n.NewContext()
	require.NoError(t, err)
	b, err := n.NewContext()
	require.NoError(t, err)

	require.NoError(t, a.Send(types.NewRoute(b.Address()), []byte("ping")))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msg, err := b.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("ping"), msg.Payload)

	// 返回路由指向发送方
	next, err := msg.ReturnRoute.Next()
	require.NoError(t, err)
	require.Equal(t, a.Address(), next)
}

func TestContext_ReceiveTimeout(t *testing.T) {
	n := New()
	defer n.Close()

	c, err := n.NewContext()
	require.NoError(t, err)

	_, err = c.ReceiveTimeout(50 * time.Millisecond)
	require.ErrorIs(t, err, types.ErrReceiveTimeout)
}

func TestHandlerFunc(t *testing.T) {
	n := New()
	defer n.Close()

	got := make(chan []byte, 1)
	h := runtimeif.HandlerFunc(func(_ types.Address, msg *types.LocalMessage) error {
		got <- msg.Payload
		return nil
	})
	require.NoError(t, n.Register(h, nil, "fn"))
	require.NoError(t, n.Route(types.NewLocalMessage([]byte("x"), types.NewRoute("fn"), types.Route{})))

	select {
	case p := <-got:
		require.Equal(t, []byte("x"), p)
	case <-time.After(5 * time.Second):
		t.Fatal("handler not invoked")
	}
}
