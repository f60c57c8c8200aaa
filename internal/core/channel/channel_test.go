package channel

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-securechannel/internal/core/node"
	"github.com/dep2p/go-securechannel/internal/core/security/noise"
	securityif "github.com/dep2p/go-securechannel/pkg/interfaces/security"
	"github.com/dep2p/go-securechannel/pkg/lib/crypto"
	"github.com/dep2p/go-securechannel/pkg/types"
)

func newTestNode(t *testing.T) *node.Node {
	t.Helper()
	n := node.New()
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func newTestProvider(t *testing.T) (*noise.Provider, types.Identifier) {
	t.Helper()
	id, err := crypto.GenerateIdentity()
	require.NoError(t, err)
	p, err := noise.New(id)
	require.NoError(t, err)
	return p, id.Identifier()
}

// errorPolicy 求值失败的信任策略
type errorPolicy struct{}

func (errorPolicy) Check(context.Context, types.Identifier) (bool, error) {
	return false, fmt.Errorf("trust data unavailable")
}

// ============================================================================
//                              建立测试
// ============================================================================

func TestChannel_Establish(t *testing.T) {
	n := newTestNode(t)
	aliceProv, _ := newTestProvider(t)
	bobProv, _ := newTestProvider(t)

	l, err := CreateSecureChannelListener(n, "bob_listener", TrustEveryonePolicy{}, bobProv)
	require.NoError(t, err)
	require.Equal(t, types.Address("bob_listener"), l.Address())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ch, err := CreateSecureChannel(ctx, n, types.NewRoute("bob_listener"), TrustEveryonePolicy{}, aliceProv)
	require.NoError(t, err)
	require.False(t, ch.IsEmpty())
}

func TestChannel_EmptyRoute(t *testing.T) {
	n := newTestNode(t)
	prov, _ := newTestProvider(t)

	_, err := CreateSecureChannel(context.Background(), n, types.Route{}, TrustEveryonePolicy{}, prov)
	require.ErrorIs(t, err, types.ErrEmptyRoute)
}

func TestChannel_PingPong(t *testing.T) {
	n := newTestNode(t)
	aliceProv, aliceID := newTestProvider(t)
	bobProv, bobID := newTestProvider(t)

	_, err := CreateSecureChannelListener(n, "bob_listener", TrustEveryonePolicy{}, bobProv)
	require.NoError(t, err)

	aliceCtx, err := n.NewContext()
	require.NoError(t, err)
	bobCtx, err := n.NewContext()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ch, err := CreateSecureChannel(ctx, n, types.NewRoute("bob_listener"), TrustEveryonePolicy{}, aliceProv)
	require.NoError(t, err)

	// alice 经通道向 bob 的端点发 ping
	require.NoError(t, aliceCtx.Send(types.NewRoute(ch, bobCtx.Address()), []byte("ping")))

	msg, err := bobCtx.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("ping"), msg.Payload)

	// bob 看到 alice 已验证的身份
	got, err := FindLocalInfo(msg)
	require.NoError(t, err)
	require.Equal(t, aliceID, got)

	// 沿返回路由回 pong：穿过 bob 端的通道地址回到 alice
	require.NoError(t, bobCtx.Send(msg.ReturnRoute, []byte("pong")))

	reply, err := aliceCtx.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("pong"), reply.Payload)

	got, err = FindLocalInfo(reply)
	require.NoError(t, err)
	require.Equal(t, bobID, got)
}

func TestChannel_QueuedBeforeEstablish(t *testing.T) {
	// 建立完成前发往通道地址的应用消息排队，不丢弃
	n := newTestNode(t)
	aliceProv, _ := newTestProvider(t)
	bobProv, _ := newTestProvider(t)

	_, err := CreateSecureChannelListener(n, "bob_listener", TrustEveryonePolicy{}, bobProv)
	require.NoError(t, err)

	bobCtx, err := n.NewContext()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ch, err := CreateSecureChannel(ctx, n, types.NewRoute("bob_listener"), TrustEveryonePolicy{}, aliceProv)
	require.NoError(t, err)

	for i := byte(0); i < 5; i++ {
		msg := types.NewLocalMessage([]byte{i}, types.NewRoute(ch, bobCtx.Address()), types.Route{})
		require.NoError(t, n.Route(msg))
	}
	// 到达顺序保持
	for i := byte(0); i < 5; i++ {
		msg, err := bobCtx.Receive(ctx)
		require.NoError(t, err)
		require.Equal(t, []byte{i}, msg.Payload)
	}
}

// ============================================================================
//                              信任策略拒绝测试
// ============================================================================

func TestChannel_ResponderRejects(t *testing.T) {
	// 响应方策略只信 carol；alice 得到确定的拒绝，而不是挂起
	n := newTestNode(t)
	aliceProv, _ := newTestProvider(t)
	bobProv, _ := newTestProvider(t)
	_, carolID := newTestProvider(t)

	_, err := CreateSecureChannelListener(n, "bob_listener", NewTrustIdentifierPolicy(carolID), bobProv)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = CreateSecureChannel(ctx, n, types.NewRoute("bob_listener"), TrustEveryonePolicy{}, aliceProv)
	require.ErrorIs(t, err, types.ErrTrustRejected)
}

func TestChannel_InitiatorRejects(t *testing.T) {
	n := newTestNode(t)
	aliceProv, _ := newTestProvider(t)
	bobProv, _ := newTestProvider(t)
	_, carolID := newTestProvider(t)

	_, err := CreateSecureChannelListener(n, "bob_listener", TrustEveryonePolicy{}, bobProv)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = CreateSecureChannel(ctx, n, types.NewRoute("bob_listener"), NewTrustIdentifierPolicy(carolID), aliceProv)
	require.ErrorIs(t, err, types.ErrTrustRejected)
}

func TestChannel_PolicyEvaluationError(t *testing.T) {
	// 无法求值区别于拒绝
	n := newTestNode(t)
	aliceProv, _ := newTestProvider(t)
	bobProv, _ := newTestProvider(t)

	_, err := CreateSecureChannelListener(n, "bob_listener", TrustEveryonePolicy{}, bobProv)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = CreateSecureChannel(ctx, n, types.NewRoute("bob_listener"), errorPolicy{}, aliceProv)
	require.ErrorIs(t, err, types.ErrPolicyEvaluation)
}

// ============================================================================
//                              关闭与失效测试
// ============================================================================

func TestChannel_Close(t *testing.T) {
	n := newTestNode(t)
	aliceProv, _ := newTestProvider(t)
	bobProv, _ := newTestProvider(t)

	_, err := CreateSecureChannelListener(n, "bob_listener", TrustEveryonePolicy{}, bobProv)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ch, err := CreateSecureChannel(ctx, n, types.NewRoute("bob_listener"), TrustEveryonePolicy{}, aliceProv)
	require.NoError(t, err)

	require.NoError(t, CloseSecureChannel(n, ch))

	// 关闭后发送失败，而不是挂起或静默丢弃
	msg := types.NewLocalMessage([]byte("late"), types.NewRoute(ch), types.Route{})
	require.ErrorIs(t, n.Route(msg), types.ErrAddressNotFound)
}

func TestChannel_CreateCancelled(t *testing.T) {
	// 监听器不存在：握手消息无处可去，创建随 ctx 结束
	n := newTestNode(t)
	prov, _ := newTestProvider(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := CreateSecureChannel(ctx, n, types.NewRoute("nobody_listens"), TrustEveryonePolicy{}, prov)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChannel_DecryptFailureThreshold(t *testing.T) {
	// 白盒：手动驱动发起方 worker 以得知其线缆地址，
	// 注入损坏的数据信封直至达到阈值，通道必须失效并注销
	n := newTestNode(t)
	aliceProv, _ := newTestProvider(t)
	bobProv, _ := newTestProvider(t)

	_, err := CreateSecureChannelListener(n, "bob_listener", TrustEveryonePolicy{}, bobProv)
	require.NoError(t, err)

	cfg := defaultConfig()
	WithMaxDecryptFailures(3)(cfg)

	w := newWorker(n, aliceProv, TrustEveryonePolicy{}, securityif.RoleInitiator, cfg)
	w.remoteRoute = types.NewRoute("bob_listener")
	require.NoError(t, w.register())
	require.NoError(t, w.startHandshake())

	select {
	case err := <-w.done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("channel not established within 10s")
	}

	// 阈值以下：损坏消息被丢弃，通道保持可用
	inject := func() {
		bad := encodeEnvelope(envData, []byte("not a valid ciphertext"))
		msg := types.NewLocalMessage(bad, types.NewRoute(w.remoteAddr), types.Route{})
		require.NoError(t, n.Route(msg))
	}
	inject()
	inject()

	stillUp := types.NewLocalMessage(nil, types.NewRoute(w.remoteAddr), types.Route{})
	require.NoError(t, n.Route(stillUp))

	// 第三次达到阈值：两个地址注销，后续路由确定失败
	inject()
	require.Eventually(t, func() bool {
		msg := types.NewLocalMessage(nil, types.NewRoute(w.localAddr), types.Route{})
		return errors.Is(n.Route(msg), types.ErrAddressNotFound)
	}, 5*time.Second, 10*time.Millisecond, "channel not torn down after reaching failure threshold")
}

// ============================================================================
//                              监听器测试
// ============================================================================

func TestListener_DropsNonHandshake(t *testing.T) {
	n := newTestNode(t)
	aliceProv, _ := newTestProvider(t)
	bobProv, _ := newTestProvider(t)

	_, err := CreateSecureChannelListener(n, "bob_listener", TrustEveryonePolicy{}, bobProv)
	require.NoError(t, err)

	// 垃圾消息与数据信封都被监听器丢弃
	garbage := types.NewLocalMessage([]byte("garbage"), types.NewRoute("bob_listener"), types.Route{})
	require.NoError(t, n.Route(garbage))
	data := types.NewLocalMessage(encodeEnvelope(envData, []byte("x")), types.NewRoute("bob_listener"), types.Route{})
	require.NoError(t, n.Route(data))

	// 监听器不受影响，仍能接受新通道
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = CreateSecureChannel(ctx, n, types.NewRoute("bob_listener"), TrustEveryonePolicy{}, aliceProv)
	require.NoError(t, err)
}

func TestListener_ConcurrentChannels(t *testing.T) {
	// 一个监听器服务多个相互独立的通道
	n := newTestNode(t)
	bobProv, _ := newTestProvider(t)

	_, err := CreateSecureChannelListener(n, "bob_listener", TrustEveryonePolicy{}, bobProv)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addrs := make(map[types.Address]bool)
	for i := 0; i < 3; i++ {
		prov, _ := newTestProvider(t)
		ch, err := CreateSecureChannel(ctx, n, types.NewRoute("bob_listener"), TrustEveryonePolicy{}, prov)
		require.NoError(t, err)
		require.False(t, addrs[ch], "channel addresses must be distinct")
		addrs[ch] = true
	}
}

func TestListener_Stop(t *testing.T) {
	n := newTestNode(t)
	bobProv, _ := newTestProvider(t)

	l, err := CreateSecureChannelListener(n, "bob_listener", TrustEveryonePolicy{}, bobProv)
	require.NoError(t, err)

	require.NoError(t, l.Stop())
	require.ErrorIs(t, l.Stop(), types.ErrAddressNotFound)
}
