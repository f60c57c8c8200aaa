package node

import (
	"sync"

	runtimeif "github.com/dep2p/go-securechannel/pkg/interfaces/runtime"
	"github.com/dep2p/go-securechannel/pkg/lib/log"
	"github.com/dep2p/go-securechannel/pkg/types"
)

// defaultMailboxSize 邮箱缓冲大小
const defaultMailboxSize = 128

// ============================================================================
//                              ShutdownHandler
// ============================================================================

// ShutdownHandler 需要注销回调的处理器可选实现本接口
//
// Shutdown 在邮箱处理完最后一条消息后、在邮箱自己的 goroutine 上
// 恰好调用一次，因此与 HandleMessage 之间不存在数据竞争。
type ShutdownHandler interface {
	Shutdown()
}

// ============================================================================
//                              mailbox - 邮箱
// ============================================================================

// delivery 一次投递：消息与其实际送达的地址
type delivery struct {
	dest types.Address
	msg  *types.LocalMessage
}

// mailbox actor 的私有邮箱
//
// 一个邮箱可服务多个地址（别名），但只有一个消费 goroutine，
// 保证该 actor 的消息严格按到达顺序处理。
type mailbox struct {
	handler runtimeif.Handler
	ac      runtimeif.AccessControl
	addrs   []types.Address

	ch       chan delivery
	quit     chan struct{}
	stopOnce sync.Once
}

// newMailbox 创建邮箱
func newMailbox(handler runtimeif.Handler, ac runtimeif.AccessControl, size int, addrs []types.Address) *mailbox {
	a := make([]types.Address, len(addrs))
	copy(a, addrs)
	return &mailbox{
		handler: handler,
		ac:      ac,
		addrs:   a,
		ch:      make(chan delivery, size),
		quit:    make(chan struct{}),
	}
}

// deliver 入队一次投递
//
// 返回 false 表示邮箱已停止。
func (m *mailbox) deliver(dest types.Address, msg *types.LocalMessage) bool {
	select {
	case <-m.quit:
		return false
	default:
	}

	select {
	case m.ch <- delivery{dest: dest, msg: msg}:
		return true
	case <-m.quit:
		return false
	}
}

// run 邮箱消费循环
//
// 一次处理一条消息；退出前触发处理器的 Shutdown 回调。
func (m *mailbox) run() {
	defer func() {
		if sh, ok := m.handler.(ShutdownHandler); ok {
			sh.Shutdown()
		}
	}()

	for {
		select {
		case <-m.quit:
			return
		default:
		}

		select {
		case d := <-m.ch:
			if err := m.handler.HandleMessage(d.dest, d.msg); err != nil {
				// 处理器错误只做本地记录，不回传发送方
				logger.Warn("handler error",
					"dest", log.TruncateID(string(d.dest), 8), "err", err)
			}
		case <-m.quit:
			return
		}
	}
}

// stop 停止邮箱
//
// 非阻塞：只发出停止信号，不等待消费 goroutine 退出，
// 因此可以从处理器内部调用。
func (m *mailbox) stop() {
	m.stopOnce.Do(func() {
		close(m.quit)
	})
}
