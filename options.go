package securechannel

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-securechannel/internal/core/channel"
	"github.com/dep2p/go-securechannel/internal/core/node"
	"github.com/dep2p/go-securechannel/pkg/lib/crypto"
)

// ============================================================================
//                              节点选项
// ============================================================================

// config 节点配置
type config struct {
	identity   *crypto.Ed25519Identity
	runtime    *node.Node
	registerer prometheus.Registerer
	clk        clock.Clock
	chanOpts   []channel.Option
}

// defaultNodeConfig 默认配置
func defaultNodeConfig() *config {
	return &config{
		clk: clock.New(),
	}
}

// Option 节点选项
type Option func(*config)

// WithIdentity 使用已有身份（默认生成新身份）
func WithIdentity(id *Identity) Option {
	return func(c *config) {
		c.identity = id
	}
}

// WithRuntime 共享一个已有的路由运行时
//
// 同一运行时内的多个节点可以互相寻址（进程内通信）。
// 共享的运行时不随本节点 Stop 关闭，由其创建者负责。
func WithRuntime(rt *Runtime) Option {
	return func(c *config) {
		c.runtime = rt
	}
}

// WithRegisterer 注册安全指标到给定的 Prometheus registerer
//
// 默认不注册（计数器仍然工作，只是不被抓取）。
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

// WithClock 指定时钟（测试中可注入 mock 时钟）
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		c.clk = clk
	}
}

// WithMaxDecryptFailures 设置本节点所建通道的认证失败阈值
func WithMaxDecryptFailures(n int) Option {
	return func(c *config) {
		c.chanOpts = append(c.chanOpts, channel.WithMaxDecryptFailures(n))
	}
}
