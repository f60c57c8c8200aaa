package securechannel

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-securechannel/internal/core/metrics"
	"github.com/dep2p/go-securechannel/internal/core/node"
	"github.com/dep2p/go-securechannel/internal/core/security/noise"
	securityif "github.com/dep2p/go-securechannel/pkg/interfaces/security"
	"github.com/dep2p/go-securechannel/pkg/lib/crypto"
)

// ============================================================================
//                              Fx 装配
// ============================================================================

// newApp 装配节点的各组件
//
// 组件图：身份 → 加密提供者；指标 → 路由运行时。
// 共享运行时（WithRuntime）时直接复用，且不挂接其关闭钩子。
func newApp(cfg *config, n *Node) *fx.App {
	return fx.New(
		fx.NopLogger,

		fx.Provide(
			// 身份：优先使用配置注入的身份
			func() (*crypto.Ed25519Identity, error) {
				if cfg.identity != nil {
					return cfg.identity, nil
				}
				return crypto.GenerateIdentity()
			},

			// 加密提供者
			func(id *crypto.Ed25519Identity) (securityif.Provider, error) {
				return noise.New(id)
			},

			// 安全指标：共享运行时时沿用其指标集合
			func() *metrics.Security {
				if cfg.runtime != nil {
					return cfg.runtime.Metrics()
				}
				return metrics.NewSecurity(cfg.registerer)
			},

			// 路由运行时
			func(sec *metrics.Security) *node.Node {
				if cfg.runtime != nil {
					return cfg.runtime
				}
				return node.New(node.WithClock(cfg.clk), node.WithMetrics(sec))
			},
		),

		fx.Populate(&n.identity, &n.provider, &n.sec, &n.rt),

		fx.Invoke(func(lc fx.Lifecycle, rt *node.Node) {
			if cfg.runtime != nil {
				return
			}
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					return rt.Close()
				},
			})
		}),
	)
}
