package node

import (
	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-securechannel/internal/core/metrics"
	runtimeif "github.com/dep2p/go-securechannel/pkg/interfaces/runtime"
)

// ============================================================================
//                              运行时选项
// ============================================================================

// config 运行时配置
type config struct {
	clk clock.Clock
	sec *metrics.Security
}

// defaultConfig 默认配置
func defaultConfig() *config {
	return &config{
		clk: clock.New(),
		sec: metrics.NewSecurity(nil),
	}
}

// Option 运行时选项
type Option func(*config)

// WithClock 指定时钟（测试中可注入 mock 时钟）
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		c.clk = clk
	}
}

// WithMetrics 指定安全指标集合
func WithMetrics(sec *metrics.Security) Option {
	return func(c *config) {
		c.sec = sec
	}
}

// ============================================================================
//                              注册选项
// ============================================================================

// registerConfig 单次注册的配置
type registerConfig struct {
	ac          runtimeif.AccessControl
	mailboxSize int
}

// RegisterOption 注册选项
type RegisterOption func(*registerConfig)

// WithAccessControl 为注册的地址配置访问控制谓词
//
// 运行时在每次投递前求值该谓词；拒绝即静默丢弃。
func WithAccessControl(ac runtimeif.AccessControl) RegisterOption {
	return func(c *registerConfig) {
		c.ac = ac
	}
}

// WithMailboxSize 指定邮箱缓冲大小
func WithMailboxSize(size int) RegisterOption {
	return func(c *registerConfig) {
		if size > 0 {
			c.mailboxSize = size
		}
	}
}
