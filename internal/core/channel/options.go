package channel

// defaultMaxDecryptFailures 强制通道失效前允许的累计认证失败数
//
// 阈值可配置（见 WithMaxDecryptFailures）：观测到的参考行为
// 未完全规定该值，部署方应按自身威胁模型调整。
const defaultMaxDecryptFailures = 8

// ============================================================================
//                              通道选项
// ============================================================================

// config 通道配置
type config struct {
	maxDecryptFailures int
}

// defaultConfig 默认配置
func defaultConfig() *config {
	return &config{
		maxDecryptFailures: defaultMaxDecryptFailures,
	}
}

// Option 通道选项
type Option func(*config)

// WithMaxDecryptFailures 设置认证失败阈值
//
// 已建立的通道上累计认证失败达到该值时，通道强制进入 Failed
// 并注销地址（防止对破坏状态的持续利用）。
func WithMaxDecryptFailures(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDecryptFailures = n
		}
	}
}
