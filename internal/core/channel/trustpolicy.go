package channel

import (
	"context"

	"github.com/dep2p/go-securechannel/pkg/types"
)

// ============================================================================
//                              TrustPolicy - 信任策略
// ============================================================================

// TrustPolicy 信任策略
//
// 每次握手恰好求值一次，严格先于通道进入 Established；
// 拒绝使该次握手永久失败（同一次握手不重试）。
//
// 实现集合是封闭的、可审计的：TrustIdentifierPolicy 与
// TrustEveryonePolicy。新增变体须在此处登记。
//
// 求值失败（返回 error）区别于拒绝（返回 false）：
// 错误中止握手并作为 types.ErrPolicyEvaluation 上报，
// 使调用方能区分"不受信任"与"无法确定信任"。
type TrustPolicy interface {
	// Check 判断候选身份是否可接受
	//
	// 对相同的候选身份（和相同的外部信任数据）结果幂等。
	Check(ctx context.Context, candidate types.Identifier) (bool, error)
}

// ============================================================================
//                              策略变体
// ============================================================================

// TrustIdentifierPolicy 只接受一个固定身份
//
// 创建后不可变，可被多个通道共享。
type TrustIdentifierPolicy struct {
	expected types.Identifier
}

// NewTrustIdentifierPolicy 创建固定身份信任策略
func NewTrustIdentifierPolicy(expected types.Identifier) TrustIdentifierPolicy {
	return TrustIdentifierPolicy{expected: expected}
}

// Check 候选身份与期望身份相等时接受
func (p TrustIdentifierPolicy) Check(_ context.Context, candidate types.Identifier) (bool, error) {
	return candidate.Equal(p.expected), nil
}

// TrustEveryonePolicy 接受任何身份
//
// 用于只要求认证（持钥证明）、不按具体身份授权的场合，
// 例如公开监听器。
type TrustEveryonePolicy struct{}

// Check 总是接受
func (TrustEveryonePolicy) Check(_ context.Context, _ types.Identifier) (bool, error) {
	return true, nil
}
