package types

import "github.com/google/uuid"

// ============================================================================
//                              Address - 路由地址
// ============================================================================

// Address 路由运行时中一个可寻址端点的地址令牌
//
// 地址在单个运行时内唯一。监听器使用固定的公开地址；
// 通道 Worker 使用 NewAddress 生成的一次性地址。
type Address string

// EmptyAddress 空地址
const EmptyAddress = Address("")

// NewAddress 生成一个全局唯一的新地址
func NewAddress() Address {
	return Address(uuid.NewString())
}

// IsEmpty 检查地址是否为空
func (a Address) IsEmpty() bool {
	return a == EmptyAddress
}

// String 返回字符串表示
func (a Address) String() string {
	return string(a)
}
