package types

import "strings"

// ============================================================================
//                              Route - 消息路由
// ============================================================================

// Route 消息必须经过的有序地址序列
//
// Route 是值类型：所有修改操作返回新的 Route，原值不变。
// 转发时头部跳点被消费（Step）或替换，序列本身按消息复制。
type Route struct {
	hops []Address
}

// NewRoute 从给定跳点创建路由
func NewRoute(hops ...Address) Route {
	h := make([]Address, len(hops))
	copy(h, hops)
	return Route{hops: h}
}

// Next 返回下一跳（头部）地址
func (r Route) Next() (Address, error) {
	if len(r.hops) == 0 {
		return EmptyAddress, ErrEmptyRoute
	}
	return r.hops[0], nil
}

// Step 消费头部跳点，返回剩余路由
func (r Route) Step() Route {
	if len(r.hops) == 0 {
		return Route{}
	}
	h := make([]Address, len(r.hops)-1)
	copy(h, r.hops[1:])
	return Route{hops: h}
}

// Prepend 在头部插入一跳，返回新路由
func (r Route) Prepend(a Address) Route {
	h := make([]Address, 0, len(r.hops)+1)
	h = append(h, a)
	h = append(h, r.hops...)
	return Route{hops: h}
}

// Append 在尾部追加一跳，返回新路由
func (r Route) Append(a Address) Route {
	h := make([]Address, 0, len(r.hops)+1)
	h = append(h, r.hops...)
	h = append(h, a)
	return Route{hops: h}
}

// Len 返回跳点数量
func (r Route) Len() int {
	return len(r.hops)
}

// IsEmpty 检查路由是否为空
func (r Route) IsEmpty() bool {
	return len(r.hops) == 0
}

// Hops 返回跳点切片的副本
func (r Route) Hops() []Address {
	h := make([]Address, len(r.hops))
	copy(h, r.hops)
	return h
}

// String 返回 "a => b => c" 形式的字符串表示
func (r Route) String() string {
	parts := make([]string, len(r.hops))
	for i, a := range r.hops {
		parts[i] = string(a)
	}
	return strings.Join(parts, " => ")
}
