package types

// ============================================================================
//                              Identifier - 身份标识符
// ============================================================================

// Identifier 加密身份的不透明标识符
//
// 由身份公钥派生（见 pkg/lib/crypto），全局唯一且不可变。
// 本核心只比较和存储它，不解释其内容。
type Identifier string

// EmptyIdentifier 空标识符
const EmptyIdentifier = Identifier("")

// Equal 比较两个标识符是否相等
//
// 相等性是本核心对标识符的唯一操作。
func (i Identifier) Equal(other Identifier) bool {
	return i == other
}

// IsEmpty 检查标识符是否为空
func (i Identifier) IsEmpty() bool {
	return i == EmptyIdentifier
}

// String 返回字符串表示
func (i Identifier) String() string {
	return string(i)
}
