package channel

import "github.com/dep2p/go-securechannel/pkg/types"

// ============================================================================
//                              访问控制谓词
// ============================================================================
//
// 由路由运行时在向受保护地址投递每条消息前求值；
// 不修改消息；消息未携带身份附件时同样安全。
// 谓词绝不跨消息缓存结果——同一路由上的消息不保证同一身份。

// IdentifierAccessControl 只放行特定已验证身份的消息
//
// 附件缺失或身份不匹配返回 false（不是错误）。
type IdentifierAccessControl struct {
	theirIdentifier types.Identifier
}

// NewIdentifierAccessControl 创建固定身份访问控制谓词
func NewIdentifierAccessControl(theirIdentifier types.Identifier) IdentifierAccessControl {
	return IdentifierAccessControl{theirIdentifier: theirIdentifier}
}

// IsAuthorized 实现 runtime.AccessControl
func (a IdentifierAccessControl) IsAuthorized(msg *types.LocalMessage) (bool, error) {
	id, err := FindLocalInfo(msg)
	if err != nil {
		return false, nil
	}
	return id.Equal(a.theirIdentifier), nil
}

// AnyIdentifierAccessControl 放行经过任意安全通道的消息
//
// 只要求消息至少经过一跳安全通道（附件存在），不限定身份。
type AnyIdentifierAccessControl struct{}

// IsAuthorized 实现 runtime.AccessControl
func (AnyIdentifierAccessControl) IsAuthorized(msg *types.LocalMessage) (bool, error) {
	_, err := FindLocalInfo(msg)
	return err == nil, nil
}
