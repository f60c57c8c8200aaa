// Package identity 定义本地身份接口
//
// 身份的创建、签名密钥管理和标识符派生由外部子系统负责
// （见 pkg/lib/crypto）；本核心只消费该接口。
package identity

import "github.com/dep2p/go-securechannel/pkg/types"

// Identity 本地加密身份
type Identity interface {
	// Identifier 返回身份标识符（由公钥派生，不可变）
	Identifier() types.Identifier

	// PublicKey 返回身份公钥的原始字节
	PublicKey() []byte

	// Sign 用身份私钥签名数据
	Sign(data []byte) ([]byte, error)
}
