package crypto

import (
	"github.com/minio/sha256-simd"
	"github.com/mr-tron/base58"

	"github.com/dep2p/go-securechannel/pkg/types"
)

// ============================================================================
//                              标识符派生
// ============================================================================

// identifierPrefix 标识符前缀，标记"由公钥派生的身份标识符"
const identifierPrefix = "P"

// IdentifierFromPublicKey 从公钥派生身份标识符
//
// 派生算法："P" + Base58(SHA256(公钥原始字节))
func IdentifierFromPublicKey(pub []byte) (types.Identifier, error) {
	if len(pub) == 0 {
		return types.EmptyIdentifier, types.ErrNilPublicKey
	}

	hash := sha256.Sum256(pub)
	encoded := base58.Encode(hash[:])

	return types.Identifier(identifierPrefix + encoded), nil
}
