package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/dep2p/go-securechannel/pkg/types"
)

// ============================================================================
//                              Ed25519 身份
// ============================================================================

// Ed25519Identity 基于 Ed25519 签名密钥的本地身份
//
// 实现 pkg/interfaces/identity.Identity。
// 创建后不可变，可安全地被多个 Worker 共享。
type Ed25519Identity struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	id   types.Identifier
}

// GenerateIdentity 生成新的 Ed25519 身份
func GenerateIdentity() (*Ed25519Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return NewIdentity(priv, pub)
}

// NewIdentity 从已有密钥对创建身份
func NewIdentity(priv ed25519.PrivateKey, pub ed25519.PublicKey) (*Ed25519Identity, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid ed25519 public key length: %d", len(pub))
	}
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid ed25519 private key length: %d", len(priv))
	}

	id, err := IdentifierFromPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("derive identifier: %w", err)
	}

	return &Ed25519Identity{priv: priv, pub: pub, id: id}, nil
}

// Identifier 返回身份标识符
func (i *Ed25519Identity) Identifier() types.Identifier {
	return i.id
}

// PublicKey 返回公钥原始字节
func (i *Ed25519Identity) PublicKey() []byte {
	out := make([]byte, len(i.pub))
	copy(out, i.pub)
	return out
}

// Sign 用身份私钥签名数据
func (i *Ed25519Identity) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(i.priv, data), nil
}

// PrivateKey 返回私钥原始字节（握手层做 DH 密钥转换时使用）
func (i *Ed25519Identity) PrivateKey() []byte {
	out := make([]byte, len(i.priv))
	copy(out, i.priv)
	return out
}

// ============================================================================
//                              签名验证
// ============================================================================

// Verify 验证 Ed25519 签名
func Verify(pub, data, sig []byte) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid ed25519 public key length: %d", len(pub))
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), data, sig) {
		return types.ErrInvalidSignature
	}
	return nil
}
