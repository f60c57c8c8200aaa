package noise

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/flynn/noise"

	securityif "github.com/dep2p/go-securechannel/pkg/interfaces/security"
	"github.com/dep2p/go-securechannel/pkg/lib/crypto"
	"github.com/dep2p/go-securechannel/pkg/types"
)

// payloadSigPrefix 是签名 payload 的前缀
const payloadSigPrefix = "securechannel-static-key:"

// ============================================================================
//                              Provider - 加密提供者
// ============================================================================

// Provider Noise XX 加密提供者
//
// 实现 pkg/interfaces/security.Provider。创建后不可变，
// 可被任意多个通道 Worker 共享。
type Provider struct {
	identity *crypto.Ed25519Identity
	static   noise.DHKey
}

// New 创建 Noise 加密提供者
//
// 静态 DH 密钥对由身份的 Ed25519 密钥转换得到，
// 因此同一身份的所有握手使用同一静态密钥。
func New(identity *crypto.Ed25519Identity) (*Provider, error) {
	if identity == nil {
		return nil, fmt.Errorf("identity is nil")
	}

	static := noise.DHKey{
		Private: ed25519ToCurve25519Private(identity.PrivateKey()),
		Public:  ed25519ToCurve25519Public(identity.PublicKey()),
	}

	return &Provider{identity: identity, static: static}, nil
}

// NewHandshake 以给定角色开始一次新握手
func (p *Provider) NewHandshake(role securityif.Role) (securityif.Handshake, error) {
	cs := noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cs,
		Random:        rand.Reader,
		Pattern:       noise.HandshakeXX,
		Initiator:     role == securityif.RoleInitiator,
		StaticKeypair: p.static,
	})
	if err != nil {
		return nil, fmt.Errorf("create handshake state: %w", err)
	}

	// 本地 payload：身份公钥 + 静态密钥绑定签名
	toSign := append([]byte(payloadSigPrefix), p.static.Public...)
	sig, err := p.identity.Sign(toSign)
	if err != nil {
		return nil, fmt.Errorf("sign handshake payload: %w", err)
	}
	localPayload := encodePayload(p.identity.PublicKey(), sig)

	return &handshake{hs: hs, role: role, localPayload: localPayload}, nil
}

// ============================================================================
//                              handshake - 握手状态机
// ============================================================================

// handshake 一次进行中的 Noise XX 握手
//
// Advance 调用序列（step 从 0 开始计数）：
//
//	发起者: Advance(nil)→msg1 | Advance(msg2)→msg3+完成
//	响应者: Advance(msg1)→msg2 | Advance(msg3)→完成
type handshake struct {
	hs           *noise.HandshakeState
	role         securityif.Role
	localPayload []byte
	step         int
	released     bool
}

// Advance 用收到的字节推进握手状态
func (h *handshake) Advance(incoming []byte) (*securityif.HandshakeResult, error) {
	if h.released {
		return nil, fmt.Errorf("%w: handshake released", types.ErrHandshakeFailed)
	}

	defer func() { h.step++ }()

	if h.role == securityif.RoleInitiator {
		return h.advanceInitiator(incoming)
	}
	return h.advanceResponder(incoming)
}

// advanceInitiator 推进发起者状态
func (h *handshake) advanceInitiator(incoming []byte) (*securityif.HandshakeResult, error) {
	switch h.step {
	case 0:
		// -> e
		msg1, _, _, err := h.hs.WriteMessage(nil, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: write message 1: %v", types.ErrHandshakeFailed, err)
		}
		return &securityif.HandshakeResult{Outgoing: msg1}, nil

	case 1:
		// <- e, ee, s, es, payload
		remotePayload, _, _, err := h.hs.ReadMessage(nil, incoming)
		if err != nil {
			return nil, fmt.Errorf("%w: read message 2: %v", types.ErrHandshakeFailed, err)
		}
		peer, err := verifyRemotePayload(remotePayload, h.hs.PeerStatic())
		if err != nil {
			return nil, err
		}

		// -> s, se, payload（最后一轮，产生 CipherState）
		msg3, cs1, cs2, err := h.hs.WriteMessage(nil, h.localPayload)
		if err != nil {
			return nil, fmt.Errorf("%w: write message 3: %v", types.ErrHandshakeFailed, err)
		}

		// cs1 = 发送密钥，cs2 = 接收密钥（对于发起者）
		return &securityif.HandshakeResult{
			Outgoing:     msg3,
			Complete:     true,
			PeerIdentity: peer,
			Session:      newSession(cs1, cs2),
		}, nil

	default:
		return nil, fmt.Errorf("%w: handshake already complete", types.ErrHandshakeFailed)
	}
}

// advanceResponder 推进响应者状态
func (h *handshake) advanceResponder(incoming []byte) (*securityif.HandshakeResult, error) {
	switch h.step {
	case 0:
		// <- e
		if _, _, _, err := h.hs.ReadMessage(nil, incoming); err != nil {
			return nil, fmt.Errorf("%w: read message 1: %v", types.ErrHandshakeFailed, err)
		}

		// -> e, ee, s, es, payload
		msg2, _, _, err := h.hs.WriteMessage(nil, h.localPayload)
		if err != nil {
			return nil, fmt.Errorf("%w: write message 2: %v", types.ErrHandshakeFailed, err)
		}
		return &securityif.HandshakeResult{Outgoing: msg2}, nil

	case 1:
		// <- s, se, payload（最后一轮，产生 CipherState）
		remotePayload, cs1, cs2, err := h.hs.ReadMessage(nil, incoming)
		if err != nil {
			return nil, fmt.Errorf("%w: read message 3: %v", types.ErrHandshakeFailed, err)
		}
		peer, err := verifyRemotePayload(remotePayload, h.hs.PeerStatic())
		if err != nil {
			return nil, err
		}

		// cs1 = 接收密钥，cs2 = 发送密钥（对于响应者，与发起者相反）
		return &securityif.HandshakeResult{
			Complete:     true,
			PeerIdentity: peer,
			Session:      newSession(cs2, cs1),
		}, nil

	default:
		return nil, fmt.Errorf("%w: handshake already complete", types.ErrHandshakeFailed)
	}
}

// Release 释放未完成的握手
func (h *handshake) Release() {
	h.released = true
	h.hs = nil
	h.localPayload = nil
}

// verifyRemotePayload 验证远程 payload 并派生对端身份标识符
func verifyRemotePayload(payload, remoteStatic []byte) (types.Identifier, error) {
	if len(remoteStatic) != 32 {
		return types.EmptyIdentifier,
			fmt.Errorf("%w: invalid remote static key length: %d", types.ErrHandshakeFailed, len(remoteStatic))
	}

	pub, sig, err := decodePayload(payload)
	if err != nil {
		return types.EmptyIdentifier, fmt.Errorf("%w: decode payload: %v", types.ErrHandshakeFailed, err)
	}

	// 验证静态密钥与身份密钥的绑定签名
	toVerify := append([]byte(payloadSigPrefix), remoteStatic...)
	if err := crypto.Verify(pub, toVerify, sig); err != nil {
		return types.EmptyIdentifier,
			fmt.Errorf("%w: remote static key not bound to identity key", types.ErrHandshakeFailed)
	}

	peer, err := crypto.IdentifierFromPublicKey(pub)
	if err != nil {
		return types.EmptyIdentifier, fmt.Errorf("%w: derive identifier: %v", types.ErrHandshakeFailed, err)
	}
	return peer, nil
}

// ============================================================================
//                              密钥转换（标准实现）
// ============================================================================

// ed25519ToCurve25519Private 将 Ed25519 私钥转换为 Curve25519 私钥
//
// 标准转换方法（RFC 7748, RFC 8032）：
//  1. 对私钥种子进行 SHA-512 哈希
//  2. 取哈希前 32 字节
//  3. 进行 "clamping"（清理低 3 位和高 2 位）
func ed25519ToCurve25519Private(edPriv []byte) []byte {
	var seed []byte

	switch len(edPriv) {
	case ed25519.PrivateKeySize: // 64 字节：标准私钥格式
		seed = edPriv[:32]
	case 32: // 32 字节：种子格式
		seed = edPriv
	default:
		return make([]byte, 32)
	}

	h := sha512.Sum512(seed)

	// Clamping（RFC 7748）
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64

	return h[:32]
}

// ed25519ToCurve25519Public 将 Ed25519 公钥转换为 Curve25519 公钥
//
// 使用 Edwards -> Montgomery 转换公式：
//
//	u = (1 + y) / (1 - y)  (mod p)
func ed25519ToCurve25519Public(edPub []byte) []byte {
	if len(edPub) != ed25519.PublicKeySize {
		return make([]byte, 32)
	}

	point, err := new(edwards25519.Point).SetBytes(edPub)
	if err != nil {
		return make([]byte, 32)
	}

	return point.BytesMontgomery()
}
