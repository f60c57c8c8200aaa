package noise

import (
	"fmt"
	"sync"

	"github.com/flynn/noise"

	"github.com/dep2p/go-securechannel/pkg/types"
)

// ============================================================================
//                              session - 会话密钥
// ============================================================================

// session 已建立通道的发送/接收 CipherState 对
//
// CipherState 内部维护 nonce 计数器，加解密调用各自串行化。
type session struct {
	sendMu sync.Mutex
	send   *noise.CipherState

	recvMu sync.Mutex
	recv   *noise.CipherState
}

// newSession 创建会话
func newSession(send, recv *noise.CipherState) *session {
	return &session{send: send, recv: recv}
}

// Encrypt 用会话密钥加密明文
func (s *session) Encrypt(plaintext []byte) ([]byte, error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	ct, err := s.send.Encrypt(nil, nil, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	return ct, nil
}

// Decrypt 认证解密密文
//
// MAC 校验失败返回包装 types.ErrAuthenticationFailed 的错误。
func (s *session) Decrypt(ciphertext []byte) ([]byte, error) {
	s.recvMu.Lock()
	defer s.recvMu.Unlock()

	pt, err := s.recv.Decrypt(nil, nil, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrAuthenticationFailed, err)
	}
	return pt, nil
}
