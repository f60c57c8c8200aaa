// Package noise 实现基于 Noise 协议的加密提供者
//
// Noise XX 握手流程：
//   -> e                                      (发起者发送临时公钥)
//   <- e, ee, s, es, payload                  (响应者发送临时公钥、静态公钥、payload)
//   -> s, se, payload                         (发起者发送静态公钥、payload)
//
// payload 包含：
//   - identity_key: Ed25519 身份公钥
//   - identity_sig: Sign("securechannel-static-key:" + curve25519_static_pubkey)
//
// 静态 DH 密钥由 Ed25519 身份密钥标准转换而来（RFC 7748 / RFC 8032），
// 签名将静态密钥绑定到身份密钥，双方由此获得对端已验证的身份标识符。
package noise
