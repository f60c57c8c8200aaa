// Package crypto 提供身份密钥与标识符派生
//
// 身份使用 Ed25519 签名密钥；标识符由公钥派生：
//
//	Identifier = "P" + Base58(SHA256(公钥))
//
// 标识符一经派生不可变，系统其余部分只比较和存储它。
package crypto
