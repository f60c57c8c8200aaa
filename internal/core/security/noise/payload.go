package noise

import (
	"fmt"

	"github.com/multiformats/go-varint"
)

// ============================================================================
//                              payload 编解码
// ============================================================================

// encodePayload 编码握手 payload
//
// 格式：varint(len) || identity_key || varint(len) || identity_sig
func encodePayload(pub, sig []byte) []byte {
	out := make([]byte, 0, len(pub)+len(sig)+8)
	out = append(out, varint.ToUvarint(uint64(len(pub)))...)
	out = append(out, pub...)
	out = append(out, varint.ToUvarint(uint64(len(sig)))...)
	out = append(out, sig...)
	return out
}

// decodePayload 解码握手 payload
func decodePayload(b []byte) (pub, sig []byte, err error) {
	pub, rest, err := readLenPrefixed(b)
	if err != nil {
		return nil, nil, fmt.Errorf("identity key: %w", err)
	}
	sig, rest, err = readLenPrefixed(rest)
	if err != nil {
		return nil, nil, fmt.Errorf("identity sig: %w", err)
	}
	if len(rest) != 0 {
		return nil, nil, fmt.Errorf("trailing bytes in payload")
	}
	return pub, sig, nil
}

// readLenPrefixed 读取一个 varint 长度前缀的字节块
func readLenPrefixed(b []byte) (field, rest []byte, err error) {
	n, consumed, err := varint.FromUvarint(b)
	if err != nil {
		return nil, nil, err
	}
	b = b[consumed:]
	if uint64(len(b)) < n {
		return nil, nil, fmt.Errorf("truncated field: want %d bytes, have %d", n, len(b))
	}
	return b[:n], b[n:], nil
}
