package channel

import (
	"fmt"

	"github.com/multiformats/go-varint"

	"github.com/dep2p/go-securechannel/pkg/types"
)

// ============================================================================
//                              协议信封
// ============================================================================

// 信封类型
const (
	// envHandshake 握手消息
	envHandshake byte = 0x01

	// envData 数据消息（密文为编码后的内层消息）
	envData byte = 0x02

	// envDenied 响应方信任策略拒绝通知
	//
	// 不携带拒绝原因之外的任何信息。
	envDenied byte = 0x03
)

// encodeEnvelope 编码协议信封：类型字节 || 载荷
func encodeEnvelope(kind byte, body []byte) []byte {
	out := make([]byte, 0, len(body)+1)
	out = append(out, kind)
	out = append(out, body...)
	return out
}

// decodeEnvelope 解码协议信封
func decodeEnvelope(b []byte) (kind byte, body []byte, err error) {
	if len(b) < 1 {
		return 0, nil, types.ErrInvalidEnvelope
	}
	switch b[0] {
	case envHandshake, envData, envDenied:
		return b[0], b[1:], nil
	default:
		return 0, nil, fmt.Errorf("%w: unknown kind %#x", types.ErrInvalidEnvelope, b[0])
	}
}

// ============================================================================
//                              内层消息编解码
// ============================================================================
//
// 数据信封的密文解密后得到内层消息：前向路由、返回路由、载荷。
// 编码格式（全部长度为 varint）：
//
//	nhops || (len || addr)* || nhops || (len || addr)* || len || payload

// encodeInner 编码内层消息
func encodeInner(msg *types.LocalMessage) []byte {
	var out []byte
	out = appendRoute(out, msg.OnwardRoute)
	out = appendRoute(out, msg.ReturnRoute)
	out = append(out, varint.ToUvarint(uint64(len(msg.Payload)))...)
	out = append(out, msg.Payload...)
	return out
}

// decodeInner 解码内层消息
func decodeInner(b []byte) (*types.LocalMessage, error) {
	onward, rest, err := readRoute(b)
	if err != nil {
		return nil, fmt.Errorf("%w: onward route: %v", types.ErrInvalidEnvelope, err)
	}
	ret, rest, err := readRoute(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: return route: %v", types.ErrInvalidEnvelope, err)
	}
	payload, rest, err := readBytes(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", types.ErrInvalidEnvelope, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: trailing bytes", types.ErrInvalidEnvelope)
	}
	return types.NewLocalMessage(payload, onward, ret), nil
}

// appendRoute 追加路由编码
func appendRoute(out []byte, r types.Route) []byte {
	hops := r.Hops()
	out = append(out, varint.ToUvarint(uint64(len(hops)))...)
	for _, h := range hops {
		out = append(out, varint.ToUvarint(uint64(len(h)))...)
		out = append(out, h...)
	}
	return out
}

// readRoute 读取路由编码
func readRoute(b []byte) (types.Route, []byte, error) {
	n, consumed, err := varint.FromUvarint(b)
	if err != nil {
		return types.Route{}, nil, err
	}
	b = b[consumed:]

	hops := make([]types.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		var hop []byte
		hop, b, err = readBytes(b)
		if err != nil {
			return types.Route{}, nil, err
		}
		hops = append(hops, types.Address(hop))
	}
	return types.NewRoute(hops...), b, nil
}

// readBytes 读取一个 varint 长度前缀的字节块
func readBytes(b []byte) (field, rest []byte, err error) {
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
