package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/dep2p/go-securechannel/pkg/types"
)

// ============================================================================
//                              标识符派生测试
// ============================================================================

func TestIdentifierFromPublicKey(t *testing.T) {
	id, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}

	got, err := IdentifierFromPublicKey(id.PublicKey())
	if err != nil {
		t.Fatalf("IdentifierFromPublicKey: %v", err)
	}

	// 派生确定且与身份自报一致
	if got != id.Identifier() {
		t.Fatalf("identifier mismatch: %q vs %q", got, id.Identifier())
	}
	if !strings.HasPrefix(string(got), "P") {
		t.Fatalf("identifier missing prefix: %q", got)
	}

	// 空公钥报错
	if _, err := IdentifierFromPublicKey(nil); !errors.Is(err, types.ErrNilPublicKey) {
		t.Fatalf("want ErrNilPublicKey, got %v", err)
	}
}

func TestIdentifier_Unique(t *testing.T) {
	a, _ := GenerateIdentity()
	b, _ := GenerateIdentity()
	if a.Identifier().Equal(b.Identifier()) {
		t.Fatal("distinct identities must have distinct identifiers")
	}
}

// ============================================================================
//                              签名测试
// ============================================================================

func TestSignVerify(t *testing.T) {
	id, _ := GenerateIdentity()
	data := []byte("securechannel-static-key:test")

	sig, err := id.Sign(data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := Verify(id.PublicKey(), data, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	// 篡改数据后验证失败
	tampered := append([]byte{}, data...)
	tampered[0] ^= 0xff
	if err := Verify(id.PublicKey(), tampered, sig); !errors.Is(err, types.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}

	// 换一个身份的公钥验证失败
	other, _ := GenerateIdentity()
	if err := Verify(other.PublicKey(), data, sig); !errors.Is(err, types.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}
}
