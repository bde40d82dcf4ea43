// Package keys implements ed25519 access keys in the textual form used by NEAR
// wallets ("ed25519:<base58>").
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/pkg/errors"
)

// KeyType 公钥类型，链上 borsh 编码为 u8
type KeyType uint8

const (
	KeyTypeED25519 KeyType = 0
)

const ed25519Prefix = "ed25519:"

func (t KeyType) String() string {
	switch t {
	case KeyTypeED25519:
		return "ed25519"
	default:
		return "unknown"
	}
}

// PublicKey 链上公钥表示
type PublicKey struct {
	Type KeyType
	Data [ed25519.PublicKeySize]byte
}

// String 返回 "ed25519:<base58>" 形式
func (p PublicKey) String() string {
	return p.Type.String() + ":" + base58.Encode(p.Data[:])
}

// IsZero 判断是否为空公钥
func (p PublicKey) IsZero() bool {
	return p == PublicKey{}
}

// Ed25519 返回标准库公钥
func (p PublicKey) Ed25519() ed25519.PublicKey {
	out := make([]byte, ed25519.PublicKeySize)
	copy(out, p.Data[:])
	return out
}

// ParsePublicKey 解析 "ed25519:<base58>"，没有前缀时按 ed25519 处理
func ParsePublicKey(s string) (PublicKey, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), ed25519Prefix)
	if raw == "" {
		return PublicKey{}, errors.New("public key is required")
	}
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		return PublicKey{}, errors.Errorf("unsupported key type %q", raw[:i])
	}

	decoded := base58.Decode(raw)
	if len(decoded) != ed25519.PublicKeySize {
		return PublicKey{}, errors.Errorf("invalid public key length: expected %d bytes, got %d", ed25519.PublicKeySize, len(decoded))
	}

	var pk PublicKey
	pk.Type = KeyTypeED25519
	copy(pk.Data[:], decoded)
	return pk, nil
}

// PublicKeyFromEd25519 包装标准库公钥
func PublicKeyFromEd25519(pub ed25519.PublicKey) PublicKey {
	var pk PublicKey
	pk.Type = KeyTypeED25519
	copy(pk.Data[:], pub)
	return pk
}

// KeyPair ed25519 访问密钥对
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// Public 返回链上公钥
func (k *KeyPair) Public() PublicKey {
	return PublicKeyFromEd25519(k.PublicKey)
}

// PublicKeyString 等价于 k.Public().String()
func (k *KeyPair) PublicKeyString() string {
	return k.Public().String()
}

// SecretString 返回 "ed25519:<base58 64 字节私钥>"，与 near-api-js 的 secretKey 格式一致
func (k *KeyPair) SecretString() string {
	return ed25519Prefix + base58.Encode(k.PrivateKey)
}

// Sign 对消息签名
func (k *KeyPair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.PrivateKey, msg)
}

// Verify 使用公钥验证签名
func Verify(pk PublicKey, msg, sig []byte) bool {
	if pk.Type != KeyTypeED25519 {
		return false
	}
	return ed25519.Verify(pk.Ed25519(), msg, sig)
}

// Generate 使用 crypto/rand 生成新的密钥对
func Generate() (*KeyPair, error) {
	return GenerateFrom(rand.Reader)
}

// GenerateFrom 从给定随机源生成密钥对
func GenerateFrom(r io.Reader) (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrKeyGeneration, err, "failed to read randomness")
	}
	return &KeyPair{PublicKey: pub, PrivateKey: priv}, nil
}

// FromSeed 由 32 字节种子确定性地派生密钥对
func FromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Errorf("invalid seed length: expected %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &KeyPair{PublicKey: priv.Public().(ed25519.PublicKey), PrivateKey: priv}, nil
}

// ParseKeyPair 解析 SecretString 的输出。也接受 32 字节种子形式。
func ParseKeyPair(s string) (*KeyPair, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, errors.New("secret key is required")
	}
	if !strings.HasPrefix(raw, ed25519Prefix) && strings.Contains(raw, ":") {
		return nil, errors.Errorf("unsupported key type %q", raw[:strings.IndexByte(raw, ':')])
	}
	decoded := base58.Decode(strings.TrimPrefix(raw, ed25519Prefix))

	switch len(decoded) {
	case ed25519.PrivateKeySize:
		priv := ed25519.PrivateKey(decoded)
		derived := ed25519.NewKeyFromSeed(priv.Seed())
		if !derived.Equal(priv) {
			return nil, errors.New("secret key does not match its embedded public key")
		}
		return &KeyPair{PublicKey: derived.Public().(ed25519.PublicKey), PrivateKey: derived}, nil
	case ed25519.SeedSize:
		return FromSeed(decoded)
	default:
		return nil, errors.Errorf("invalid secret key length: got %d bytes", len(decoded))
	}
}
