package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// deriveKey 从配置密钥种子派生 32 字节密钥
//
// 签名和加密使用不同的 purpose，避免同一把密钥跨用途复用。
func deriveKey(secret, purpose string) []byte {
	return pbkdf2.Key([]byte(secret), []byte("bookstore-gateway/"+purpose), 4096, 32, sha256.New)
}

// credentialCipher 后端凭证的 AES-GCM 加解密
//
// 凭证落库前加密：Redis 里不会出现明文的后端会话 Cookie。
type credentialCipher struct {
	key []byte
}

func newCredentialCipher(secret string) *credentialCipher {
	return &credentialCipher{key: deriveKey(secret, "credential-encryption")}
}

// Encrypt 加密，nonce 前置在密文里
func (c *credentialCipher) Encrypt(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

// Decrypt 解密，失败（篡改或密钥轮换）返回错误
func (c *credentialCipher) Decrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
