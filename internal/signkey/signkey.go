// Package signkey derives and checks the per-account API key:
// hex(HMAC-SHA256(secret, accountID)).
//
// Tokens never expire and carry no nonce. Rotating the secret invalidates
// every token at once; there is no per-account revocation.
package signkey

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var ErrEmptySecret = errors.New("signing secret is empty")

func Sign(key, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is the hex HMAC of key. Comparison is
// constant time; hex case is ignored.
func Verify(key, signature, secret string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) != sha256.Size {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(key))
	return hmac.Equal(got, mac.Sum(nil))
}

// Signer binds Sign and Verify to one secret.
type Signer struct {
	secret string
}

func NewSigner(secret string) (Signer, error) {
	if secret == "" {
		return Signer{}, ErrEmptySecret
	}
	return Signer{secret: secret}, nil
}

func (s Signer) Sign(accountID string) string {
	return Sign(accountID, s.secret)
}

func (s Signer) Verify(accountID, signature string) bool {
	if s.secret == "" || accountID == "" {
		return false
	}
	return Verify(accountID, signature, s.secret)
}
