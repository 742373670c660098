package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Prefix is accepted (and emitted by Sign) in front of the hex digest
const Prefix = "sha256="

// Sign returns the "sha256=<hex>" HMAC of payload
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a sha256 HMAC hex signature, with or without the prefix
func Verify(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(signature), Prefix))
	want := strings.TrimPrefix(Sign(secret, payload), Prefix)
	return hmac.Equal([]byte(want), []byte(got))
}
