package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	payload := []byte(`{"body":{"apiKey":"K1","transcripts":[]}}`)
	sig := Sign("s3cret", payload)

	assert.True(t, strings.HasPrefix(sig, Prefix))
	assert.True(t, Verify("s3cret", payload, sig))
	assert.True(t, Verify("s3cret", payload, strings.TrimPrefix(sig, Prefix)))
	assert.True(t, Verify("s3cret", payload, strings.ToUpper(strings.TrimPrefix(sig, Prefix))))

	assert.False(t, Verify("other", payload, sig))
	assert.False(t, Verify("s3cret", append(payload, ' '), sig))
	assert.False(t, Verify("s3cret", payload, ""))
	assert.False(t, Verify("", payload, sig))
}
