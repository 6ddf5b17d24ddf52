// internal/utils/crypto_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumber(t *testing.T) {
	number, err := GenerateOrderNumber("SMK")
	require.NoError(t, err)

	parts := strings.Split(number, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "SMK", parts[0])
	assert.Len(t, parts[2], 6)
	assert.Equal(t, strings.ToUpper(parts[2]), parts[2])
}

func TestGenerateOrderNumberVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		number, err := GenerateOrderNumber("SMK")
		require.NoError(t, err)
		assert.False(t, seen[number], "duplicate %s", number)
		seen[number] = true
	}
}

func TestSignAndVerifySignature(t *testing.T) {
	secret := "webhook-secret"
	body := []byte(`{"event_type":"stock_changed","data":{"external_product_id":"EXT-1","stock":7}}`)

	signature := SignPayload(secret, body)
	assert.True(t, VerifySignature(secret, body, signature))

	// Signature comparison is case-insensitive on the hex digest.
	assert.True(t, VerifySignature(secret, body, strings.ToUpper(signature)))
}

func TestVerifySignatureRejects(t *testing.T) {
	secret := "webhook-secret"
	body := []byte(`{"event_type":"stock_changed"}`)
	signature := SignPayload(secret, body)

	assert.False(t, VerifySignature("other-secret", body, signature))
	assert.False(t, VerifySignature(secret, []byte(`{"tampered":true}`), signature))
	assert.False(t, VerifySignature(secret, body, ""))
	assert.False(t, VerifySignature(secret, body, "not-a-hex-digest"))
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, s, 16)

	other, err := GenerateRandomString(16)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}
