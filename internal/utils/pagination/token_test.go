package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Test case 1: Standard values
	createdAt := time.Date(2025, 5, 15, 14, 30, 45, 123456789, time.UTC)
	id := "3f2b8a1c-0f1e-4c2a-9a6d-6f1a2b3c4d5e"

	token := EncodeToken(createdAt, id)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedCreatedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, createdAt, decodedCreatedAt, "Created at time should match after decode")
	assert.Equal(t, id, decodedID, "Row ID should match after decode")

	// Test case 2: Zero time value
	zeroTime := time.Time{}
	zeroToken := EncodeToken(zeroTime, "id")
	decodedZeroTime, decodedZeroID, err := DecodeToken(zeroToken)
	assert.NoError(t, err, "Decoding zero time should not return an error")
	assert.Equal(t, zeroTime, decodedZeroTime, "Zero time should match after decode")
	assert.Equal(t, "id", decodedZeroID)

	// Test case 3: Current time values
	now := time.Now().UTC()
	nowToken := EncodeToken(now, id)
	decodedNow, _, err := DecodeToken(nowToken)
	assert.NoError(t, err, "Decoding current time should not return an error")
	assert.True(t, now.Equal(decodedNow), "Current time should match after decode")
}

func TestDecodeTokenError(t *testing.T) {
	// Test invalid base64
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Test invalid format (missing separator)
	invalidToken := "MjAyMy0wNS0xNVQwMDowMDowMFo" + "=" // Base64 encoded time without separator
	_, _, err = DecodeToken(invalidToken)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Test invalid time format
	invalidTimeToken := base64.StdEncoding.EncodeToString([]byte("notatime|some-id"))
	_, _, err = DecodeToken(invalidTimeToken)
	assert.Error(t, err, "Should return an error for invalid time format")
	assert.Contains(t, err.Error(), "created_at parse", "Error should mention time parsing issue")
}

func TestEncodeDecodeSeqToken(t *testing.T) {
	token := EncodeSeqToken(42)
	seq, err := DecodeSeqToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, int64(42), seq, "Sequence should match after decode")

	// Negative and boundary values survive the round trip
	for _, v := range []int64{-1, 0, 1<<62 + 7} {
		seq, err := DecodeSeqToken(EncodeSeqToken(v))
		assert.NoError(t, err)
		assert.Equal(t, v, seq)
	}

	// Invalid payloads
	_, err = DecodeSeqToken("not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")

	_, err = DecodeSeqToken(base64.StdEncoding.EncodeToString([]byte("notanumber")))
	assert.Error(t, err, "Should return an error for a non-numeric payload")
}
