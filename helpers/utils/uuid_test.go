package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUID(t *testing.T) {
	id := GenerateUUID()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.NotEqual(t, id, GenerateUUID())
	assert.Len(t, GenerateShortID(), 8)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("a", "b"), Fingerprint("a", "b"))
	assert.NotEqual(t, Fingerprint("ab", "c"), Fingerprint("a", "bc"))
	assert.Len(t, Fingerprint("x"), 64)
}
