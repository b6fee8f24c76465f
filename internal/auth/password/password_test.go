package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("correct horse battery")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))
	assert.True(t, Verify("correct horse battery", encoded))
	assert.False(t, Verify("incorrect horse", encoded))
}

func TestHashProducesUniqueSalts(t *testing.T) {
	first, err := Hash("same password")
	require.NoError(t, err)
	second, err := Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("same password", first))
	assert.True(t, Verify("same password", second))
}

func TestVerifyRejectsMalformedEncodings(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=3,p=2$notbase64!$hash",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
	} {
		assert.False(t, Verify("anything", encoded), "encoding %q must not verify", encoded)
	}
}
