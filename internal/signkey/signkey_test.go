package signkey

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignKnownVector(t *testing.T) {
	// RFC 4231 test case 2.
	assert.Equal(t,
		"5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
		Sign("what do ya want for nothing?", "Jefe"))
}

func TestVerify(t *testing.T) {
	sig := Sign("acct-1", "s3cret")

	assert.True(t, Verify("acct-1", sig, "s3cret"))
	assert.True(t, Verify("acct-1", strings.ToUpper(sig), "s3cret"))
	assert.False(t, Verify("acct-2", sig, "s3cret"))
	assert.False(t, Verify("acct-1", sig, "other"))
	assert.False(t, Verify("acct-1", "not-hex", "s3cret"))
	assert.False(t, Verify("acct-1", sig[:10], "s3cret"))
	assert.False(t, Verify("acct-1", "", "s3cret"))
}

func TestSignerRejectsEmptySecret(t *testing.T) {
	_, err := NewSigner("")
	require.ErrorIs(t, err, ErrEmptySecret)

	var zero Signer
	assert.False(t, zero.Verify("acct", Sign("acct", "")))
}

func TestSignerRoundTrip(t *testing.T) {
	signer, err := NewSigner("s3cret")
	require.NoError(t, err)
	assert.True(t, signer.Verify("acct-1", signer.Sign("acct-1")))
	assert.False(t, signer.Verify("", signer.Sign("")))
}

func TestSignVerifyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("a signature verifies for its own key", prop.ForAll(
		func(key, secret string) bool {
			return Verify(key, Sign(key, secret), secret)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("a signature does not verify for another key", prop.ForAll(
		func(key, other, secret string) bool {
			if key == other {
				return true
			}
			return !Verify(other, Sign(key, secret), secret)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("signing is deterministic and 64 hex chars", prop.ForAll(
		func(key, secret string) bool {
			sig := Sign(key, secret)
			return sig == Sign(key, secret) && len(sig) == 64
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
