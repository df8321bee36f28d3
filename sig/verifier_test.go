package sig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoAlwaysTrueAcceptsAnything(t *testing.T) {
	v := DemoAlwaysTrue{}
	assert.True(t, v.Verify("anything", "anything", "anyone"))
	assert.True(t, v.Verify("", "", ""))
}

func TestRealAsymmetricSignAndVerify(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	txHash := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	signature, err := kp.Sign(txHash)
	require.NoError(t, err)

	v := RealAsymmetric{}
	assert.True(t, v.Verify(txHash, signature, kp.PublicHex))
}

func TestRealAsymmetricRejectsTamperedHash(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	txHash := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	signature, err := kp.Sign(txHash)
	require.NoError(t, err)

	other := "000000000000000000000000000000000000000000000000000000000000000f"[:64]
	v := RealAsymmetric{}
	assert.False(t, v.Verify(other, signature, kp.PublicHex))
}

func TestRealAsymmetricRejectsWrongKey(t *testing.T) {
	kp1, err := GenerateKeyPair()
	require.NoError(t, err)
	kp2, err := GenerateKeyPair()
	require.NoError(t, err)

	txHash := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	signature, err := kp1.Sign(txHash)
	require.NoError(t, err)

	v := RealAsymmetric{}
	assert.False(t, v.Verify(txHash, signature, kp2.PublicHex))
}

func TestRealAsymmetricRejectsMalformedInput(t *testing.T) {
	v := RealAsymmetric{}
	assert.False(t, v.Verify("not-hex", "not-hex", "not-hex"))
}
