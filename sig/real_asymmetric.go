package sig

import (
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// RealAsymmetric verifies a DER-encoded secp256k1 signature over the raw
// transaction-hash bytes, with voter_id carrying the hex-encoded compressed
// public key. This is the "real" half of the §9 DemoAlwaysTrue/
// RealAsymmetric pair; secp256k1 is the signature stack the EXCCoin-exccd
// pack member builds its whole transaction model on.
type RealAsymmetric struct{}

func (RealAsymmetric) Verify(txHash, signature, voterID string) bool {
	pubKeyBytes, err := hex.DecodeString(voterID)
	if err != nil {
		return false
	}
	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false
	}

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	parsedSig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return false
	}

	hashBytes, err := hex.DecodeString(txHash)
	if err != nil {
		return false
	}

	return parsedSig.Verify(hashBytes, pubKey)
}

// KeyPair is a voter's identity: a secp256k1 private key plus the
// hex-encoded compressed public key used as its voter_id.
type KeyPair struct {
	Private   *secp256k1.PrivateKey
	PublicHex string
}

// GenerateKeyPair creates a fresh voter identity.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		Private:   priv,
		PublicHex: hex.EncodeToString(priv.PubKey().SerializeCompressed()),
	}, nil
}

// Sign produces a hex-encoded DER signature over the hex-encoded
// transaction hash.
func (k *KeyPair) Sign(txHash string) (string, error) {
	hashBytes, err := hex.DecodeString(txHash)
	if err != nil {
		return "", err
	}
	signature := ecdsa.Sign(k.Private, hashBytes)
	return hex.EncodeToString(signature.Serialize()), nil
}
