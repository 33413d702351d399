package webserver

import (
	"encoding/hex"
	"strings"
	"testing"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signNonce(t *testing.T, nonce string) (addr, sigHex string) {
	t.Helper()

	priv, pub, err := schnorrkel.GenerateKeypair()
	require.NoError(t, err)

	sig, err := priv.Sign(schnorrkel.NewSigningContext([]byte("substrate"), signingPayload(nonce)))
	require.NoError(t, err)

	pubBytes := pub.Encode()
	sigBytes := sig.Encode()
	return "0x" + hex.EncodeToString(pubBytes[:]), hex.EncodeToString(sigBytes[:])
}

func TestVerifySignature(t *testing.T) {
	nonce := "d84f7a39-1c3e-4f5b-9a2d-8f6e0b1c2d3e"
	addr, sigHex := signNonce(t, nonce)

	require.NoError(t, verifySignature(addr, sigHex, nonce))
	require.NoError(t, verifySignature(addr, "0x"+sigHex, nonce))

	// Wrong nonce, wrong signer.
	require.Error(t, verifySignature(addr, sigHex, "another-nonce"))
	otherAddr, _ := signNonce(t, nonce)
	require.Error(t, verifySignature(otherAddr, sigHex, nonce))

	require.Error(t, verifySignature("0x1234", sigHex, nonce))
	require.Error(t, verifySignature(addr, "beef", nonce))
}

func TestVerifySignatureLongPayload(t *testing.T) {
	// Payloads over 256 bytes are blake2b-hashed before signing.
	nonce := strings.Repeat("x", 300)
	addr, sigHex := signNonce(t, nonce)
	require.NoError(t, verifySignature(addr, sigHex, nonce))
}

func TestIssueJWT(t *testing.T) {
	secret := []byte("test-secret")
	tokenStr, err := issueJWT("0xalice", secret)
	require.NoError(t, err)

	claims := &authClaims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) { return secret, nil })
	require.NoError(t, err)
	require.True(t, tok.Valid)
	require.Equal(t, "0xalice", claims.Addr)
}
