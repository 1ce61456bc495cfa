package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/jagaapp/jaga/server/auth/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyPair(t *testing.T) *key.KeyPair {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.Nil(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	keyPair, err := key.NewKeyPairFromRSAPrivateKeyPem(string(pemBytes))
	require.Nil(t, err)

	return keyPair
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("sayang-selamat")
	require.Nil(t, err)

	assert.True(t, CheckPasswordHash("sayang-selamat", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestJWTRoundTrip(t *testing.T) {
	keyPair := testKeyPair(t)

	claims := JagaTokenClaims{
		FirstName: "aisyah",
		Language:  "ms",
		StandardClaims: jwt.StandardClaims{
			Subject:   "42",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}

	tokenString, err := EncodeJWT(claims, keyPair)
	require.Nil(t, err)

	decoded, err := DecodeJWT(tokenString, keyPair)
	require.Nil(t, err)

	assert.Equal(t, "aisyah", decoded.FirstName)
	assert.Equal(t, "ms", decoded.Language)
	assert.Equal(t, "42", decoded.Subject)
}

func TestDecodeJWTRejectsExpiredToken(t *testing.T) {
	keyPair := testKeyPair(t)

	claims := JagaTokenClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   "42",
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		},
	}

	tokenString, err := EncodeJWT(claims, keyPair)
	require.Nil(t, err)

	_, err = DecodeJWT(tokenString, keyPair)
	assert.NotNil(t, err)
}

func TestDecodeJWTRejectsForeignKey(t *testing.T) {
	tokenString, err := EncodeJWT(JagaTokenClaims{
		StandardClaims: jwt.StandardClaims{Subject: "42", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}, testKeyPair(t))
	require.Nil(t, err)

	_, err = DecodeJWT(tokenString, testKeyPair(t))
	assert.NotNil(t, err)
}
