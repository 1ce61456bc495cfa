package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt"
	"github.com/jagaapp/jaga/server/auth/key"
	"golang.org/x/crypto/bcrypt"
)

type JagaTokenClaims struct {
	FirstName string `json:"first_name"`
	Language  string `json:"language"`
	jwt.StandardClaims
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func EncodeJWT(claims JagaTokenClaims, keyPair *key.KeyPair) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod("RS256"), claims)

	tokenString, err := token.SignedString(keyPair.PrivateKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func DecodeJWT(tokenString string, keyPair *key.KeyPair) (*JagaTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JagaTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return keyPair.PublicKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid jwt: %v", err)
	}

	tokenClaims, ok := token.Claims.(*JagaTokenClaims)
	if !ok {
		return nil, fmt.Errorf("unable to assert token.Claims to JagaTokenClaims")
	}

	return tokenClaims, nil
}
