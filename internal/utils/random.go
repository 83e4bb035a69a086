package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	PasswordLength   = 12
)

// GeneratePassword returns a random alphanumeric password of the fixed
// length used when provisioning a user without a supplied password.
func GeneratePassword() string {
	return randomString(PasswordLength)
}

func randomString(length int) string {
	max := big.NewInt(int64(len(passwordAlphabet)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic(err)
		}
		result[i] = passwordAlphabet[n.Int64()]
	}
	return string(result)
}
