package config

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const keyLength = 32

// WriteDefault writes a config file with default settings, the API enabled,
// and a freshly generated key. It refuses to overwrite an existing file and
// returns the generated key.
func WriteDefault(path string) (string, error) {
	key, err := GenerateKey(keyLength)
	if err != nil {
		return "", fmt.Errorf("generating api key: %w", err)
	}

	v := newViper()
	v.Set("api.enabled", true)
	v.Set("api.key", key)

	if err := v.SafeWriteConfigAs(path); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return key, nil
}

// GenerateKey creates a random alphanumeric key of the given length.
func GenerateKey(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
