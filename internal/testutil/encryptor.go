package testutil

import (
	"paiid/internal/encryption"
	"paiid/internal/gallery"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() gallery.Encryptor {
	return encryption.NewTestEncryptor()
}
