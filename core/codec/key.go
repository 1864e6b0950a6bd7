package codec

import (
	"crypto/sha256"
	"io"

	"colabdraw/core/errors"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the size in bytes of every derived key.
const KeySize = chacha20poly1305.KeySize

// Purpose selects the HKDF info string used to derive a key.
type Purpose string

const (
	// PurposeScene derives keys for scene documents.
	PurposeScene Purpose = "colabdraw.scene.v1"
	// PurposeAsset derives keys for binary assets.
	PurposeAsset Purpose = "colabdraw.asset.v1"
)

// DeriveKey derives a 32-byte key for purpose from a room secret.
func DeriveKey(roomKey string, purpose Purpose) ([]byte, error) {
	if roomKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "room key is empty")
	}
	reader := hkdf.New(sha256.New, []byte(roomKey), nil, []byte(purpose))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, errors.Wrap(err, "hkdf key derivation failed")
	}
	return key, nil
}
