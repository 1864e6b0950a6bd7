package codec

import (
	"crypto/rand"
	"encoding/base64"
	"io"

	"colabdraw/core/errors"
	"colabdraw/core/scene"

	"golang.org/x/crypto/chacha20poly1305"
)

// IVSize is the size in bytes of a scene initialization vector.
const IVSize = chacha20poly1305.NonceSizeX

// Sealed is an encrypted element collection.
type Sealed struct {
	IV         []byte
	Ciphertext []byte
}

// Encode returns the base64 text form of the IV and ciphertext.
func (s Sealed) Encode() (iv, ciphertext string) {
	return base64.StdEncoding.EncodeToString(s.IV), base64.StdEncoding.EncodeToString(s.Ciphertext)
}

// DecodeSealed parses the base64 text form produced by Sealed.Encode.
func DecodeSealed(iv, ciphertext string) (Sealed, error) {
	rawIV, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return Sealed{}, errors.Decryption(err, "decode iv")
	}
	rawCiphertext, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return Sealed{}, errors.Decryption(err, "decode ciphertext")
	}
	return Sealed{IV: rawIV, Ciphertext: rawCiphertext}, nil
}

// EncryptElements serializes elements and seals them under a key derived from roomKey.
func EncryptElements(roomKey string, elements []scene.Element) (Sealed, error) {
	key, err := DeriveKey(roomKey, PurposeScene)
	if err != nil {
		return Sealed{}, err
	}

	plaintext, err := scene.Marshal(elements)
	if err != nil {
		return Sealed{}, errors.Wrap(err, "serialize elements")
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return Sealed{}, errors.Wrap(err, "create XChaCha20-Poly1305 cipher")
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return Sealed{}, errors.Wrap(err, "generate iv")
	}

	return Sealed{IV: iv, Ciphertext: aead.Seal(nil, iv, plaintext, nil)}, nil
}

// DecryptElements opens a sealed collection. A wrong key or corrupted input
// yields errors.ErrDecryption.
func DecryptElements(iv, ciphertext []byte, roomKey string) ([]scene.Element, error) {
	key, err := DeriveKey(roomKey, PurposeScene)
	if err != nil {
		return nil, errors.Decryption(err, "derive scene key")
	}
	if len(iv) != IVSize {
		return nil, errors.Decryption(errors.Newf("iv is %d bytes, expected %d", len(iv), IVSize), "open scene")
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Decryption(err, "create XChaCha20-Poly1305 cipher")
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, errors.Decryption(err, "open scene (wrong key or tampered data)")
	}

	elements, err := scene.Unmarshal(plaintext)
	if err != nil {
		return nil, errors.Decryption(err, "decode scene")
	}
	return elements, nil
}
