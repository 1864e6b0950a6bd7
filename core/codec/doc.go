// Package codec implements the encryption layer between the scene sync
// service and its remote stores.
//
// Room keys are never used directly: DeriveKey stretches the room secret with
// HKDF-SHA256 into a 32-byte key per purpose (scene documents, assets), so the
// same room secret never encrypts two kinds of payload under one key.
//
// # Scene documents
//
// EncryptElements serializes an element collection and seals it with
// XChaCha20-Poly1305 under a fresh 24-byte IV. The IV and ciphertext are kept
// apart because the document store persists them as separate base64 columns.
//
// # Assets
//
// EncodeAsset compresses the payload with zstd, wraps it in a CBOR envelope
// carrying the asset metadata and seals the envelope. The resulting blob is
// self-contained:
//
//	[Version: 1 byte (0x01)] [Nonce: 24 bytes] [Ciphertext+Tag]
//
// Every decoding failure, whatever its cause, is reported as
// errors.ErrDecryption.
package codec
