package codec

import (
	"crypto/rand"
	"io"

	"colabdraw/core/errors"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/chacha20poly1305"
)

// AssetBlobVersion is the version byte prepended to every encoded asset and
// authenticated as additional data.
const AssetBlobVersion byte = 0x01

// AssetBlobOverhead is the fixed size of the version byte, nonce and tag.
const AssetBlobOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

const compressionZstd = "zstd"

// AssetMetadata is carried inside the encrypted envelope of every asset.
type AssetMetadata struct {
	MimeType string `cbor:"1,keyasint,omitempty"`
	// Created is the creation time in epoch milliseconds.
	Created int64 `cbor:"2,keyasint,omitempty"`
}

type assetEnvelope struct {
	Metadata    AssetMetadata `cbor:"1,keyasint"`
	Compression string        `cbor:"2,keyasint"`
	Size        int           `cbor:"3,keyasint"`
	Data        []byte        `cbor:"4,keyasint"`
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	encMode     cbor.EncMode
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
}

// EncodeAsset compresses data, wraps it with meta and seals the result under
// the asset key derived from roomKey.
func EncodeAsset(roomKey string, data []byte, meta AssetMetadata) ([]byte, error) {
	key, err := DeriveKey(roomKey, PurposeAsset)
	if err != nil {
		return nil, err
	}

	var compressed []byte
	if len(data) > 0 {
		compressed = zstdEncoder.EncodeAll(data, nil)
	}
	envelope, err := encMode.Marshal(assetEnvelope{
		Metadata:    meta,
		Compression: compressionZstd,
		Size:        len(data),
		Data:        compressed,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode asset envelope")
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "create XChaCha20-Poly1305 cipher")
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "generate nonce")
	}

	out := make([]byte, 1+len(nonce), AssetBlobOverhead+len(envelope))
	out[0] = AssetBlobVersion
	copy(out[1:], nonce[:])
	return aead.Seal(out, nonce[:], envelope, []byte{AssetBlobVersion}), nil
}

// DecodeAsset reverses EncodeAsset.
func DecodeAsset(roomKey string, blob []byte) ([]byte, AssetMetadata, error) {
	if len(blob) < AssetBlobOverhead {
		return nil, AssetMetadata{}, errors.Decryption(
			errors.Newf("asset blob is %d bytes, minimum is %d", len(blob), AssetBlobOverhead), "open asset")
	}
	if blob[0] != AssetBlobVersion {
		return nil, AssetMetadata{}, errors.Decryption(
			errors.Newf("asset blob version %d is not supported", blob[0]), "open asset")
	}

	key, err := DeriveKey(roomKey, PurposeAsset)
	if err != nil {
		return nil, AssetMetadata{}, errors.Decryption(err, "derive asset key")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, AssetMetadata{}, errors.Decryption(err, "create XChaCha20-Poly1305 cipher")
	}

	nonce := blob[1 : 1+chacha20poly1305.NonceSizeX]
	envelope, err := aead.Open(nil, nonce, blob[1+chacha20poly1305.NonceSizeX:], blob[:1])
	if err != nil {
		return nil, AssetMetadata{}, errors.Decryption(err, "open asset (wrong key or tampered data)")
	}

	var env assetEnvelope
	if err := cbor.Unmarshal(envelope, &env); err != nil {
		return nil, AssetMetadata{}, errors.Decryption(err, "decode asset envelope")
	}
	if env.Size < 0 {
		return nil, AssetMetadata{}, errors.Decryption(errors.Newf("invalid asset size %d", env.Size), "decode asset envelope")
	}
	if env.Compression != compressionZstd {
		return nil, AssetMetadata{}, errors.Decryption(
			errors.Newf("unsupported asset compression %q", env.Compression), "decode asset envelope")
	}

	if env.Size == 0 {
		return []byte{}, env.Metadata, nil
	}
	data, err := zstdDecoder.DecodeAll(env.Data, make([]byte, 0, env.Size))
	if err != nil {
		return nil, AssetMetadata{}, errors.Decryption(err, "decompress asset")
	}
	if len(data) != env.Size {
		return nil, AssetMetadata{}, errors.Decryption(
			errors.Newf("asset is %d bytes, envelope says %d", len(data), env.Size), "decompress asset")
	}
	return data, env.Metadata, nil
}
