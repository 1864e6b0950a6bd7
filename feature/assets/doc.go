// Package assets synchronizes binary files (images and other attachments)
// between clients and the blob store.
//
// Files are compressed and encrypted with the room key before upload (see
// EncodeAsset and core/codec), so the blob store only ever sees opaque
// payloads. Objects are keyed "<prefix>/<id>" and written at most once.
//
// Batches fan out concurrently and never fail fast: SaveAssets and LoadAssets
// always return a partition of the requested ids into succeeded and failed,
// leaving the retry policy to the caller.
//
//	result := svc.SaveAssets(ctx, "files/rooms/abc", items)
//	if err := result.Err(); errors.Is(err, errors.ErrPartialBatch) {
//	    // retry result.Errored later
//	}
package assets
