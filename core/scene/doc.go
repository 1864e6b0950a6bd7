// Package scene defines the element envelope shared by every layer of the
// scene sync service.
//
// An Element is opaque apart from the fields reconciliation needs: its id,
// per-record version, deletion flag and fractional order key. Everything else
// a client sends (geometry, styling, bindings) is carried through untouched and
// re-emitted on serialization.
//
// # Scene version
//
// Version computes a fingerprint over the (id, version) pairs of a collection.
// Two snapshots with equal fingerprints are treated as equivalent without
// comparing their content.
//
// # Restore and sync filters
//
// Restore normalizes a decoded collection (deduplication, default versions,
// optional removal of invisibly small elements). Syncable drops elements that
// should not be written back to the store, such as long-deleted ones.
package scene
