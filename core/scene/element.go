package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope keys read and written by Element. Everything else lives in Fields.
const (
	keyID           = "id"
	keyType         = "type"
	keyVersion      = "version"
	keyVersionNonce = "versionNonce"
	keyIsDeleted    = "isDeleted"
	keyIndex        = "index"
	keyUpdated      = "updated"
)

// Element is a uniquely identified drawing record.
type Element struct {
	// ID is the element identifier, unique within a scene.
	ID string
	// Type is the element kind (rectangle, arrow, freedraw...).
	Type string
	// Version increases on every mutation of the element.
	Version int64
	// VersionNonce is a random value regenerated on every mutation.
	VersionNonce int64
	// IsDeleted marks a tombstone.
	IsDeleted bool
	// Index is the fractional order key. Empty when the client did not assign one.
	Index string
	// Updated is the last mutation time in epoch milliseconds.
	Updated int64
	// Fields holds every other attribute, preserved verbatim.
	Fields map[string]json.RawMessage
}

// UnmarshalJSON decodes the envelope and keeps unknown attributes in Fields.
func (e *Element) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("element must be a JSON object")
	}

	var out Element
	if err := decodeField(raw, keyID, &out.ID); err != nil {
		return err
	}
	if out.ID == "" {
		return fmt.Errorf("element is missing an id")
	}
	if err := decodeField(raw, keyType, &out.Type); err != nil {
		return err
	}
	if err := decodeField(raw, keyVersion, &out.Version); err != nil {
		return err
	}
	if err := decodeField(raw, keyVersionNonce, &out.VersionNonce); err != nil {
		return err
	}
	if err := decodeField(raw, keyIsDeleted, &out.IsDeleted); err != nil {
		return err
	}
	if err := decodeField(raw, keyIndex, &out.Index); err != nil {
		return err
	}
	if err := decodeField(raw, keyUpdated, &out.Updated); err != nil {
		return err
	}

	for _, k := range []string{keyID, keyType, keyVersion, keyVersionNonce, keyIsDeleted, keyIndex, keyUpdated} {
		delete(raw, k)
	}
	if len(raw) > 0 {
		out.Fields = raw
	}

	*e = out
	return nil
}

// MarshalJSON emits a single object with sorted keys.
func (e Element) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(e.Fields)+7)
	for k, v := range e.Fields {
		obj[k] = v
	}
	obj[keyID] = e.ID
	obj[keyVersion] = e.Version
	obj[keyVersionNonce] = e.VersionNonce
	obj[keyIsDeleted] = e.IsDeleted
	if e.Type != "" {
		obj[keyType] = e.Type
	}
	if e.Index != "" {
		obj[keyIndex] = e.Index
	} else {
		obj[keyIndex] = nil
	}
	if e.Updated != 0 {
		obj[keyUpdated] = e.Updated
	}
	return json.Marshal(obj)
}

// Clone returns a copy that shares no mutable state with e.
func (e Element) Clone() Element {
	if e.Fields == nil {
		return e
	}
	fields := make(map[string]json.RawMessage, len(e.Fields))
	for k, v := range e.Fields {
		fields[k] = append(json.RawMessage(nil), v...)
	}
	e.Fields = fields
	return e
}

// Marshal serializes a collection to its canonical byte encoding.
func Marshal(elements []Element) ([]byte, error) {
	if elements == nil {
		elements = []Element{}
	}
	return json.Marshal(elements)
}

// Unmarshal decodes a collection produced by Marshal.
func Unmarshal(data []byte) ([]Element, error) {
	var elements []Element
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("failed to decode elements: %w", err)
	}
	if elements == nil {
		elements = []Element{}
	}
	return elements, nil
}

// decodeField decodes raw[key] into dst. Missing keys and JSON null are left as zero values.
func decodeField(raw map[string]json.RawMessage, key string, dst any) error {
	v, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("element field %q: %w", key, err)
	}
	return nil
}
