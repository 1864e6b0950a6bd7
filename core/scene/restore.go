package scene

import (
	"encoding/json"
	"time"
)

// DeletedElementTimeout is how long a tombstone keeps being synced after its
// last update so that other clients learn about the deletion.
const DeletedElementTimeout = 24 * time.Hour

// RestoreOptions controls Restore.
type RestoreOptions struct {
	// DeleteInvisible drops elements too small to ever be rendered.
	DeleteInvisible bool
}

// Restore normalizes a decoded collection: duplicate ids keep their last
// occurrence at the position of the first, versions below 1 become 1, and
// invisible elements are dropped when requested.
func Restore(elements []Element, opts RestoreOptions) []Element {
	out := make([]Element, 0, len(elements))
	pos := make(map[string]int, len(elements))
	for _, el := range elements {
		if el.ID == "" {
			continue
		}
		if el.Version < 1 {
			el.Version = 1
		}
		if i, ok := pos[el.ID]; ok {
			out[i] = el
			continue
		}
		pos[el.ID] = len(out)
		out = append(out, el)
	}

	if !opts.DeleteInvisible {
		return out
	}
	visible := out[:0]
	for _, el := range out {
		if el.IsInvisiblySmall() {
			continue
		}
		visible = append(visible, el)
	}
	return visible
}

// Syncable returns the elements that should be written to the remote store:
// live elements that are not invisibly small plus tombstones younger than
// DeletedElementTimeout.
func Syncable(elements []Element, now time.Time) []Element {
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if el.IsSyncable(now) {
			out = append(out, el)
		}
	}
	return out
}

// IsSyncable reports whether el should be written to the remote store.
// Tombstones sync while younger than DeletedElementTimeout, whatever their
// size, so deleting an invisibly small element still reaches peers.
func (e Element) IsSyncable(now time.Time) bool {
	if e.IsDeleted {
		return e.Updated > now.Add(-DeletedElementTimeout).UnixMilli()
	}
	return !e.IsInvisiblySmall()
}

// IsInvisiblySmall reports whether the element has no visible extent.
// Elements without geometry attributes are never considered invisible.
func (e Element) IsInvisiblySmall() bool {
	switch e.Type {
	case "line", "arrow", "freedraw":
		raw, ok := e.Fields["points"]
		if !ok {
			return false
		}
		var points [][]float64
		if err := json.Unmarshal(raw, &points); err != nil {
			return false
		}
		return len(points) < 2
	default:
		w, okW := e.number("width")
		h, okH := e.number("height")
		return okW && okH && w == 0 && h == 0
	}
}

func (e Element) number(key string) (float64, bool) {
	raw, ok := e.Fields[key]
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}
