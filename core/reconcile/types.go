package reconcile

import "colabdraw/core/scene"

// AppState is the editor context of the local client. It never changes the
// merge outcome; it only feeds the hints of a Report.
type AppState struct {
	// EditingElementIDs are the elements the local user is actively editing.
	EditingElementIDs []string `json:"editingElementIds,omitempty"`

	// SelectedElementIDs are the elements currently selected locally.
	SelectedElementIDs []string `json:"selectedElementIds,omitempty"`
}

// Decision records which side supplied the element kept for an id.
type Decision string

const (
	// DecisionLocal keeps the local element.
	DecisionLocal Decision = "local"
	// DecisionRemote keeps the remote element.
	DecisionRemote Decision = "remote"
)

// Report is the full output of a reconciliation.
type Report struct {
	// Elements is the merged, ordered collection.
	Elements []scene.Element `json:"elements"`

	// Decisions maps every shared id to the side that won.
	Decisions map[string]Decision `json:"decisions"`

	// Interrupted lists ids the local user is editing whose local variant
	// lost to the remote one. Renderers use it to refresh those elements.
	Interrupted []string `json:"interrupted"`

	// Summary provides aggregate counts.
	Summary Summary `json:"summary"`
}

// Summary provides aggregate statistics for a reconciliation.
type Summary struct {
	// TotalItems is the number of elements in the result.
	TotalItems int `json:"total_items"`

	// LocalWins counts shared ids resolved to the local element.
	LocalWins int `json:"local_wins"`

	// RemoteWins counts shared ids resolved to the remote element.
	RemoteWins int `json:"remote_wins"`

	// LocalOnly counts ids present only locally.
	LocalOnly int `json:"local_only"`

	// RemoteOnly counts ids present only remotely.
	RemoteOnly int `json:"remote_only"`

	// RepairedIndices counts elements that received a regenerated order key.
	RepairedIndices int `json:"repaired_indices"`
}
