package reconcile

import (
	"sort"

	"colabdraw/core/scene"
)

// Reconcile merges local pending elements with the remote stored elements.
func Reconcile(local, remote []scene.Element, appState *AppState) []scene.Element {
	return ReconcileWithReport(local, remote, appState).Elements
}

// ReconcileWithReport merges local with remote and returns the result
// together with per-id decisions and aggregate counts.
func ReconcileWithReport(local, remote []scene.Element, appState *AppState) *Report {
	localIDs, localIndex := dedupe(local)
	remoteIDs, remoteIndex := dedupe(remote)

	report := &Report{
		Decisions:   make(map[string]Decision),
		Interrupted: []string{},
	}

	editing := make(map[string]struct{})
	if appState != nil {
		for _, id := range appState.EditingElementIDs {
			editing[id] = struct{}{}
		}
	}

	winners := make(map[string]scene.Element, len(localIndex)+len(remoteIndex))
	for _, id := range remoteIDs {
		remoteEl := remoteIndex[id]
		localEl, shared := localIndex[id]
		if !shared {
			winners[id] = remoteEl
			report.Summary.RemoteOnly++
			continue
		}

		winner, decision := pickWinner(localEl, remoteEl)
		winners[id] = winner
		report.Decisions[id] = decision
		if decision == DecisionLocal {
			report.Summary.LocalWins++
		} else {
			report.Summary.RemoteWins++
			if _, ok := editing[id]; ok {
				report.Interrupted = append(report.Interrupted, id)
			}
		}
	}
	for _, id := range localIDs {
		if _, ok := remoteIndex[id]; !ok {
			winners[id] = localIndex[id]
			report.Summary.LocalOnly++
		}
	}

	var order []string
	if allIndexed(winners) {
		order = make([]string, 0, len(winners))
		for id := range winners {
			order = append(order, id)
		}
		sort.Slice(order, func(i, j int) bool {
			a, b := winners[order[i]], winners[order[j]]
			if a.Index != b.Index {
				return a.Index < b.Index
			}
			return a.ID < b.ID
		})
	} else {
		order = anchorMerge(localIDs, remoteIDs, remoteIndex)
	}

	elements := make([]scene.Element, len(order))
	for i, id := range order {
		elements[i] = winners[id].Clone()
	}
	report.Summary.RepairedIndices = repairIndices(elements)
	report.Summary.TotalItems = len(elements)
	report.Elements = elements

	sort.Strings(report.Interrupted)
	return report
}

// pickWinner applies the conflict policy to two variants of the same id.
func pickWinner(local, remote scene.Element) (scene.Element, Decision) {
	if local.Version != remote.Version {
		if local.Version > remote.Version {
			return local, DecisionLocal
		}
		return remote, DecisionRemote
	}
	if local.IsDeleted != remote.IsDeleted {
		if !local.IsDeleted {
			return local, DecisionLocal
		}
		return remote, DecisionRemote
	}
	return local, DecisionLocal
}

// dedupe returns the ids of elements in first-seen order and an index of the
// last occurrence of each id.
func dedupe(elements []scene.Element) ([]string, map[string]scene.Element) {
	ids := make([]string, 0, len(elements))
	index := make(map[string]scene.Element, len(elements))
	for _, el := range elements {
		if _, seen := index[el.ID]; !seen {
			ids = append(ids, el.ID)
		}
		index[el.ID] = el
	}
	return ids, index
}

func allIndexed(elements map[string]scene.Element) bool {
	for _, el := range elements {
		if !validKey(el.Index) {
			return false
		}
	}
	return true
}
