package internal

import "sort"

// GroupCandidates indexes candidates by their position ID, preserving the
// upstream order within each position.
func GroupCandidates(candidates []Candidate) map[string][]Candidate {
	grouped := make(map[string][]Candidate)
	for _, cand := range candidates {
		grouped[cand.PositionID] = append(grouped[cand.PositionID], cand)
	}
	return grouped
}

// MissingSelections returns the names of positions that have at least one
// candidate but no selection. Positions with zero candidates are exempt
// (shown as N/A in the booth).
func MissingSelections(positions []Position, grouped map[string][]Candidate, selections map[string]string) []string {
	var missing []string
	for _, pos := range positions {
		if len(grouped[pos.ID]) == 0 {
			continue
		}
		if selections[pos.ID] == "" {
			missing = append(missing, pos.Name)
		}
	}
	return missing
}

// InvalidSelections returns selection keys that do not name a candidate of
// that position: unknown positions, or a candidate belonging elsewhere.
func InvalidSelections(grouped map[string][]Candidate, selections map[string]string) []string {
	var invalid []string
	for posID, candID := range selections {
		found := false
		for _, cand := range grouped[posID] {
			if cand.ID == candID {
				found = true
				break
			}
		}
		if !found {
			invalid = append(invalid, posID)
		}
	}
	sort.Strings(invalid)
	return invalid
}
