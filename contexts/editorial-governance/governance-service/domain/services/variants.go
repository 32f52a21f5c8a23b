package services

import (
	"sort"
	"strings"
	"time"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
)

var generalizedFormAliases = map[string]struct{}{
	"general":        {},
	"general ivatan": {},
}

// IsGeneralizedForm reports whether a variant type names the cross-dialect
// umbrella form.
func IsGeneralizedForm(variantType string) bool {
	_, ok := generalizedFormAliases[strings.ToLower(strings.TrimSpace(variantType))]
	return ok
}

// MotherCandidate is a group member considered in an election.
type MotherCandidate struct {
	EntryID         string
	Status          entities.EntryStatus
	FirstApprovedAt *time.Time
	EntryCreatedAt  time.Time
}

// ElectMother picks the published, non-excluded candidate that sorts first by
// earliest approval, then entry creation, then id.
func ElectMother(candidates []MotherCandidate, excludeEntryID string) (string, bool) {
	eligible := make([]MotherCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.EntryID == excludeEntryID || !candidate.Status.Published() {
			continue
		}
		eligible = append(eligible, candidate)
	}
	if len(eligible) == 0 {
		return "", false
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return electionKey(eligible[i]).before(electionKey(eligible[j]))
	})
	return eligible[0].EntryID, true
}

type candidateKey struct {
	approved time.Time
	created  time.Time
	id       string
}

func electionKey(candidate MotherCandidate) candidateKey {
	approved := candidate.EntryCreatedAt
	if candidate.FirstApprovedAt != nil {
		approved = *candidate.FirstApprovedAt
	}
	return candidateKey{approved: approved, created: candidate.EntryCreatedAt, id: candidate.EntryID}
}

func (k candidateKey) before(other candidateKey) bool {
	if !k.approved.Equal(other.approved) {
		return k.approved.Before(other.approved)
	}
	if !k.created.Equal(other.created) {
		return k.created.Before(other.created)
	}
	return k.id < other.id
}
