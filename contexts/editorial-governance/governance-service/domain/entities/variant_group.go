package entities

import "time"

// VariantGroup gathers dictionary entries that are lexical variants of one
// concept. Membership lives on Entry.VariantGroupID.
type VariantGroup struct {
	GroupID       string
	MotherEntryID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MotherOf returns the member referenced as mother. It reports false when the
// reference is empty, points outside members, or the member lacks IsMother.
func (g VariantGroup) MotherOf(members []Entry) (Entry, bool) {
	if g.MotherEntryID == "" {
		return Entry{}, false
	}
	for _, member := range members {
		if member.EntryID == g.MotherEntryID {
			return member, member.IsMother && member.VariantGroupID == g.GroupID
		}
	}
	return Entry{}, false
}
