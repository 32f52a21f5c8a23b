package services

import "sort"

// QuorumTally partitions the approvers of a single round by role.
type QuorumTally struct {
	ReviewerIDs []string
	AdminIDs    []string
}

// Met holds with two reviewers, or one reviewer plus one admin. Admins alone
// never satisfy quorum.
func (t QuorumTally) Met() bool {
	reviewers := len(t.ReviewerIDs)
	admins := len(t.AdminIDs)
	return reviewers >= 2 || (reviewers >= 1 && admins >= 1)
}

// Approvers returns the union of reviewer and admin ids, sorted.
func (t QuorumTally) Approvers() []string {
	seen := make(map[string]struct{}, len(t.ReviewerIDs)+len(t.AdminIDs))
	out := make([]string, 0, len(t.ReviewerIDs)+len(t.AdminIDs))
	for _, id := range append(append([]string(nil), t.ReviewerIDs...), t.AdminIDs...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// RoleLookup answers role membership for one user.
type RoleLookup func(userID string) (isReviewer bool, isAdmin bool, err error)

// TallyApprovals classifies approvers: admin role wins over reviewer, and
// users holding neither role are ignored.
func TallyApprovals(approverIDs []string, lookup RoleLookup) (QuorumTally, error) {
	var tally QuorumTally
	seen := make(map[string]struct{}, len(approverIDs))
	for _, id := range approverIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		isReviewer, isAdmin, err := lookup(id)
		if err != nil {
			return QuorumTally{}, err
		}
		switch {
		case isAdmin:
			tally.AdminIDs = append(tally.AdminIDs, id)
		case isReviewer:
			tally.ReviewerIDs = append(tally.ReviewerIDs, id)
		}
	}
	return tally, nil
}
