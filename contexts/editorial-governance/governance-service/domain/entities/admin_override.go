package entities

import "time"

type OverrideAction string

const (
	OverrideActionForceReject     OverrideAction = "force_reject"
	OverrideActionRestoreApproved OverrideAction = "restore_approved"
	OverrideActionArchive         OverrideAction = "archive"
)

func (a OverrideAction) Valid() bool {
	return a == OverrideActionForceReject || a == OverrideActionRestoreApproved || a == OverrideActionArchive
}

// TargetStatus is the entry status the action resolves a flagged entry to.
func (a OverrideAction) TargetStatus() EntryStatus {
	switch a {
	case OverrideActionForceReject:
		return EntryStatusRejected
	case OverrideActionRestoreApproved:
		return EntryStatusApproved
	case OverrideActionArchive:
		return EntryStatusArchived
	default:
		return ""
	}
}

// AdminOverride is the audit row of an admin resolving a flagged entry.
type AdminOverride struct {
	OverrideID   string
	AdminID      string
	Kind         EntryKind
	EntryID      string
	Action       OverrideAction
	Notes        string
	StatusBefore EntryStatus
	StatusAfter  EntryStatus
	CreatedAt    time.Time
}
