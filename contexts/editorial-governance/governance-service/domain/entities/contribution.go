package entities

import "time"

type ContributionType string

const (
	ContributionTypeDictionaryTerm ContributionType = "dictionary_term"
	ContributionTypeFolkloreEntry  ContributionType = "folklore_entry"
	ContributionTypeRevision       ContributionType = "revision"
)

// ContributionEvent credits a user once per (entry, type). EntryID is emptied
// when the entry is hard-deleted; the event itself is never removed.
type ContributionEvent struct {
	EventID    string
	UserID     string
	Type       ContributionType
	EntryKind  EntryKind
	EntryID    string
	RevisionID string
	AwardedAt  time.Time
}

type ContributionSummary struct {
	UserID             string
	DictionaryTerms    int
	FolkloreEntries    int
	Revisions          int
	Total              int
	LastContributionAt *time.Time
}

type LeaderboardRow struct {
	UserID       string
	Username     string
	Municipality string
	ContributionSummary
}
