package entities

import (
	"strings"
	"time"
)

type EntryKind string

const (
	EntryKindDictionary EntryKind = "dictionary"
	EntryKindFolklore   EntryKind = "folklore"
)

func (k EntryKind) Valid() bool {
	return k == EntryKindDictionary || k == EntryKindFolklore
}

type EntryStatus string

const (
	EntryStatusDraft               EntryStatus = "draft"
	EntryStatusPending             EntryStatus = "pending"
	EntryStatusApproved            EntryStatus = "approved"
	EntryStatusApprovedUnderReview EntryStatus = "approved_under_review"
	EntryStatusRejected            EntryStatus = "rejected"
	EntryStatusArchived            EntryStatus = "archived"
	EntryStatusDeleted             EntryStatus = "deleted"
)

// Published reports whether the status counts as live content for variant
// elections and flagging.
func (s EntryStatus) Published() bool {
	return s == EntryStatusApproved || s == EntryStatusApprovedUnderReview
}

type DictionaryContent struct {
	Term                          string
	Meaning                       string
	PartOfSpeech                  string
	PronunciationText             string
	AudioPronunciation            string
	AudioSource                   string
	AudioSourceIsSelfRecorded     bool
	VariantType                   string
	UsageNotes                    string
	Etymology                     string
	ExampleSentence               string
	ExampleTranslation            string
	SourceText                    string
	TermSourceIsSelfKnowledge     bool
	InflectedForms                map[string]string
	Photo                         string
	PhotoSource                   string
	PhotoSourceIsContributorOwned bool
	EnglishSynonym                string
	IvatanSynonym                 string
	EnglishAntonym                string
	IvatanAntonym                 string
}

type FolkloreCategory string

const (
	FolkloreCategoryMyth    FolkloreCategory = "myth"
	FolkloreCategoryLegend  FolkloreCategory = "legend"
	FolkloreCategoryLaji    FolkloreCategory = "laji"
	FolkloreCategoryPoem    FolkloreCategory = "poem"
	FolkloreCategoryProverb FolkloreCategory = "proverb"
	FolkloreCategoryIdiom   FolkloreCategory = "idiom"
)

func (c FolkloreCategory) Valid() bool {
	switch c {
	case FolkloreCategoryMyth, FolkloreCategoryLegend, FolkloreCategoryLaji,
		FolkloreCategoryPoem, FolkloreCategoryProverb, FolkloreCategoryIdiom:
		return true
	default:
		return false
	}
}

type FolkloreContent struct {
	Title              string
	Content            string
	Category           FolkloreCategory
	MunicipalitySource string
	Source             string
	SelfKnowledge      bool
	MediaURL           string
	MediaSource        string
	SelfProducedMedia  bool
	CopyrightUsage     string
	VariantType        string
}

// Entry is the canonical published record for both dictionary terms and
// folklore entries. Only the content struct matching Kind is populated.
type Entry struct {
	EntryID              string
	Kind                 EntryKind
	Status               EntryStatus
	Dictionary           DictionaryContent
	Folklore             FolkloreContent
	InitialContributorID string
	LastRevisedByID      string
	AudioContributorID   string
	PhotoContributorID   string
	MediaContributorID   string
	ApproverIDs          []string
	IsMother             bool
	VariantGroupID       string
	ApprovedAt           *time.Time
	ArchivedAt           *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// VariantType returns the variant label for either kind.
func (e Entry) VariantType() string {
	if e.Kind == EntryKindFolklore {
		return e.Folklore.VariantType
	}
	return e.Dictionary.VariantType
}

// Headline is the term or title, used in logs and history listings.
func (e Entry) Headline() string {
	if e.Kind == EntryKindFolklore {
		return e.Folklore.Title
	}
	return e.Dictionary.Term
}

// MediaRefs lists the non-empty media references held by the entry.
func (e Entry) MediaRefs() []string {
	var refs []string
	for _, field := range mediaFieldsFor(e.Kind) {
		if ref := strings.TrimSpace(*field.value(&e)); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Clone returns a copy that shares no mutable state with e.
func (e Entry) Clone() Entry {
	out := e
	out.ApproverIDs = append([]string(nil), e.ApproverIDs...)
	if e.Dictionary.InflectedForms != nil {
		out.Dictionary.InflectedForms = make(map[string]string, len(e.Dictionary.InflectedForms))
		for k, v := range e.Dictionary.InflectedForms {
			out.Dictionary.InflectedForms[k] = v
		}
	}
	out.ApprovedAt = cloneTime(e.ApprovedAt)
	out.ArchivedAt = cloneTime(e.ArchivedAt)
	return out
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
