package ports

import (
	"context"
	"time"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	"lexicon/internal/shared/events"
)

type EntryFilter struct {
	Kind           entities.EntryKind
	Statuses       []entities.EntryStatus
	VariantGroupID string
	EntryIDs       []string
}

type RevisionFilter struct {
	Kind                 entities.EntryKind
	EntryID              string
	Statuses             []entities.RevisionStatus
	ContributorID        string
	ExcludeContributorID string
	BaseSnapshot         *bool
}

type ReviewFilter struct {
	Kind        entities.EntryKind
	RevisionIDs []string
	ReviewerID  string
	Round       *int
	Decision    entities.ReviewDecision
}

type ContributionFilter struct {
	UserID    string
	EntryKind entities.EntryKind
	EntryID   string
}

// Repository is the storage surface of the governance core. Every method is
// usable on the root store and on the transaction-scoped repository handed
// to WithinTx callbacks.
type Repository interface {
	CreateEntry(ctx context.Context, entry entities.Entry) error
	UpdateEntry(ctx context.Context, entry entities.Entry) error
	GetEntry(ctx context.Context, entryID string) (entities.Entry, error)
	// LockEntry reads the entry and holds a row lock until the transaction ends.
	LockEntry(ctx context.Context, entryID string) (entities.Entry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]entities.Entry, error)
	// DeleteEntry hard-deletes the entry with its revisions and reviews and
	// nulls the entry reference of its contribution events.
	DeleteEntry(ctx context.Context, entryID string) error

	CreateRevision(ctx context.Context, revision entities.Revision) error
	UpdateRevision(ctx context.Context, revision entities.Revision) error
	GetRevision(ctx context.Context, revisionID string) (entities.Revision, error)
	LockRevision(ctx context.Context, revisionID string) (entities.Revision, error)
	ListRevisions(ctx context.Context, filter RevisionFilter) ([]entities.Revision, error)
	DeleteRevisions(ctx context.Context, revisionIDs []string) error
	LatestRevisionCreatedAt(ctx context.Context, entryID string) (*time.Time, error)

	// CreateReview fails with ErrAlreadyReviewed when the reviewer already
	// has a review for the revision in that round.
	CreateReview(ctx context.Context, review entities.Review) error
	ListReviews(ctx context.Context, filter ReviewFilter) ([]entities.Review, error)
	// MaxReviewRound returns the highest round among the revision's reviews,
	// restricted to decision when it is non-empty.
	MaxReviewRound(ctx context.Context, revisionID string, decision entities.ReviewDecision) (int, bool, error)

	CreateVariantGroup(ctx context.Context, group entities.VariantGroup) error
	UpdateVariantGroup(ctx context.Context, group entities.VariantGroup) error
	GetVariantGroup(ctx context.Context, groupID string) (entities.VariantGroup, error)

	// AwardContribution inserts the event unless one already exists for
	// (user, kind, entry, type); it returns the stored event and whether it
	// was created by this call.
	AwardContribution(ctx context.Context, event entities.ContributionEvent) (entities.ContributionEvent, bool, error)
	ListContributions(ctx context.Context, filter ContributionFilter) ([]entities.ContributionEvent, error)

	CreateAdminOverride(ctx context.Context, override entities.AdminOverride) error
	ListAdminOverrides(ctx context.Context, entryID string) ([]entities.AdminOverride, error)

	AppendOutbox(ctx context.Context, message OutboxMessage) error
}

// Store is a Repository that can run atomic units of work. Nothing written
// through the callback's repository is visible if the callback fails.
type Store interface {
	Repository
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

// IdentityProvider answers role membership for already-authenticated users.
type IdentityProvider interface {
	IsReviewer(ctx context.Context, userID string) (bool, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type Profile struct {
	UserID       string
	Username     string
	Municipality string
}

type ProfileDirectory interface {
	ListProfiles(ctx context.Context, userIDs []string) (map[string]Profile, error)
}

// MediaResolver turns an opaque media reference into a retrievable URL.
type MediaResolver interface {
	ResolveURL(ref string) string
}

// MediaRemover is told about media detached from deleted entries. It is
// called after commit and its failures never undo governance state.
type MediaRemover interface {
	RemoveMedia(ctx context.Context, refs []string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OutboxMessage is a row ready to relay from the governance outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventEnvelope = events.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// Metrics receives governance counters.
type Metrics interface {
	RecordReview(kind entities.EntryKind, decision entities.ReviewDecision)
	RecordOutcome(kind entities.EntryKind, outcome string)
	RecordPublication(kind entities.EntryKind, mode string)
	RecordRevisionsPruned(kind entities.EntryKind, count int)
	RecordContribution(contributionType entities.ContributionType)
	RecordLifecycleTransition(kind entities.EntryKind, action string)
	RecordLifecycleFailure()
	RecordOutboxPublished(count int)
}

type NopMetrics struct{}

func (NopMetrics) RecordReview(entities.EntryKind, entities.ReviewDecision) {}
func (NopMetrics) RecordOutcome(entities.EntryKind, string) {}
func (NopMetrics) RecordPublication(entities.EntryKind, string) {}
func (NopMetrics) RecordRevisionsPruned(entities.EntryKind, int) {}
func (NopMetrics) RecordContribution(entities.ContributionType) {}
func (NopMetrics) RecordLifecycleTransition(entities.EntryKind, string) {}
func (NopMetrics) RecordLifecycleFailure() {}
func (NopMetrics) RecordOutboxPublished(int) {}
