package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

type outboxRecord struct {
	message     ports.OutboxMessage
	publishedAt *time.Time
}

type state struct {
	entries       map[string]entities.Entry
	revisions     map[string]entities.Revision
	reviews       map[string]entities.Review
	groups        map[string]entities.VariantGroup
	contributions map[string]entities.ContributionEvent
	overrides     []entities.AdminOverride
	outbox        []outboxRecord
}

func newState() *state {
	return &state{
		entries:       make(map[string]entities.Entry),
		revisions:     make(map[string]entities.Revision),
		reviews:       make(map[string]entities.Review),
		groups:        make(map[string]entities.VariantGroup),
		contributions: make(map[string]entities.ContributionEvent),
	}
}

func (s *state) clone() *state {
	out := newState()
	for id, entry := range s.entries {
		out.entries[id] = entry.Clone()
	}
	for id, revision := range s.revisions {
		out.revisions[id] = revision.Clone()
	}
	for id, review := range s.reviews {
		out.reviews[id] = review
	}
	for id, group := range s.groups {
		out.groups[id] = group
	}
	for id, event := range s.contributions {
		out.contributions[id] = event
	}
	out.overrides = append([]entities.AdminOverride(nil), s.overrides...)
	out.outbox = append([]outboxRecord(nil), s.outbox...)
	return out
}

// Store keeps governance state in process. Transactions are serialized and
// run against a private copy that replaces the shared state only on success.
type Store struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	working := s.state.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &stateRepo{st: working}); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = working
	s.mu.Unlock()
	return nil
}

func (s *Store) read(fn func(repo *stateRepo) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&stateRepo{st: s.state})
}

func (s *Store) write(ctx context.Context, fn func(repo ports.Repository) error) error {
	return s.WithinTx(ctx, func(_ context.Context, repo ports.Repository) error {
		return fn(repo)
	})
}

func (s *Store) CreateEntry(ctx context.Context, entry entities.Entry) error {
	return s.write(ctx, func(repo ports.Repository) error { return repo.CreateEntry(ctx, entry) })
}

func (s *Store) UpdateEntry(ctx context.Context, entry entities.Entry) error {
	return s.write(ctx, func(repo ports.Repository) error { return repo.UpdateEntry(ctx, entry) })
}

func (s *Store) GetEntry(ctx context.Context, entryID string) (entities.Entry, error) {
	var entry entities.Entry
	err := s.read(func(repo *stateRepo) error {
		var err error
		entry, err = repo.GetEntry(ctx, entryID)
		return err
	})
	return entry, err
}

// LockEntry outside a transaction is a plain read.
func (s *Store) LockEntry(ctx context.Context, entryID string) (entities.Entry, error) {
	return s.GetEntry(ctx, entryID)
}

func (s *Store) ListEntries(ctx context.Context, filter ports.EntryFilter) ([]entities.Entry, error) {
	var entries []entities.Entry
	err := s.read(func(repo *stateRepo) error {
		var err error
		entries, err = repo.ListEntries(ctx, filter)
		return err
	})
	return entries, err
}

func (s *Store) DeleteEntry(ctx context.Context, entryID string) error {
	return s.write(ctx, func(repo ports.Repository) error { return repo.DeleteEntry(ctx, entryID) })
}

func (s *Store) CreateRevision(ctx context.Context, revision entities.Revision) error {
	return s.write(ctx, func(repo ports.Repository) error { return repo.CreateRevision(ctx, revision) })
}

func (s *Store) UpdateRevision(ctx context.Context, revision entities.Revision) error {
	return s.write(ctx, func(repo ports.Repository) error { return repo.UpdateRevision(ctx, revision) })
}

func (s *Store) GetRevision(ctx context.Context, revisionID string) (entities.Revision, error) {
	var revision entities.Revision
	err := s.read(func(repo *stateRepo) error {
		var err error
		revision, err = repo.GetRevision(ctx, revisionID)
		return err
	})
	return revision, err
}

func (s *Store) LockRevision(ctx context.Context, revisionID string) (entities.Revision, error) {
	return s.GetRevision(ctx, revisionID)
}

func (s *Store) ListRevisions(ctx context.Context, filter ports.RevisionFilter) ([]entities.Revision, error) {
	var revisions []entities.Revision
	err := s.read(func(repo *stateRepo) error {
		var err error
		revisions, err = repo.ListRevisions(ctx, filter)
		return err
	})
	return revisions, err
}

func (s *Store) DeleteRevisions(ctx context.Context, revisionIDs []string) error {
	return s.write(ctx, func(repo ports.Repository) error { return repo.DeleteRevisions(ctx, revisionIDs) })
}

func (s *Store) LatestRevisionCreatedAt(ctx context.Context, entryID string) (*time.Time, error) {
	var latest *time.Time
	err := s.read(func(repo *stateRepo) error {
		var err error
		latest, err = repo.LatestRevisionCreatedAt(ctx, entryID)
		return err
	})
	return latest, err
}

func (s *Store) CreateReview(ctx context.Context, review entities.Review) error {
	return s.write(ctx, func(repo ports.Repository) error { return repo.CreateReview(ctx, review) })
}

func (s *Store) ListReviews(ctx context.Context, filter ports.ReviewFilter) ([]entities.Review, error) {
	var reviews []entities.Review
	err := s.read(func(repo *stateRepo) error {
		var err error
		reviews, err = repo.ListReviews(ctx, filter)
		return err
	})
	return reviews, err
}

func (s *Store) MaxReviewRound(ctx context.Context, revisionID string, decision entities.ReviewDecision) (int, bool, error) {
	var (
		round int
		found bool
	)
	err := s.read(func(repo *stateRepo) error {
		var err error
		round, found, err = repo.MaxReviewRound(ctx, revisionID, decision)
		return err
	})
	return round, found, err
}

func (s *Store) CreateVariantGroup(ctx context.Context, group entities.VariantGroup) error {
	return s.write(ctx, func(repo ports.Repository) error { return repo.CreateVariantGroup(ctx, group) })
}

func (s *Store) UpdateVariantGroup(ctx context.Context, group entities.VariantGroup) error {
	return s.write(ctx, func(repo ports.Repository) error { return repo.UpdateVariantGroup(ctx, group) })
}

func (s *Store) GetVariantGroup(ctx context.Context, groupID string) (entities.VariantGroup, error) {
	var group entities.VariantGroup
	err := s.read(func(repo *stateRepo) error {
		var err error
		group, err = repo.GetVariantGroup(ctx, groupID)
		return err
	})
	return group, err
}

func (s *Store) AwardContribution(ctx context.Context, event entities.ContributionEvent) (entities.ContributionEvent, bool, error) {
	var (
		stored  entities.ContributionEvent
		created bool
	)
	err := s.write(ctx, func(repo ports.Repository) error {
		var err error
		stored, created, err = repo.AwardContribution(ctx, event)
		return err
	})
	return stored, created, err
}

func (s *Store) ListContributions(ctx context.Context, filter ports.ContributionFilter) ([]entities.ContributionEvent, error) {
	var events []entities.ContributionEvent
	err := s.read(func(repo *stateRepo) error {
		var err error
		events, err = repo.ListContributions(ctx, filter)
		return err
	})
	return events, err
}

func (s *Store) CreateAdminOverride(ctx context.Context, override entities.AdminOverride) error {
	return s.write(ctx, func(repo ports.Repository) error { return repo.CreateAdminOverride(ctx, override) })
}

func (s *Store) ListAdminOverrides(ctx context.Context, entryID string) ([]entities.AdminOverride, error) {
	var overrides []entities.AdminOverride
	err := s.read(func(repo *stateRepo) error {
		var err error
		overrides, err = repo.ListAdminOverrides(ctx, entryID)
		return err
	})
	return overrides, err
}

func (s *Store) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	return s.write(ctx, func(repo ports.Repository) error { return repo.AppendOutbox(ctx, message) })
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.OutboxMessage, 0)
	for _, record := range s.state.outbox {
		if record.publishedAt != nil {
			continue
		}
		items = append(items, record.message)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	outboxID = strings.TrimSpace(outboxID)
	for i, record := range s.state.outbox {
		if record.message.OutboxID != outboxID {
			continue
		}
		at := publishedAt.UTC()
		s.state.outbox[i].publishedAt = &at
		return nil
	}
	return domainerrors.ErrNotFound
}

// OutboxMessages returns every outbox row in append order, published or not.
func (s *Store) OutboxMessages() []ports.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.OutboxMessage, 0, len(s.state.outbox))
	for _, record := range s.state.outbox {
		items = append(items, record.message)
	}
	return items
}

// stateRepo implements ports.Repository over one state value. It does no
// locking; Store guards access to it.
type stateRepo struct {
	st *state
}

func (r *stateRepo) CreateEntry(_ context.Context, entry entities.Entry) error {
	entry.EntryID = strings.TrimSpace(entry.EntryID)
	if entry.EntryID == "" {
		return domainerrors.ErrInvalidInput
	}
	if _, exists := r.st.entries[entry.EntryID]; exists {
		return domainerrors.ErrRepositoryConflict
	}
	r.st.entries[entry.EntryID] = entry.Clone()
	return nil
}

func (r *stateRepo) UpdateEntry(_ context.Context, entry entities.Entry) error {
	if _, exists := r.st.entries[entry.EntryID]; !exists {
		return domainerrors.ErrEntryNotFound
	}
	r.st.entries[entry.EntryID] = entry.Clone()
	return nil
}

func (r *stateRepo) GetEntry(_ context.Context, entryID string) (entities.Entry, error) {
	entry, ok := r.st.entries[strings.TrimSpace(entryID)]
	if !ok {
		return entities.Entry{}, domainerrors.ErrEntryNotFound
	}
	return entry.Clone(), nil
}

func (r *stateRepo) LockEntry(ctx context.Context, entryID string) (entities.Entry, error) {
	return r.GetEntry(ctx, entryID)
}

func (r *stateRepo) ListEntries(_ context.Context, filter ports.EntryFilter) ([]entities.Entry, error) {
	statuses := toSet(filter.Statuses)
	ids := toSet(filter.EntryIDs)
	items := make([]entities.Entry, 0)
	for _, entry := range r.st.entries {
		if filter.Kind != "" && entry.Kind != filter.Kind {
			continue
		}
		if len(statuses) > 0 && !contains(statuses, entry.Status) {
			continue
		}
		if filter.VariantGroupID != "" && entry.VariantGroupID != filter.VariantGroupID {
			continue
		}
		if len(ids) > 0 && !contains(ids, entry.EntryID) {
			continue
		}
		items = append(items, entry.Clone())
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].EntryID < items[j].EntryID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *stateRepo) DeleteEntry(_ context.Context, entryID string) error {
	entryID = strings.TrimSpace(entryID)
	if _, ok := r.st.entries[entryID]; !ok {
		return domainerrors.ErrEntryNotFound
	}
	delete(r.st.entries, entryID)
	for id, revision := range r.st.revisions {
		if revision.EntryID != entryID {
			continue
		}
		delete(r.st.revisions, id)
		r.deleteReviewsOf(id)
	}
	for id, event := range r.st.contributions {
		if event.EntryID == entryID {
			event.EntryID = ""
			r.st.contributions[id] = event
		}
	}
	return nil
}

func (r *stateRepo) CreateRevision(_ context.Context, revision entities.Revision) error {
	revision.RevisionID = strings.TrimSpace(revision.RevisionID)
	if revision.RevisionID == "" {
		return domainerrors.ErrInvalidInput
	}
	if _, exists := r.st.revisions[revision.RevisionID]; exists {
		return domainerrors.ErrRepositoryConflict
	}
	r.st.revisions[revision.RevisionID] = revision.Clone()
	return nil
}

func (r *stateRepo) UpdateRevision(_ context.Context, revision entities.Revision) error {
	if _, exists := r.st.revisions[revision.RevisionID]; !exists {
		return domainerrors.ErrRevisionNotFound
	}
	r.st.revisions[revision.RevisionID] = revision.Clone()
	return nil
}

func (r *stateRepo) GetRevision(_ context.Context, revisionID string) (entities.Revision, error) {
	revision, ok := r.st.revisions[strings.TrimSpace(revisionID)]
	if !ok {
		return entities.Revision{}, domainerrors.ErrRevisionNotFound
	}
	return revision.Clone(), nil
}

func (r *stateRepo) LockRevision(ctx context.Context, revisionID string) (entities.Revision, error) {
	return r.GetRevision(ctx, revisionID)
}

func (r *stateRepo) ListRevisions(_ context.Context, filter ports.RevisionFilter) ([]entities.Revision, error) {
	statuses := toSet(filter.Statuses)
	items := make([]entities.Revision, 0)
	for _, revision := range r.st.revisions {
		if filter.Kind != "" && revision.Kind != filter.Kind {
			continue
		}
		if filter.EntryID != "" && revision.EntryID != filter.EntryID {
			continue
		}
		if len(statuses) > 0 && !contains(statuses, revision.Status) {
			continue
		}
		if filter.ContributorID != "" && revision.ContributorID != filter.ContributorID {
			continue
		}
		if filter.ExcludeContributorID != "" && revision.ContributorID == filter.ExcludeContributorID {
			continue
		}
		if filter.BaseSnapshot != nil && revision.IsBaseSnapshot != *filter.BaseSnapshot {
			continue
		}
		items = append(items, revision.Clone())
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].RevisionID < items[j].RevisionID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *stateRepo) DeleteRevisions(_ context.Context, revisionIDs []string) error {
	for _, id := range revisionIDs {
		id = strings.TrimSpace(id)
		delete(r.st.revisions, id)
		r.deleteReviewsOf(id)
	}
	return nil
}

func (r *stateRepo) LatestRevisionCreatedAt(_ context.Context, entryID string) (*time.Time, error) {
	var latest *time.Time
	for _, revision := range r.st.revisions {
		if revision.EntryID != entryID {
			continue
		}
		if latest == nil || revision.CreatedAt.After(*latest) {
			createdAt := revision.CreatedAt
			latest = &createdAt
		}
	}
	return latest, nil
}

func (r *stateRepo) CreateReview(_ context.Context, review entities.Review) error {
	for _, existing := range r.st.reviews {
		if existing.RevisionID == review.RevisionID &&
			existing.ReviewerID == review.ReviewerID &&
			existing.Round == review.Round {
			return domainerrors.ErrAlreadyReviewed
		}
	}
	r.st.reviews[review.ReviewID] = review
	return nil
}

func (r *stateRepo) ListReviews(_ context.Context, filter ports.ReviewFilter) ([]entities.Review, error) {
	revisionIDs := toSet(filter.RevisionIDs)
	items := make([]entities.Review, 0)
	for _, review := range r.st.reviews {
		if filter.Kind != "" && review.Kind != filter.Kind {
			continue
		}
		if len(revisionIDs) > 0 && !contains(revisionIDs, review.RevisionID) {
			continue
		}
		if filter.ReviewerID != "" && review.ReviewerID != filter.ReviewerID {
			continue
		}
		if filter.Round != nil && review.Round != *filter.Round {
			continue
		}
		if filter.Decision != "" && review.Decision != filter.Decision {
			continue
		}
		items = append(items, review)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ReviewID < items[j].ReviewID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *stateRepo) MaxReviewRound(_ context.Context, revisionID string, decision entities.ReviewDecision) (int, bool, error) {
	highest, found := 0, false
	for _, review := range r.st.reviews {
		if review.RevisionID != revisionID {
			continue
		}
		if decision != "" && review.Decision != decision {
			continue
		}
		if !found || review.Round > highest {
			highest, found = review.Round, true
		}
	}
	return highest, found, nil
}

func (r *stateRepo) CreateVariantGroup(_ context.Context, group entities.VariantGroup) error {
	if _, exists := r.st.groups[group.GroupID]; exists {
		return domainerrors.ErrRepositoryConflict
	}
	r.st.groups[group.GroupID] = group
	return nil
}

func (r *stateRepo) UpdateVariantGroup(_ context.Context, group entities.VariantGroup) error {
	if _, exists := r.st.groups[group.GroupID]; !exists {
		return domainerrors.ErrVariantGroupNotFound
	}
	r.st.groups[group.GroupID] = group
	return nil
}

func (r *stateRepo) GetVariantGroup(_ context.Context, groupID string) (entities.VariantGroup, error) {
	group, ok := r.st.groups[strings.TrimSpace(groupID)]
	if !ok {
		return entities.VariantGroup{}, domainerrors.ErrVariantGroupNotFound
	}
	return group, nil
}

func (r *stateRepo) AwardContribution(_ context.Context, event entities.ContributionEvent) (entities.ContributionEvent, bool, error) {
	for _, existing := range r.st.contributions {
		if existing.UserID == event.UserID &&
			existing.EntryKind == event.EntryKind &&
			existing.EntryID == event.EntryID &&
			existing.Type == event.Type {
			return existing, false, nil
		}
	}
	r.st.contributions[event.EventID] = event
	return event, true, nil
}

func (r *stateRepo) ListContributions(_ context.Context, filter ports.ContributionFilter) ([]entities.ContributionEvent, error) {
	items := make([]entities.ContributionEvent, 0)
	for _, event := range r.st.contributions {
		if filter.UserID != "" && event.UserID != filter.UserID {
			continue
		}
		if filter.EntryKind != "" && event.EntryKind != filter.EntryKind {
			continue
		}
		if filter.EntryID != "" && event.EntryID != filter.EntryID {
			continue
		}
		items = append(items, event)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AwardedAt.Equal(items[j].AwardedAt) {
			return items[i].EventID < items[j].EventID
		}
		return items[i].AwardedAt.Before(items[j].AwardedAt)
	})
	return items, nil
}

func (r *stateRepo) CreateAdminOverride(_ context.Context, override entities.AdminOverride) error {
	r.st.overrides = append(r.st.overrides, override)
	return nil
}

func (r *stateRepo) ListAdminOverrides(_ context.Context, entryID string) ([]entities.AdminOverride, error) {
	items := make([]entities.AdminOverride, 0)
	for _, override := range r.st.overrides {
		if entryID == "" || override.EntryID == entryID {
			items = append(items, override)
		}
	}
	return items, nil
}

func (r *stateRepo) AppendOutbox(_ context.Context, message ports.OutboxMessage) error {
	for _, record := range r.st.outbox {
		if record.message.OutboxID == message.OutboxID {
			return domainerrors.ErrRepositoryConflict
		}
	}
	message.Payload = append([]byte(nil), message.Payload...)
	r.st.outbox = append(r.st.outbox, outboxRecord{message: message})
	return nil
}

func (r *stateRepo) deleteReviewsOf(revisionID string) {
	for id, review := range r.st.reviews {
		if review.RevisionID == revisionID {
			delete(r.st.reviews, id)
		}
	}
}

func toSet[T comparable](values []T) map[T]struct{} {
	set := make(map[T]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

func contains[T comparable](set map[T]struct{}, value T) bool {
	_, ok := set[value]
	return ok
}
