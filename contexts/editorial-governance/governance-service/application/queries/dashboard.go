package queries

import (
	"context"
	"errors"
	"sort"
	"strings"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/domain/services"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

// FinalOutcomeSuperseded marks a review from a flag round that a later flag
// has replaced.
const FinalOutcomeSuperseded = "superseded_by_new_round"

type DashboardItem struct {
	Revision entities.Revision
	Entry    *entities.Entry
	Round    int
}

type MyReviewItem struct {
	Review       entities.Review
	Revision     entities.Revision
	FinalOutcome string
}

type ReviewerDashboard struct {
	Kind           entities.EntryKind
	UserID         string
	IsAdmin        bool
	Pending        []DashboardItem
	PendingReview  []DashboardItem
	Flaggable      []DashboardItem
	MyReviews      []MyReviewItem
	AwaitingQuorum []DashboardItem
}

type DashboardUseCase struct {
	Repository ports.Repository
	Identity   ports.IdentityProvider
}

func (uc DashboardUseCase) ReviewerDashboard(ctx context.Context, kind entities.EntryKind, userID string) (ReviewerDashboard, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ReviewerDashboard{}, domainerrors.ErrInvalidInput
	}
	if !kind.Valid() {
		return ReviewerDashboard{}, domainerrors.ErrInvalidKind
	}
	isReviewer, isAdmin, err := roles(ctx, uc.Identity, userID)
	if err != nil {
		return ReviewerDashboard{}, err
	}
	if !isReviewer && !isAdmin {
		return ReviewerDashboard{}, domainerrors.ErrRoleRequired
	}

	view := dashboardView{
		repo:     uc.Repository,
		identity: uc.Identity,
		userID:   userID,
		isAdmin:  isAdmin,
		entries:  map[string]*entities.Entry{},
		rounds:   map[string]int{},
	}
	mine, err := uc.Repository.ListReviews(ctx, ports.ReviewFilter{Kind: kind, ReviewerID: userID})
	if err != nil {
		return ReviewerDashboard{}, err
	}
	view.voted = map[voteKey]struct{}{}
	for _, review := range mine {
		view.voted[voteKey{revisionID: review.RevisionID, round: review.Round}] = struct{}{}
	}

	dashboard := ReviewerDashboard{Kind: kind, UserID: userID, IsAdmin: isAdmin}
	if dashboard.Pending, err = view.pending(ctx, kind); err != nil {
		return ReviewerDashboard{}, err
	}
	if dashboard.PendingReview, err = view.pendingReview(ctx, kind); err != nil {
		return ReviewerDashboard{}, err
	}
	if dashboard.Flaggable, err = view.flaggable(ctx, kind); err != nil {
		return ReviewerDashboard{}, err
	}
	if dashboard.MyReviews, dashboard.AwaitingQuorum, err = view.myReviews(ctx, mine); err != nil {
		return ReviewerDashboard{}, err
	}
	return dashboard, nil
}

type voteKey struct {
	revisionID string
	round      int
}

type dashboardView struct {
	repo     ports.Repository
	identity ports.IdentityProvider
	userID   string
	isAdmin  bool
	voted    map[voteKey]struct{}
	entries  map[string]*entities.Entry
	rounds   map[string]int
}

func (v *dashboardView) hasVoted(revisionID string, round int) bool {
	_, ok := v.voted[voteKey{revisionID: revisionID, round: round}]
	return ok
}

func (v *dashboardView) pending(ctx context.Context, kind entities.EntryKind) ([]DashboardItem, error) {
	revisions, err := v.repo.ListRevisions(ctx, ports.RevisionFilter{
		Kind:                 kind,
		Statuses:             []entities.RevisionStatus{entities.RevisionStatusPending},
		ExcludeContributorID: v.userID,
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(revisions, func(i, j int) bool {
		return revisions[i].CreatedAt.Before(revisions[j].CreatedAt)
	})
	items := make([]DashboardItem, 0, len(revisions))
	for _, revision := range revisions {
		if !v.isAdmin && v.hasVoted(revision.RevisionID, entities.InitialRound) {
			continue
		}
		entry, err := v.entry(ctx, revision.EntryID)
		if err != nil {
			return nil, err
		}
		items = append(items, DashboardItem{Revision: revision, Entry: entry, Round: entities.InitialRound})
	}
	return items, nil
}

// pendingReview lists the flagged revision of every entry under re-review
// together with its active round.
func (v *dashboardView) pendingReview(ctx context.Context, kind entities.EntryKind) ([]DashboardItem, error) {
	flagged, err := v.repo.ListEntries(ctx, ports.EntryFilter{
		Kind:     kind,
		Statuses: []entities.EntryStatus{entities.EntryStatusApprovedUnderReview},
	})
	if err != nil {
		return nil, err
	}
	items := make([]DashboardItem, 0, len(flagged))
	for i := range flagged {
		entry := flagged[i]
		revision, ok, err := v.flaggedRevision(ctx, entry.EntryID)
		if err != nil {
			return nil, err
		}
		if !ok || revision.ContributorID == v.userID {
			continue
		}
		round, err := v.round(ctx, revision.RevisionID)
		if err != nil {
			return nil, err
		}
		if !v.isAdmin && v.hasVoted(revision.RevisionID, round) {
			continue
		}
		items = append(items, DashboardItem{Revision: revision, Entry: &entry, Round: round})
	}
	return items, nil
}

func (v *dashboardView) flaggedRevision(ctx context.Context, entryID string) (entities.Revision, bool, error) {
	approved, err := v.repo.ListRevisions(ctx, ports.RevisionFilter{
		EntryID:  entryID,
		Statuses: []entities.RevisionStatus{entities.RevisionStatusApproved},
	})
	if err != nil {
		return entities.Revision{}, false, err
	}
	if len(approved) == 0 {
		return entities.Revision{}, false, nil
	}
	ids := make([]string, 0, len(approved))
	byID := make(map[string]entities.Revision, len(approved))
	for _, revision := range approved {
		ids = append(ids, revision.RevisionID)
		byID[revision.RevisionID] = revision
	}
	flags, err := v.repo.ListReviews(ctx, ports.ReviewFilter{RevisionIDs: ids, Decision: entities.ReviewDecisionFlag})
	if err != nil {
		return entities.Revision{}, false, err
	}
	var latest *entities.Review
	for i := range flags {
		if latest == nil || flags[i].CreatedAt.After(latest.CreatedAt) {
			latest = &flags[i]
		}
	}
	if latest != nil {
		return byID[latest.RevisionID], true, nil
	}
	services.SortRevisionsByRecency(approved)
	return approved[0], true, nil
}

// flaggable lists the latest approved revision of each approved entry.
func (v *dashboardView) flaggable(ctx context.Context, kind entities.EntryKind) ([]DashboardItem, error) {
	published, err := v.repo.ListEntries(ctx, ports.EntryFilter{
		Kind:     kind,
		Statuses: []entities.EntryStatus{entities.EntryStatusApproved},
	})
	if err != nil {
		return nil, err
	}
	items := make([]DashboardItem, 0, len(published))
	for i := range published {
		entry := published[i]
		approved, err := v.repo.ListRevisions(ctx, ports.RevisionFilter{
			EntryID:  entry.EntryID,
			Statuses: []entities.RevisionStatus{entities.RevisionStatusApproved},
		})
		if err != nil {
			return nil, err
		}
		if len(approved) == 0 {
			continue
		}
		services.SortRevisionsByRecency(approved)
		latest := approved[0]
		if latest.ContributorID == v.userID {
			continue
		}
		items = append(items, DashboardItem{Revision: latest, Entry: &entry})
	}
	return items, nil
}

func (v *dashboardView) myReviews(ctx context.Context, mine []entities.Review) ([]MyReviewItem, []DashboardItem, error) {
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	reviewed := make([]MyReviewItem, 0, len(mine))
	awaiting := []DashboardItem{}
	for _, review := range mine {
		revision, err := v.repo.GetRevision(ctx, review.RevisionID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		entry, err := v.entry(ctx, revision.EntryID)
		if err != nil {
			return nil, nil, err
		}
		round, err := v.round(ctx, revision.RevisionID)
		if err != nil {
			return nil, nil, err
		}

		outcome := string(revision.Status)
		switch {
		case review.Round == entities.InitialRound:
		case review.Round < round:
			outcome = FinalOutcomeSuperseded
		case entry != nil:
			outcome = string(entry.Status)
		}
		reviewed = append(reviewed, MyReviewItem{Review: review, Revision: revision, FinalOutcome: outcome})

		if review.Decision != entities.ReviewDecisionApprove {
			continue
		}
		waiting, err := v.awaitingQuorum(ctx, review, revision, entry, round)
		if err != nil {
			return nil, nil, err
		}
		if waiting {
			awaiting = append(awaiting, DashboardItem{Revision: revision, Entry: entry, Round: review.Round})
		}
	}
	return reviewed, awaiting, nil
}

func (v *dashboardView) awaitingQuorum(
	ctx context.Context,
	review entities.Review,
	revision entities.Revision,
	entry *entities.Entry,
	activeRound int,
) (bool, error) {
	if review.Round == entities.InitialRound {
		return revision.Status == entities.RevisionStatusPending, nil
	}
	if review.Round != activeRound || entry == nil || entry.Status != entities.EntryStatusApprovedUnderReview {
		return false, nil
	}
	round := review.Round
	votes, err := v.repo.ListReviews(ctx, ports.ReviewFilter{RevisionIDs: []string{revision.RevisionID}, Round: &round})
	if err != nil {
		return false, err
	}
	approverIDs := make([]string, 0, len(votes))
	for _, vote := range votes {
		switch vote.Decision {
		case entities.ReviewDecisionReject:
			return false, nil
		case entities.ReviewDecisionApprove:
			approverIDs = append(approverIDs, vote.ReviewerID)
		}
	}
	tally, err := services.TallyApprovals(approverIDs, func(userID string) (bool, bool, error) {
		return roles(ctx, v.identity, userID)
	})
	if err != nil {
		return false, err
	}
	return !tally.Met(), nil
}

func (v *dashboardView) entry(ctx context.Context, entryID string) (*entities.Entry, error) {
	if entryID == "" {
		return nil, nil
	}
	if cached, ok := v.entries[entryID]; ok {
		return cached, nil
	}
	entry, err := v.repo.GetEntry(ctx, entryID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		v.entries[entryID] = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.entries[entryID] = &entry
	return &entry, nil
}

func (v *dashboardView) round(ctx context.Context, revisionID string) (int, error) {
	if cached, ok := v.rounds[revisionID]; ok {
		return cached, nil
	}
	round, err := activeRound(ctx, v.repo, revisionID)
	if err != nil {
		return 0, err
	}
	v.rounds[revisionID] = round
	return round, nil
}
