package commands_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/contexts/editorial-governance/governance-service/application/commands"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

type raceOutcome struct {
	outcome commands.ReviewOutcome
	err     error
}

// raceApprovals submits one approval per reviewer at the same time.
func (f *fixture) raceApprovals(revisionID string, reviewers ...string) []raceOutcome {
	f.t.Helper()
	start := make(chan struct{})
	results := make([]raceOutcome, len(reviewers))
	var wg sync.WaitGroup
	for i, reviewer := range reviewers {
		wg.Add(1)
		go func(i int, reviewer string) {
			defer wg.Done()
			<-start
			result, err := f.module.Reviews.SubmitReview(f.ctx, commands.SubmitReviewCommand{
				RevisionID: revisionID,
				ReviewerID: reviewer,
				Decision:   entities.ReviewDecisionApprove,
			})
			results[i] = raceOutcome{outcome: result.Outcome, err: err}
		}(i, reviewer)
	}
	close(start)
	wg.Wait()
	return results
}

func TestConcurrentApprovalsPublishOnce(t *testing.T) {
	for i := 0; i < 25; i++ {
		f := newFixture(t)
		revision := f.submitted(entities.EntryKindDictionary, author, "", "", map[string]any{
			"term": fmt.Sprintf("vahay-%d", i),
		})

		results := f.raceApprovals(revision.RevisionID, reviewerA, reviewerB)

		var published, waiting int
		for _, r := range results {
			require.NoError(t, r.err)
			switch r.outcome {
			case commands.ReviewOutcomePublished:
				published++
			case commands.ReviewOutcomeAwaitingQuorum:
				waiting++
			}
		}
		assert.Equal(t, 1, published)
		assert.Equal(t, 1, waiting)

		entries, err := f.module.Store.ListEntries(f.ctx, ports.EntryFilter{})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Len(t, f.contributions(author), 1)
	}
}

func TestReviewerRacingThemselfVotesOnce(t *testing.T) {
	for i := 0; i < 25; i++ {
		f := newFixture(t)
		revision := f.submitted(entities.EntryKindDictionary, author, "", "", map[string]any{
			"term": fmt.Sprintf("rayon-%d", i),
		})

		results := f.raceApprovals(revision.RevisionID, reviewerA, reviewerA, reviewerB)

		var published, failed int
		for _, r := range results {
			if r.err != nil {
				failed++
				assert.True(t,
					errors.Is(r.err, domainerrors.ErrAlreadyReviewed) || errors.Is(r.err, domainerrors.ErrNotReviewable),
					"unexpected error: %v", r.err)
				continue
			}
			if r.outcome == commands.ReviewOutcomePublished {
				published++
			}
		}
		assert.Equal(t, 1, published)
		assert.Equal(t, 1, failed)

		reviews, err := f.module.Store.ListReviews(f.ctx, ports.ReviewFilter{
			RevisionIDs: []string{revision.RevisionID},
			ReviewerID:  reviewerA,
		})
		require.NoError(t, err)
		assert.Len(t, reviews, 1)
		assert.Len(t, f.contributions(author), 1)
	}
}
