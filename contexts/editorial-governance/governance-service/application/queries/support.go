package queries

import (
	"context"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

func roles(ctx context.Context, identity ports.IdentityProvider, userID string) (bool, bool, error) {
	if identity == nil {
		return false, false, nil
	}
	isAdmin, err := identity.IsAdmin(ctx, userID)
	if err != nil {
		return false, false, err
	}
	isReviewer, err := identity.IsReviewer(ctx, userID)
	if err != nil {
		return false, false, err
	}
	return isReviewer, isAdmin, nil
}

// activeRound is the round of the latest flag review, falling back to 1.
func activeRound(ctx context.Context, repo ports.Repository, revisionID string) (int, error) {
	round, found, err := repo.MaxReviewRound(ctx, revisionID, entities.ReviewDecisionFlag)
	if err != nil {
		return 0, err
	}
	if !found || round < 1 {
		return 1, nil
	}
	return round, nil
}
