package queries

import (
	"context"
	"sort"
	"strings"
	"time"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

const DefaultLeaderboardLimit = 50

type LeaderboardQuery struct {
	Municipality string
	Limit        int
}

type ContributionsUseCase struct {
	Repository ports.Repository
	Profiles   ports.ProfileDirectory
}

func (uc ContributionsUseCase) Summary(ctx context.Context, userID string) (entities.ContributionSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.ContributionSummary{}, domainerrors.ErrInvalidInput
	}
	events, err := uc.Repository.ListContributions(ctx, ports.ContributionFilter{UserID: userID})
	if err != nil {
		return entities.ContributionSummary{}, err
	}
	summaries := summarize(events)
	if summary, ok := summaries[userID]; ok {
		return summary, nil
	}
	return entities.ContributionSummary{UserID: userID}, nil
}

// Leaderboard ranks users with at least one contribution by total, then
// most recent contribution, then username.
func (uc ContributionsUseCase) Leaderboard(ctx context.Context, query LeaderboardQuery) ([]entities.LeaderboardRow, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	events, err := uc.Repository.ListContributions(ctx, ports.ContributionFilter{})
	if err != nil {
		return nil, err
	}
	summaries := summarize(events)
	userIDs := make([]string, 0, len(summaries))
	for userID := range summaries {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	profiles := map[string]ports.Profile{}
	if uc.Profiles != nil && len(userIDs) > 0 {
		profiles, err = uc.Profiles.ListProfiles(ctx, userIDs)
		if err != nil {
			return nil, err
		}
	}

	municipality := normalizeMunicipality(query.Municipality)
	rows := make([]entities.LeaderboardRow, 0, len(userIDs))
	for _, userID := range userIDs {
		summary := summaries[userID]
		if summary.Total <= 0 {
			continue
		}
		profile := profiles[userID]
		if municipality != "" && normalizeMunicipality(profile.Municipality) != municipality {
			continue
		}
		username := strings.TrimSpace(profile.Username)
		if username == "" {
			username = userID
		}
		rows = append(rows, entities.LeaderboardRow{
			UserID:              userID,
			Username:            username,
			Municipality:        strings.TrimSpace(profile.Municipality),
			ContributionSummary: summary,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		left, right := lastAt(rows[i].LastContributionAt), lastAt(rows[j].LastContributionAt)
		if !left.Equal(right) {
			return left.After(right)
		}
		return rows[i].Username < rows[j].Username
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func summarize(events []entities.ContributionEvent) map[string]entities.ContributionSummary {
	out := make(map[string]entities.ContributionSummary)
	for _, event := range events {
		summary := out[event.UserID]
		summary.UserID = event.UserID
		switch event.Type {
		case entities.ContributionTypeDictionaryTerm:
			summary.DictionaryTerms++
		case entities.ContributionTypeFolkloreEntry:
			summary.FolkloreEntries++
		case entities.ContributionTypeRevision:
			summary.Revisions++
		default:
			continue
		}
		summary.Total++
		if summary.LastContributionAt == nil || event.AwardedAt.After(*summary.LastContributionAt) {
			awardedAt := event.AwardedAt
			summary.LastContributionAt = &awardedAt
		}
		out[event.UserID] = summary
	}
	return out
}

func normalizeMunicipality(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func lastAt(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}
