package commands

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

const sourceService = "governance-service"

const (
	EventReviewRecorded      = "governance.review.recorded"
	EventEntryPublished      = "governance.entry.published"
	EventEntryFlagged        = "governance.entry.flagged"
	EventEntryRestored       = "governance.entry.restored"
	EventEntryRejected       = "governance.entry.rejected"
	EventRevisionRejected    = "governance.revision.rejected"
	EventEntryOverridden     = "governance.entry.overridden"
	EventEntryArchived       = "governance.entry.archived"
	EventEntryDeleted        = "governance.entry.deleted"
	EventContributionAwarded = "governance.contribution.awarded"
)

func now(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}

func newID(ctx context.Context, gen ports.IDGenerator) (string, error) {
	if gen == nil {
		return "", domainerrors.ErrInvalidInput
	}
	id, err := gen.NewID(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(id), nil
}

func resolveMetrics(metrics ports.Metrics) ports.Metrics {
	if metrics == nil {
		return ports.NopMetrics{}
	}
	return metrics
}

// appendEvent writes an outbox row inside the caller's transaction.
func appendEvent(
	ctx context.Context,
	repo ports.Repository,
	gen ports.IDGenerator,
	occurredAt time.Time,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	data any,
) error {
	eventID, err := newID(ctx, gen)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	envelope := ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    sourceService,
		SchemaVersion:    1,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             raw,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return repo.AppendOutbox(ctx, ports.OutboxMessage{
		OutboxID:     eventID,
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      payload,
		CreatedAt:    occurredAt.UTC(),
	})
}
