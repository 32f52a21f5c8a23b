package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "lexicon/contexts/editorial-governance/governance-service/application"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

const defaultOutboxBatchSize = 100

// OutboxRelay forwards governance outbox rows to the event publisher.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Metrics   ports.Metrics
	Clock     ports.Clock
	BatchSize int
	Disabled  bool
	Logger    *slog.Logger
}

// RunOnce relays one batch in creation order. A row is marked only after
// its publish succeeds; the first failure ends the batch and the remaining
// rows stay pending for the next cycle.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	if r.Disabled {
		logger.Debug("governance outbox relay disabled",
			"event", "governance_outbox_relay_disabled",
			"module", application.ModuleName,
			"layer", "worker",
		)
		return 0, nil
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = defaultOutboxBatchSize
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("governance outbox list failed",
			"event", "governance_outbox_list_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	published := 0
	defer func() {
		if published > 0 {
			metrics(r.Metrics).RecordOutboxPublished(published)
		}
	}()
	for _, row := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			logger.Error("governance outbox decode failed",
				"event", "governance_outbox_decode_failed",
				"module", application.ModuleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}
		topic := envelope.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
			logger.Error("governance outbox publish failed",
				"event", "governance_outbox_publish_failed",
				"module", application.ModuleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", topic,
				"error", err.Error(),
			)
			return published, err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, clockNow(r.Clock)); err != nil {
			logger.Error("governance outbox mark failed",
				"event", "governance_outbox_mark_failed",
				"module", application.ModuleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}
		published++
	}

	logger.Info("governance outbox batch relayed",
		"event", "governance_outbox_relayed",
		"module", application.ModuleName,
		"layer", "worker",
		"published_count", published,
	)
	return published, nil
}

func clockNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}

func metrics(m ports.Metrics) ports.Metrics {
	if m == nil {
		return ports.NopMetrics{}
	}
	return m
}
