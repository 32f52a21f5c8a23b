package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	application "lexicon/contexts/editorial-governance/governance-service/application"
	"lexicon/contexts/editorial-governance/governance-service/application/commands"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

const defaultSweepConcurrency = 4

const (
	lifecycleActionArchive = "archive"
	lifecycleActionDelete  = "delete"
)

type SweepReport struct {
	DictionaryArchived int
	DictionaryDeleted  int
	FolkloreArchived   int
	FolkloreDeleted    int
	Failed             int
}

// LifecycleSweeper archives stale rejected entries and deletes expired
// archived ones. Each entry is handled in its own transaction, which
// re-checks status and age under the entry lock.
type LifecycleSweeper struct {
	Store       ports.Store
	Transitions commands.LifecycleTransitions
	Media       ports.MediaRemover
	Metrics     ports.Metrics
	Concurrency int
	Disabled    bool
	Logger      *slog.Logger
}

type sweepTask struct {
	entry  entities.Entry
	action string
}

// RunOnce sweeps every candidate. Per-entry failures are counted and
// logged without stopping the batch; the first one is returned at the end.
func (s LifecycleSweeper) RunOnce(ctx context.Context) (SweepReport, error) {
	logger := application.ResolveLogger(s.Logger)
	if s.Disabled {
		logger.Debug("governance lifecycle sweep disabled",
			"event", "governance_sweep_disabled",
			"module", application.ModuleName,
			"layer", "worker",
		)
		return SweepReport{}, nil
	}

	tasks, err := s.candidates(ctx)
	if err != nil {
		logger.Error("governance sweep candidate listing failed",
			"event", "governance_sweep_list_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"error", err.Error(),
		)
		return SweepReport{}, err
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = defaultSweepConcurrency
	}
	var (
		mu       sync.Mutex
		report   SweepReport
		firstErr error
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for _, task := range tasks {
		group.Go(func() error {
			acted, err := s.sweepEntry(groupCtx, task)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				if firstErr == nil {
					firstErr = err
				}
				metrics(s.Metrics).RecordLifecycleFailure()
				logger.Warn("governance sweep entry failed",
					"event", "governance_sweep_entry_failed",
					"module", application.ModuleName,
					"layer", "worker",
					"entry_id", task.entry.EntryID,
					"kind", string(task.entry.Kind),
					"action", task.action,
					"error", err.Error(),
				)
				return nil
			}
			if acted {
				report.count(task.entry.Kind, task.action)
				metrics(s.Metrics).RecordLifecycleTransition(task.entry.Kind, task.action)
			}
			return nil
		})
	}
	_ = group.Wait()

	logger.Info("governance lifecycle sweep completed",
		"event", "governance_sweep_completed",
		"module", application.ModuleName,
		"layer", "worker",
		"candidates", len(tasks),
		"dictionary_archived", report.DictionaryArchived,
		"dictionary_deleted", report.DictionaryDeleted,
		"folklore_archived", report.FolkloreArchived,
		"folklore_deleted", report.FolkloreDeleted,
		"failed", report.Failed,
	)
	return report, firstErr
}

func (s LifecycleSweeper) candidates(ctx context.Context) ([]sweepTask, error) {
	rejected, err := s.Store.ListEntries(ctx, ports.EntryFilter{
		Statuses: []entities.EntryStatus{entities.EntryStatusRejected},
	})
	if err != nil {
		return nil, err
	}
	archived, err := s.Store.ListEntries(ctx, ports.EntryFilter{
		Statuses: []entities.EntryStatus{entities.EntryStatusArchived},
	})
	if err != nil {
		return nil, err
	}
	tasks := make([]sweepTask, 0, len(rejected)+len(archived))
	for _, entry := range rejected {
		tasks = append(tasks, sweepTask{entry: entry, action: lifecycleActionArchive})
	}
	for _, entry := range archived {
		tasks = append(tasks, sweepTask{entry: entry, action: lifecycleActionDelete})
	}
	return tasks, nil
}

func (s LifecycleSweeper) sweepEntry(ctx context.Context, task sweepTask) (bool, error) {
	var (
		acted   bool
		removed commands.DeletedEntry
	)
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		var err error
		switch task.action {
		case lifecycleActionArchive:
			_, acted, err = s.Transitions.ArchiveIfStale(ctx, repo, task.entry.EntryID)
		case lifecycleActionDelete:
			removed, acted, err = s.Transitions.DeleteIfExpired(ctx, repo, task.entry.EntryID)
		}
		return err
	})
	if errors.Is(err, domainerrors.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if acted && task.action == lifecycleActionDelete {
		s.removeMedia(ctx, removed)
	}
	return acted, nil
}

func (s LifecycleSweeper) removeMedia(ctx context.Context, deleted commands.DeletedEntry) {
	if s.Media == nil || len(deleted.MediaRefs) == 0 {
		return
	}
	if err := s.Media.RemoveMedia(ctx, deleted.MediaRefs); err != nil {
		application.ResolveLogger(s.Logger).Warn("governance media removal failed",
			"event", "governance_media_remove_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"entry_id", deleted.EntryID,
			"media_count", len(deleted.MediaRefs),
			"error", err.Error(),
		)
	}
}

func (r *SweepReport) count(kind entities.EntryKind, action string) {
	switch {
	case kind == entities.EntryKindDictionary && action == lifecycleActionArchive:
		r.DictionaryArchived++
	case kind == entities.EntryKindDictionary && action == lifecycleActionDelete:
		r.DictionaryDeleted++
	case kind == entities.EntryKindFolklore && action == lifecycleActionArchive:
		r.FolkloreArchived++
	case kind == entities.EntryKindFolklore && action == lifecycleActionDelete:
		r.FolkloreDeleted++
	}
}
