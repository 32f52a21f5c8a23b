package governanceservice

import (
	"log/slog"

	"lexicon/contexts/editorial-governance/governance-service/adapters/memory"
	"lexicon/contexts/editorial-governance/governance-service/application/commands"
	"lexicon/contexts/editorial-governance/governance-service/application/queries"
	"lexicon/contexts/editorial-governance/governance-service/application/workers"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

// Module groups the use cases and workers exposed to callers.
type Module struct {
	Drafts        commands.DraftUseCase
	Reviews       commands.ReviewUseCase
	Overrides     commands.AdminOverrideUseCase
	History       queries.HistoryUseCase
	Dashboard     queries.DashboardUseCase
	Contributions queries.ContributionsUseCase
	Sweeper       workers.LifecycleSweeper
	Relay         workers.OutboxRelay

	Store     *memory.Store
	Directory *memory.Directory
	Media     *memory.Media
	Clock     *memory.Clock
}

type Dependencies struct {
	Store        ports.Store
	Outbox       ports.OutboxRepository
	Identity     ports.IdentityProvider
	Profiles     ports.ProfileDirectory
	MediaURLs    ports.MediaResolver
	MediaRemover ports.MediaRemover
	Publisher    ports.EventPublisher
	Metrics      ports.Metrics
	Clock        ports.Clock
	IDGen        ports.IDGenerator

	SweepConcurrency int
	OutboxBatchSize  int
	DisableLifecycle bool
	DisableOutbox    bool
	Logger           *slog.Logger
}

func NewModule(deps Dependencies) Module {
	variants := commands.VariantGovernance{Clock: deps.Clock, IDGen: deps.IDGen, Logger: deps.Logger}
	revisions := commands.RevisionStore{Clock: deps.Clock, IDGen: deps.IDGen, Logger: deps.Logger}

	reviews := commands.ReviewUseCase{
		Store: deps.Store,
		Ledger: commands.ReviewLedger{
			Identity: deps.Identity,
			Clock:    deps.Clock,
			IDGen:    deps.IDGen,
			Logger:   deps.Logger,
		},
		Revisions: revisions,
		Publisher: commands.PublicationService{
			Variants: variants,
			Clock:    deps.Clock,
			IDGen:    deps.IDGen,
			Logger:   deps.Logger,
		},
		Contributions: commands.ContributionLedger{Clock: deps.Clock, IDGen: deps.IDGen, Logger: deps.Logger},
		Metrics:       deps.Metrics,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Logger:        deps.Logger,
	}

	return Module{
		Drafts: commands.DraftUseCase{
			Store:     deps.Store,
			Revisions: revisions,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		Reviews: reviews,
		Overrides: commands.AdminOverrideUseCase{
			Store:    deps.Store,
			Identity: deps.Identity,
			Variants: variants,
			Metrics:  deps.Metrics,
			Clock:    deps.Clock,
			IDGen:    deps.IDGen,
			Logger:   deps.Logger,
		},
		History: queries.HistoryUseCase{
			Repository: deps.Store,
			Media:      deps.MediaURLs,
		},
		Dashboard: queries.DashboardUseCase{
			Repository: deps.Store,
			Identity:   deps.Identity,
		},
		Contributions: queries.ContributionsUseCase{
			Repository: deps.Store,
			Profiles:   deps.Profiles,
		},
		Sweeper: workers.LifecycleSweeper{
			Store: deps.Store,
			Transitions: commands.LifecycleTransitions{
				Variants: variants,
				Clock:    deps.Clock,
				IDGen:    deps.IDGen,
				Logger:   deps.Logger,
			},
			Media:       deps.MediaRemover,
			Metrics:     deps.Metrics,
			Concurrency: deps.SweepConcurrency,
			Disabled:    deps.DisableLifecycle,
			Logger:      deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Metrics:   deps.Metrics,
			Clock:     deps.Clock,
			BatchSize: deps.OutboxBatchSize,
			Disabled:  deps.DisableOutbox,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module on the in-process store with seeded
// identity and a settable clock.
func NewInMemoryModule(clock *memory.Clock, publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	directory := memory.NewDirectory()
	media := &memory.Media{Prefix: "/media"}
	module := NewModule(Dependencies{
		Store:        store,
		Outbox:       store,
		Identity:     directory,
		Profiles:     directory,
		MediaURLs:    media,
		MediaRemover: media,
		Publisher:    publisher,
		Clock:        clock,
		IDGen:        memory.IDGenerator{},
		Logger:       logger,
	})
	module.Store = store
	module.Directory = directory
	module.Media = media
	module.Clock = clock
	return module
}
