package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lexicon/contexts/editorial-governance/governance-service/ports"
)

var (
	_ ports.Store            = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.IdentityProvider = (*Directory)(nil)
	_ ports.ProfileDirectory = (*Directory)(nil)
	_ ports.MediaResolver    = (*Media)(nil)
	_ ports.MediaRemover     = (*Media)(nil)
)

type roleSet struct {
	reviewer bool
	admin    bool
}

// Directory is a seeded identity and profile source.
type Directory struct {
	mu       sync.RWMutex
	roles    map[string]roleSet
	profiles map[string]ports.Profile
}

func NewDirectory() *Directory {
	return &Directory{
		roles:    make(map[string]roleSet),
		profiles: make(map[string]ports.Profile),
	}
}

func (d *Directory) SetRoles(userID string, reviewer bool, admin bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roles[strings.TrimSpace(userID)] = roleSet{reviewer: reviewer, admin: admin}
}

func (d *Directory) SetProfile(profile ports.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	profile.UserID = strings.TrimSpace(profile.UserID)
	d.profiles[profile.UserID] = profile
}

func (d *Directory) IsReviewer(_ context.Context, userID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.roles[strings.TrimSpace(userID)].reviewer, nil
}

func (d *Directory) IsAdmin(_ context.Context, userID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.roles[strings.TrimSpace(userID)].admin, nil
}

func (d *Directory) ListProfiles(_ context.Context, userIDs []string) (map[string]ports.Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]ports.Profile, len(userIDs))
	for _, userID := range userIDs {
		if profile, ok := d.profiles[strings.TrimSpace(userID)]; ok {
			out[profile.UserID] = profile
		}
	}
	return out, nil
}

// Media resolves references under a fixed prefix and records removals.
type Media struct {
	Prefix string

	mu      sync.Mutex
	removed []string
}

func (m *Media) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || m.Prefix == "" {
		return ref
	}
	return strings.TrimRight(m.Prefix, "/") + "/" + strings.TrimLeft(ref, "/")
}

func (m *Media) RemoveMedia(_ context.Context, refs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, refs...)
	return nil
}

func (m *Media) Removed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

// Clock is a settable clock for deterministic runs.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now.UTC()
}

func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type IDGenerator struct{}

func (IDGenerator) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}
