// Package dedup decides which normalized events in a webhook batch are new.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"captainhub.app/relay/internal/domain"
)

// ErrNoveltyUnknown means the fingerprint lookup failed. The whole batch is
// rejected rather than risking duplicate persistence.
var ErrNoveltyUnknown = errors.New("cannot determine event novelty")

// FingerprintLookup reports which of the given fingerprints are already persisted.
type FingerprintLookup interface {
	ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]struct{}, error)
}

// WorkspaceResolver maps tracker project keys to owning workspaces.
type WorkspaceResolver interface {
	WorkspaceIDsByProjectKeys(ctx context.Context, keys []string) (map[string]int64, error)
}

// Admission is an event cleared for persistence. WorkspaceID is nil when
// no workspace owns the event's project.
type Admission struct {
	Event       *domain.UnifiedEvent
	WorkspaceID *int64
}

type Gate struct {
	lookup   FingerprintLookup
	resolver WorkspaceResolver
	logger   *slog.Logger
}

func NewGate(lookup FingerprintLookup, resolver WorkspaceResolver, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{lookup: lookup, resolver: resolver, logger: logger}
}

// Admit filters a batch down to events whose fingerprint is neither
// persisted nor repeated earlier in the batch, and attaches their owner.
// Nil events are skipped. Fingerprints are looked up in one round trip.
func (g *Gate) Admit(ctx context.Context, events []*domain.UnifiedEvent) ([]Admission, error) {
	candidates := make([]*domain.UnifiedEvent, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if _, dup := seen[ev.DedupFingerprint]; dup {
			continue
		}
		seen[ev.DedupFingerprint] = struct{}{}
		candidates = append(candidates, ev)
	}
	if len(candidates) == 0 {
		return []Admission{}, nil
	}

	fingerprints := make([]string, len(candidates))
	for i, ev := range candidates {
		fingerprints[i] = ev.DedupFingerprint
	}

	existing, err := g.lookup.ExistingFingerprints(ctx, fingerprints)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoveltyUnknown, err)
	}

	fresh := candidates[:0:0]
	for _, ev := range candidates {
		if _, ok := existing[ev.DedupFingerprint]; !ok {
			fresh = append(fresh, ev)
		}
	}

	owners := g.resolveOwners(ctx, fresh)

	admissions := make([]Admission, len(fresh))
	for i, ev := range fresh {
		admissions[i] = Admission{Event: ev}
		if wsID, ok := owners[ev.ProjectKey]; ok {
			admissions[i].WorkspaceID = &wsID
		}
	}
	return admissions, nil
}

// resolveOwners never fails the batch: an unresolvable owner only leaves
// the events unowned.
func (g *Gate) resolveOwners(ctx context.Context, events []*domain.UnifiedEvent) map[string]int64 {
	if g.resolver == nil {
		return nil
	}
	keys := make([]string, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if ev.ProjectKey == "" {
			continue
		}
		if _, dup := seen[ev.ProjectKey]; dup {
			continue
		}
		seen[ev.ProjectKey] = struct{}{}
		keys = append(keys, ev.ProjectKey)
	}
	if len(keys) == 0 {
		return nil
	}

	owners, err := g.resolver.WorkspaceIDsByProjectKeys(ctx, keys)
	if err != nil {
		g.logger.WarnContext(ctx, "workspace lookup failed, admitting events without owner",
			"error", err, "project_keys", keys)
		return nil
	}
	return owners
}
