package dedup_test

import (
	"context"
	"errors"
	"time"

	"captainhub.app/relay/internal/dedup"
	"captainhub.app/relay/internal/domain"
	"captainhub.app/relay/internal/mapper"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeLookup struct {
	existing map[string]struct{}
	err      error
	calls    int
	lastFPs  []string
}

func (f *fakeLookup) ExistingFingerprints(_ context.Context, fps []string) (map[string]struct{}, error) {
	f.calls++
	f.lastFPs = fps
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]struct{}{}
	for _, fp := range fps {
		if _, ok := f.existing[fp]; ok {
			out[fp] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeLookup) seed(admissions []dedup.Admission) {
	for _, a := range admissions {
		f.existing[a.Event.DedupFingerprint] = struct{}{}
	}
}

type fakeResolver struct {
	owners map[string]int64
	err    error
}

func (f *fakeResolver) WorkspaceIDsByProjectKeys(_ context.Context, keys []string) (map[string]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]int64{}
	for _, k := range keys {
		if id, ok := f.owners[k]; ok {
			out[k] = id
		}
	}
	return out, nil
}

func payload(commentID, body, created string) map[string]any {
	return map[string]any{
		"issue": map[string]any{"id": "1", "key": "A-1", "self": "https://acme.atlassian.net/rest/api/3/issue/1"},
		"comment": map[string]any{
			"id":      commentID,
			"body":    body,
			"created": created,
			"author":  map[string]any{"accountId": "u-1"},
		},
	}
}

var _ = Describe("Gate", func() {
	var (
		ctx      context.Context
		lookup   *fakeLookup
		resolver *fakeResolver
		gate     *dedup.Gate
		m        *mapper.JiraEventMapper
	)

	BeforeEach(func() {
		ctx = context.Background()
		lookup = &fakeLookup{existing: map[string]struct{}{}}
		resolver = &fakeResolver{owners: map[string]int64{"A": 42}}
		gate = dedup.NewGate(lookup, resolver, nil)
		m = mapper.NewJiraEventMapper(mapper.JiraMapperConfig{
			Now: func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
		})
	})

	normalizeAll := func(payloads ...map[string]any) []*domain.UnifiedEvent {
		events := make([]*domain.UnifiedEvent, len(payloads))
		for i, p := range payloads {
			events[i] = m.Normalize(p)
		}
		return events
	}

	It("admits new events with their owning workspace", func() {
		admissions, err := gate.Admit(ctx, normalizeAll(payload("1", "hello", "2024-03-01T10:00:00.000+0000")))
		Expect(err).ToNot(HaveOccurred())
		Expect(admissions).To(HaveLen(1))
		Expect(admissions[0].WorkspaceID).To(Equal(int64Ptr(42)))
	})

	It("looks fingerprints up in a single call", func() {
		_, err := gate.Admit(ctx, normalizeAll(
			payload("1", "one", "2024-03-01T10:00:00.000+0000"),
			payload("2", "two", "2024-03-01T10:00:00.000+0000"),
			payload("3", "three", "2024-03-01T10:00:00.000+0000"),
		))
		Expect(err).ToNot(HaveOccurred())
		Expect(lookup.calls).To(Equal(1))
		Expect(lookup.lastFPs).To(HaveLen(3))
	})

	It("drops events already persisted", func() {
		events := normalizeAll(
			payload("1", "one", "2024-03-01T10:00:00.000+0000"),
			payload("2", "two", "2024-03-01T10:00:00.000+0000"),
		)
		lookup.existing[events[0].DedupFingerprint] = struct{}{}

		admissions, err := gate.Admit(ctx, events)
		Expect(err).ToNot(HaveOccurred())
		Expect(admissions).To(HaveLen(1))
		Expect(admissions[0].Event.EventID).To(HaveSuffix(":comment:2"))
	})

	It("collapses duplicate fingerprints inside one batch, first wins", func() {
		admissions, err := gate.Admit(ctx, normalizeAll(
			payload("1", "same", "2024-03-01T10:00:05.000+0000"),
			payload("2", "SAME", "2024-03-01T10:00:50.000+0000"),
		))
		Expect(err).ToNot(HaveOccurred())
		Expect(admissions).To(HaveLen(1))
		Expect(admissions[0].Event.EventID).To(HaveSuffix(":comment:1"))
	})

	It("skips nil events and short-circuits empty batches", func() {
		admissions, err := gate.Admit(ctx, []*domain.UnifiedEvent{nil, nil})
		Expect(err).ToNot(HaveOccurred())
		Expect(admissions).To(BeEmpty())
		Expect(lookup.calls).To(BeZero())
	})

	It("fails the whole batch closed when the lookup errors", func() {
		lookup.err = errors.New("connection refused")
		admissions, err := gate.Admit(ctx, normalizeAll(payload("1", "x", "2024-03-01T10:00:00.000+0000")))
		Expect(admissions).To(BeNil())
		Expect(err).To(MatchError(dedup.ErrNoveltyUnknown))
		Expect(err).To(MatchError(ContainSubstring("connection refused")))
	})

	It("admits events without an owner when routing fails", func() {
		resolver.err = errors.New("timeout")
		admissions, err := gate.Admit(ctx, normalizeAll(payload("1", "x", "2024-03-01T10:00:00.000+0000")))
		Expect(err).ToNot(HaveOccurred())
		Expect(admissions).To(HaveLen(1))
		Expect(admissions[0].WorkspaceID).To(BeNil())
	})

	It("leaves events of unknown projects unowned", func() {
		p := payload("1", "x", "2024-03-01T10:00:00.000+0000")
		p["issue"].(map[string]any)["key"] = "ZZ-1"
		admissions, err := gate.Admit(ctx, normalizeAll(p))
		Expect(err).ToNot(HaveOccurred())
		Expect(admissions[0].WorkspaceID).To(BeNil())
	})

	Describe("idempotence", func() {
		It("admits the same set twice against the same state, and nothing once seeded", func() {
			payloads := []map[string]any{
				payload("1", "one", "2024-03-01T10:00:00.000+0000"),
				payload("2", "two", "2024-03-01T10:01:00.000+0000"),
				payload("3", "one", "2024-03-01T10:00:30.000+0000"),
			}

			first, err := gate.Admit(ctx, normalizeAll(payloads...))
			Expect(err).ToNot(HaveOccurred())
			second, err := gate.Admit(ctx, normalizeAll(payloads...))
			Expect(err).ToNot(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(first).To(HaveLen(2))

			lookup.seed(first)
			third, err := gate.Admit(ctx, normalizeAll(payloads...))
			Expect(err).ToNot(HaveOccurred())
			Expect(third).To(BeEmpty())
		})
	})
})

func int64Ptr(v int64) *int64 { return &v }
