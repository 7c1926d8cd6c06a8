package plan_test

import (
	"captainhub.app/relay/internal/domain"
	"captainhub.app/relay/internal/mapper"
	"captainhub.app/relay/internal/plan"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func liveIssue(key, summary, status string) domain.Issue {
	return *mapper.NormalizeIssue(map[string]any{
		"id":  "id-" + key,
		"key": key,
		"fields": map[string]any{
			"summary":  summary,
			"status":   map[string]any{"id": "1", "name": status},
			"priority": "Medium",
		},
	})
}

func draft(change domain.ChangeKind, key string, fields map[string]any) domain.Issue {
	return *mapper.NormalizeIssue(map[string]any{"key": key, "change": string(change), "fields": fields})
}

func keysOf(merged []domain.MergedIssue) []string {
	keys := make([]string, len(merged))
	for i, m := range merged {
		keys[i] = m.Key
	}
	return keys
}

var _ = Describe("Merge", func() {
	var live []domain.Issue

	BeforeEach(func() {
		live = []domain.Issue{
			liveIssue("A-1", "Old", "To Do"),
			liveIssue("A-2", "Second", "Done"),
		}
	})

	It("returns live issues untouched when there are no drafts", func() {
		merged := plan.Merge(live, nil)
		Expect(keysOf(merged)).To(Equal([]string{"A-1", "A-2"}))
		Expect(merged[0].Change).To(Equal(domain.ChangeNone))
		Expect(merged[0].Original).To(BeNil())
	})

	It("seeds live issues as unchanged whatever change they carry", func() {
		relisted := *mapper.NormalizeIssue(map[string]any{
			"id":     "id-A-3",
			"key":    "A-3",
			"change": "update",
			"fields": map[string]any{"summary": "Re-posted"},
		})
		Expect(relisted.Change).To(Equal(domain.ChangeUpdate))

		merged := plan.Merge([]domain.Issue{relisted}, nil)

		Expect(merged).To(HaveLen(1))
		Expect(merged[0].Change).To(Equal(domain.ChangeNone))
		Expect(merged[0].Original).To(BeNil())
		Expect(plan.Summarize(merged)).To(Equal(plan.Summary{Unchanged: 1}))
	})

	It("records the original for a live issue built without a change kind", func() {
		old := "Old"
		bare := domain.Issue{Key: "A-9", Fields: domain.Fields{Summary: &old}}

		merged := plan.Merge([]domain.Issue{bare}, []domain.Issue{
			draft(domain.ChangeUpdate, "A-9", map[string]any{"summary": "New"}),
		})

		Expect(merged).To(HaveLen(1))
		Expect(merged[0].Change).To(Equal(domain.ChangeUpdate))
		Expect(*merged[0].Fields.Summary).To(Equal("New"))
		Expect(merged[0].Original).NotTo(BeNil())
		Expect(*merged[0].Original.Summary).To(Equal("Old"))
	})

	It("overlays non-null update fields and records the original", func() {
		merged := plan.Merge(live, []domain.Issue{
			draft(domain.ChangeUpdate, "A-1", map[string]any{"summary": "New", "status": nil}),
		})

		Expect(merged).To(HaveLen(2))
		updated := merged[0]
		Expect(updated.Key).To(Equal("A-1"))
		Expect(updated.ID).To(Equal("id-A-1"))
		Expect(updated.Change).To(Equal(domain.ChangeUpdate))
		Expect(*updated.Fields.Summary).To(Equal("New"))
		Expect(*updated.Fields.Status.Name).To(Equal("To Do"))
		Expect(*updated.Fields.Priority.Name).To(Equal("Medium"))
		Expect(updated.Original).ToNot(BeNil())
		Expect(*updated.Original.Summary).To(Equal("Old"))
	})

	It("keeps the first original across repeated updates", func() {
		merged := plan.Merge(live, []domain.Issue{
			draft(domain.ChangeUpdate, "A-1", map[string]any{"summary": "Mid"}),
			draft(domain.ChangeUpdate, "A-1", map[string]any{"summary": "Final", "priority": "High"}),
		})
		Expect(*merged[0].Fields.Summary).To(Equal("Final"))
		Expect(*merged[0].Fields.Priority.Name).To(Equal("High"))
		Expect(*merged[0].Original.Summary).To(Equal("Old"))
	})

	It("lets a delete win over an update regardless of draft order", func() {
		for _, drafts := range [][]domain.Issue{
			{draft(domain.ChangeUpdate, "A-1", map[string]any{"summary": "New"}), draft(domain.ChangeDelete, "A-1", nil)},
			{draft(domain.ChangeDelete, "A-1", nil), draft(domain.ChangeUpdate, "A-1", map[string]any{"summary": "New"})},
		} {
			merged := plan.Merge(live, drafts)
			Expect(merged[0].Change).To(Equal(domain.ChangeDelete))
			Expect(*merged[0].Fields.Summary).To(Equal("Old"))
			Expect(merged[0].Original).To(BeNil())
		}
	})

	It("keeps a delete for an unknown key as a standalone entry", func() {
		merged := plan.Merge(live, []domain.Issue{draft(domain.ChangeDelete, "B-9", map[string]any{"summary": "Gone"})})
		Expect(keysOf(merged)).To(Equal([]string{"A-1", "A-2", "B-9"}))
		Expect(merged[2].Change).To(Equal(domain.ChangeDelete))
		Expect(*merged[2].Fields.Summary).To(Equal("Gone"))
	})

	It("appends standalone updates without an original", func() {
		merged := plan.Merge(live, []domain.Issue{draft(domain.ChangeUpdate, "B-1", map[string]any{"summary": "Orphan"})})
		Expect(merged[2].Change).To(Equal(domain.ChangeUpdate))
		Expect(merged[2].Original).To(BeNil())
	})

	It("appends creates and lets them overwrite existing keys in place", func() {
		merged := plan.Merge(live, []domain.Issue{
			draft(domain.ChangeCreate, "A-9", map[string]any{"summary": "Brand new", "status": "To Do"}),
			draft(domain.ChangeDelete, "A-2", nil),
			draft(domain.ChangeCreate, "A-2", map[string]any{"summary": "Recreated"}),
		})
		Expect(keysOf(merged)).To(Equal([]string{"A-1", "A-2", "A-9"}))
		Expect(merged[1].Change).To(Equal(domain.ChangeCreate))
		Expect(*merged[1].Fields.Summary).To(Equal("Recreated"))
		Expect(merged[2].ID).To(Equal(domain.PlaceholderIssueID))
	})

	It("ignores drafts that stage no change", func() {
		merged := plan.Merge(live, []domain.Issue{draft(domain.ChangeNone, "A-1", map[string]any{"summary": "Ignored"})})
		Expect(*merged[0].Fields.Summary).To(Equal("Old"))
	})

	It("keeps the first position for duplicate live keys", func() {
		live = append(live, liveIssue("A-1", "Newer copy", "Done"))
		merged := plan.Merge(live, nil)
		Expect(keysOf(merged)).To(Equal([]string{"A-1", "A-2"}))
		Expect(*merged[0].Fields.Summary).To(Equal("Newer copy"))
	})

	It("does not mutate its inputs", func() {
		drafts := []domain.Issue{draft(domain.ChangeUpdate, "A-1", map[string]any{"summary": "New"})}
		plan.Merge(live, drafts)
		Expect(*live[0].Fields.Summary).To(Equal("Old"))
		Expect(live[0].Change).To(Equal(domain.ChangeNone))
	})
})

var _ = Describe("OverlayFields", func() {
	It("replaces members whole and keeps absent ones", func() {
		base := domain.Fields{
			Summary: domain.Ptr("a"),
			Labels:  []string{"x"},
			Status:  &domain.Status{ID: domain.Ptr("1"), Name: domain.Ptr("To Do")},
		}
		patch := domain.Fields{
			Status: &domain.Status{Name: domain.Ptr("Done")},
			Labels: []string{},
		}
		out := plan.OverlayFields(base, patch)
		Expect(*out.Summary).To(Equal("a"))
		Expect(out.Status).To(Equal(&domain.Status{Name: domain.Ptr("Done")}))
		Expect(out.Labels).To(BeEmpty())
		Expect(base.Labels).To(Equal([]string{"x"}))
	})
})

var _ = Describe("Summarize", func() {
	It("counts entries by change", func() {
		merged := plan.Merge(
			[]domain.Issue{liveIssue("A-1", "a", "To Do"), liveIssue("A-2", "b", "To Do"), liveIssue("A-3", "c", "To Do")},
			[]domain.Issue{
				draft(domain.ChangeUpdate, "A-1", map[string]any{"summary": "x"}),
				draft(domain.ChangeDelete, "A-2", nil),
				draft(domain.ChangeCreate, "A-4", nil),
				draft(domain.ChangeCreate, "A-5", nil),
			},
		)
		s := plan.Summarize(merged)
		Expect(s).To(Equal(plan.Summary{Created: 2, Updated: 1, Deleted: 1, Unchanged: 1}))
		Expect(s.Staged()).To(Equal(4))
	})
})
