package service_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"captainhub.app/relay/internal/domain"
	"captainhub.app/relay/internal/model"
	"captainhub.app/relay/internal/plan"
	"captainhub.app/relay/internal/service"
)

const storedPlan = `[
	{"key": "A-1", "change": "update", "fields": {"summary": "New title"}},
	{"issue": {"key": "a-2"}, "key": "A-2", "change": "delete"},
	{"key": "NEW-1", "change": "create", "fields": {"summary": "Fresh"}},
	"not an item"
]`

var _ = Describe("PlanService", func() {
	var (
		svc        service.PlanService
		workspaces *mockWorkspaceStore
		txRunner   *mockTxRunner
		ctx        context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		workspaces = newMockWorkspaceStore(&model.Workspace{
			ID:   7,
			Name: "alpha",
			Plan: json.RawMessage(storedPlan),
		})
		txRunner = &mockTxRunner{
			withTxFn: func(ctx context.Context, fn func(stores service.StoreProvider) error) error {
				return fn(&mockStoreProvider{work: workspaces})
			},
		}
		svc = service.NewPlanService(workspaces, txRunner, nil)
	})

	Describe("Board", func() {
		It("merges live issues with the stored plan", func() {
			live := []map[string]any{
				{"id": "1", "key": "A-1", "fields": map[string]any{"summary": "Old title", "labels": []any{"x"}}},
				{"id": "2", "key": "A-2", "fields": map[string]any{"summary": "Doomed"}},
				{"id": "3", "key": "A-3", "fields": map[string]any{"summary": "Untouched"}},
			}

			board, err := svc.Board(ctx, 7, live)
			Expect(err).NotTo(HaveOccurred())

			keys := make([]string, len(board.Issues))
			for i, m := range board.Issues {
				keys[i] = m.Key
			}
			Expect(keys).To(Equal([]string{"A-1", "A-2", "A-3", "NEW-1"}))

			updated := board.Issues[0]
			Expect(updated.Change).To(Equal(domain.ChangeUpdate))
			Expect(updated.Fields.Summary).To(HaveValue(Equal("New title")))
			Expect(updated.Fields.Labels).To(Equal([]string{"x"}))
			Expect(updated.Original).NotTo(BeNil())
			Expect(updated.Original.Summary).To(HaveValue(Equal("Old title")))

			Expect(board.Issues[1].Change).To(Equal(domain.ChangeDelete))
			Expect(board.Issues[2].Change).To(Equal(domain.ChangeNone))
			Expect(board.Issues[3].Change).To(Equal(domain.ChangeCreate))

			Expect(board.Summary).To(Equal(plan.Summary{Created: 1, Updated: 1, Deleted: 1, Unchanged: 1}))
		})

		It("returns the live issues unchanged when no plan is stored", func() {
			workspaces.workspaces[7].Plan = nil
			board, err := svc.Board(ctx, 7, []map[string]any{{"id": "1", "key": "A-1"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(board.Issues).To(HaveLen(1))
			Expect(board.Issues[0].Change).To(Equal(domain.ChangeNone))
			Expect(board.Summary.Staged()).To(Equal(0))
		})

		It("maps a missing workspace to ErrWorkspaceNotFound", func() {
			_, err := svc.Board(ctx, 99, nil)
			Expect(err).To(MatchError(service.ErrWorkspaceNotFound))
		})
	})

	Describe("GetPlan", func() {
		It("drops entries that are not objects", func() {
			items, err := svc.GetPlan(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(3))
		})

		It("wraps unexpected store errors", func() {
			workspaces.getByIDFn = func(context.Context, int64) (*model.Workspace, error) {
				return nil, errors.New("conn refused")
			}
			_, err := svc.GetPlan(ctx, 7)
			Expect(err).To(MatchError(ContainSubstring("loading workspace: conn refused")))
			Expect(errors.Is(err, service.ErrWorkspaceNotFound)).To(BeFalse())
		})
	})

	Describe("ReplacePlan", func() {
		It("stores a valid plan", func() {
			items := []plan.Item{{"key": "B-1", "change": "delete"}}
			saved, err := svc.ReplacePlan(ctx, 7, items)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved).To(HaveLen(1))
			Expect(string(workspaces.workspaces[7].Plan)).To(MatchJSON(`[{"key":"B-1","change":"delete"}]`))
		})

		It("rejects items that do not stage a change", func() {
			_, err := svc.ReplacePlan(ctx, 7, []plan.Item{{"key": "B-1"}})
			Expect(err).To(MatchError(plan.ErrInvalidPlanItem))
			Expect(workspaces.savePlanCalls).To(Equal(0))
		})

		It("rejects updates without an issue key", func() {
			_, err := svc.ReplacePlan(ctx, 7, []plan.Item{{"change": "update", "fields": map[string]any{}}})
			Expect(err).To(MatchError(plan.ErrInvalidPlanItem))
		})

		It("stores an empty array for a nil plan", func() {
			_, err := svc.ReplacePlan(ctx, 7, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(workspaces.workspaces[7].Plan)).To(Equal("[]"))
		})
	})

	Describe("ClearPlan", func() {
		It("clears the stored plan", func() {
			Expect(svc.ClearPlan(ctx, 7)).To(Succeed())
			Expect(workspaces.workspaces[7].Plan).To(BeEmpty())
		})

		It("reports a missing workspace", func() {
			Expect(svc.ClearPlan(ctx, 99)).To(MatchError(service.ErrWorkspaceNotFound))
		})
	})

	Describe("RemoveItem", func() {
		It("removes the first matching item under a row lock", func() {
			removed, err := svc.RemoveItem(ctx, 7, " a-2 ")
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(HaveKeyWithValue("key", "A-2"))
			Expect(txRunner.calls).To(Equal(1))
			Expect(workspaces.lockedCalls).To(Equal(1))

			remaining := plan.ParseItems(workspaces.workspaces[7].Plan)
			Expect(remaining).To(HaveLen(2))
			Expect(remaining[0]).To(HaveKeyWithValue("key", "A-1"))
			Expect(remaining[1]).To(HaveKeyWithValue("key", "NEW-1"))
		})

		It("returns ErrPlanItemNotFound and leaves the plan alone", func() {
			_, err := svc.RemoveItem(ctx, 7, "Z-9")
			Expect(err).To(MatchError(service.ErrPlanItemNotFound))
			Expect(workspaces.savePlanCalls).To(Equal(0))
		})

		It("requires an issue key", func() {
			_, err := svc.RemoveItem(ctx, 7, "  ")
			Expect(err).To(MatchError(service.ErrIssueKeyRequired))
			Expect(txRunner.calls).To(Equal(0))
		})

		It("reports a missing workspace", func() {
			_, err := svc.RemoveItem(ctx, 99, "A-1")
			Expect(err).To(MatchError(service.ErrWorkspaceNotFound))
		})

		It("stores an empty array after removing the last item", func() {
			workspaces.workspaces[7].Plan = json.RawMessage(`[{"key":"A-1","change":"delete"}]`)
			_, err := svc.RemoveItem(ctx, 7, "A-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(workspaces.workspaces[7].Plan)).To(Equal("[]"))
		})
	})
})
