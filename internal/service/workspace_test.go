package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"captainhub.app/relay/internal/model"
	"captainhub.app/relay/internal/service"
)

var _ = Describe("WorkspaceService", func() {
	var (
		svc        service.WorkspaceService
		workspaces *mockWorkspaceStore
		ctx        context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		workspaces = newMockWorkspaceStore(&model.Workspace{ID: 1, Name: "existing", JiraProjectKey: strPtr("ACME")})
		svc = service.NewWorkspaceService(workspaces)
	})

	Describe("Create", func() {
		It("registers a workspace with a normalized project key", func() {
			ws, err := svc.Create(ctx, "  Payments  ", strPtr(" pay "))
			Expect(err).NotTo(HaveOccurred())
			Expect(ws.ID).NotTo(BeZero())
			Expect(ws.Name).To(Equal("Payments"))
			Expect(ws.JiraProjectKey).To(HaveValue(Equal("PAY")))
			Expect(workspaces.workspaces).To(HaveKey(ws.ID))
		})

		It("allows a workspace without a project", func() {
			ws, err := svc.Create(ctx, "Scratch", strPtr("   "))
			Expect(err).NotTo(HaveOccurred())
			Expect(ws.JiraProjectKey).To(BeNil())
		})

		It("rejects a blank name", func() {
			_, err := svc.Create(ctx, " ", nil)
			Expect(err).To(MatchError(service.ErrWorkspaceNameRequired))
		})

		It("rejects a project key another workspace owns", func() {
			_, err := svc.Create(ctx, "Copy", strPtr("acme"))
			Expect(err).To(MatchError(service.ErrProjectKeyTaken))
			Expect(err.Error()).To(ContainSubstring("ACME"))
		})
	})

	Describe("Get", func() {
		It("returns the workspace", func() {
			ws, err := svc.Get(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(ws.Name).To(Equal("existing"))
		})

		It("maps a missing workspace", func() {
			_, err := svc.Get(ctx, 404)
			Expect(err).To(MatchError(service.ErrWorkspaceNotFound))
		})
	})
})
