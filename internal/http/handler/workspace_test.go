package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"captainhub.app/relay/internal/http/handler"
	"captainhub.app/relay/internal/model"
	"captainhub.app/relay/internal/service"
)

var _ = Describe("WorkspaceHandler", func() {
	var (
		router *gin.Engine
		svc    *mockWorkspaceService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockWorkspaceService{}
		h := handler.NewWorkspaceHandler(svc)
		router.POST("/workspaces", h.Create)
		router.GET("/workspaces/:workspace_id", h.Get)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("Create", func() {
		It("creates a workspace and returns its id as a string", func() {
			var gotName string
			var gotKey *string
			svc.createFn = func(_ context.Context, name string, key *string) (*model.Workspace, error) {
				gotName, gotKey = name, key
				k := "PAY"
				return &model.Workspace{ID: 1234567890123, Name: name, JiraProjectKey: &k}, nil
			}

			w := do(http.MethodPost, "/workspaces", `{"name":"Payments","jira_project_key":"pay"}`)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(gotName).To(Equal("Payments"))
			Expect(gotKey).To(HaveValue(Equal("pay")))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(HaveKeyWithValue("id", "1234567890123"))
			Expect(resp).To(HaveKeyWithValue("jira_project_key", "PAY"))
			Expect(resp).To(HaveKeyWithValue("has_plan", false))
		})

		It("requires a name", func() {
			w := do(http.MethodPost, "/workspaces", `{"jira_project_key":"PAY"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("reports a taken project key as a conflict", func() {
			svc.createFn = func(context.Context, string, *string) (*model.Workspace, error) {
				return nil, fmt.Errorf("%w: PAY", service.ErrProjectKeyTaken)
			}
			w := do(http.MethodPost, "/workspaces", `{"name":"Copy","jira_project_key":"PAY"}`)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("hides unexpected errors", func() {
			svc.createFn = func(context.Context, string, *string) (*model.Workspace, error) {
				return nil, errors.New("pool exhausted")
			}
			w := do(http.MethodPost, "/workspaces", `{"name":"X"}`)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).NotTo(ContainSubstring("pool exhausted"))
		})
	})

	Describe("Get", func() {
		It("reports whether a plan is staged", func() {
			svc.getFn = func(_ context.Context, id int64) (*model.Workspace, error) {
				return &model.Workspace{ID: id, Name: "alpha", Plan: json.RawMessage(`[]`)}, nil
			}
			w := do(http.MethodGet, "/workspaces/9", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(HaveKeyWithValue("id", "9"))
			Expect(resp).To(HaveKeyWithValue("has_plan", true))
		})

		It("returns 404 for an unknown workspace", func() {
			svc.getFn = func(context.Context, int64) (*model.Workspace, error) {
				return nil, service.ErrWorkspaceNotFound
			}
			Expect(do(http.MethodGet, "/workspaces/9", "").Code).To(Equal(http.StatusNotFound))
		})
	})
})
