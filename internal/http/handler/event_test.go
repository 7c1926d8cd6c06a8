package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"captainhub.app/relay/internal/http/handler"
	"captainhub.app/relay/internal/model"
	"captainhub.app/relay/internal/service"
)

var _ = Describe("EventHandler", func() {
	var (
		router *gin.Engine
		svc    *mockEventQueryService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockEventQueryService{}
		router.GET("/workspaces/:workspace_id/events", handler.NewEventHandler(svc).List)
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	It("lists events with the stored UES document", func() {
		var gotLimit int32
		svc.listFn = func(_ context.Context, _ int64, limit int32) ([]model.EventRecord, error) {
			gotLimit = limit
			return []model.EventRecord{{
				ID:               1234567890123,
				EventID:          "jira:acme:issue:1",
				DedupFingerprint: "fp",
				Source:           "jira",
				EventType:        "issue",
				Payload:          json.RawMessage(`{"event_id":"jira:acme:issue:1"}`),
				ForwardStatus:    model.ForwardStatusForwarded,
				CreatedAt:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			}}, nil
		}

		w := get("/workspaces/5/events?limit=20")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gotLimit).To(Equal(int32(20)))

		var resp struct {
			Events []map[string]any `json:"events"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Events).To(HaveLen(1))
		Expect(resp.Events[0]).To(HaveKeyWithValue("id", "1234567890123"))
		Expect(resp.Events[0]).To(HaveKeyWithValue("forward_status", "forwarded"))
		Expect(resp.Events[0]["ues"]).To(HaveKeyWithValue("event_id", "jira:acme:issue:1"))
	})

	It("rejects a malformed limit", func() {
		Expect(get("/workspaces/5/events?limit=lots").Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 404 for a missing workspace", func() {
		svc.listFn = func(context.Context, int64, int32) ([]model.EventRecord, error) {
			return nil, service.ErrWorkspaceNotFound
		}
		Expect(get("/workspaces/5/events").Code).To(Equal(http.StatusNotFound))
	})
})

var _ = Describe("UESSchema", func() {
	It("serves the unified event schema", func() {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/schema/ues", handler.UESSchema)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schema/ues", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		var doc map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &doc)).To(Succeed())
		Expect(doc).To(HaveKey("properties"))
	})
})

var _ = Describe("EventStreamHandler", func() {
	It("reports 503 without redis", func() {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/workspaces/:workspace_id/events/stream", handler.NewEventStreamHandler(nil, "relay-status").Stream)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/workspaces/5/events/stream", nil))
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
