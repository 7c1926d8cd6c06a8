package logger_test

import (
	"bytes"
	"context"
	"log/slog"

	"captainhub.app/relay/common/logger"
	"captainhub.app/relay/core/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logger", func() {
	Describe("WithLogFields", func() {
		It("merges fields, letting later values win", func() {
			ctx := logger.WithLogFields(context.Background(), logger.LogFields{
				WorkspaceID: logger.Ptr(int64(1)),
				Component:   "relay.webhook.jira",
			})
			ctx = logger.WithLogFields(ctx, logger.LogFields{
				EventID:   logger.Ptr("jira:acme:issue:1"),
				Component: "relay.service.ingest",
			})

			fields := logger.GetLogFields(ctx)
			Expect(*fields.WorkspaceID).To(Equal(int64(1)))
			Expect(*fields.EventID).To(Equal("jira:acme:issue:1"))
			Expect(fields.Component).To(Equal("relay.service.ingest"))
		})

		It("returns empty fields for a bare context", func() {
			Expect(logger.GetLogFields(context.Background())).To(Equal(logger.LogFields{}))
		})
	})

	Describe("TraceHandler", func() {
		It("adds context fields to each record", func() {
			var buf bytes.Buffer
			log := slog.New(logger.NewTraceHandler(slog.NewTextHandler(&buf, nil)))
			ctx := logger.WithLogFields(context.Background(), logger.LogFields{
				EventRecordID: logger.Ptr(int64(77)),
				Fingerprint:   logger.Ptr("abc"),
				Component:     "relay.worker",
			})

			log.InfoContext(ctx, "forwarded")

			Expect(buf.String()).To(ContainSubstring("event_record_id=77"))
			Expect(buf.String()).To(ContainSubstring("dedup_fingerprint=abc"))
			Expect(buf.String()).To(ContainSubstring("component=relay.worker"))
			Expect(buf.String()).ToNot(ContainSubstring("trace_id"))
		})
	})

	Describe("Truncate", func() {
		It("shortens long strings", func() {
			Expect(logger.Truncate("abcdef", 3)).To(Equal("abc..."))
			Expect(logger.Truncate("abc", 3)).To(Equal("abc"))
		})
	})

	Describe("NewHandler", func() {
		It("writes JSON in production and honours the level", func() {
			var buf bytes.Buffer
			log := slog.New(logger.NewHandler(&buf, config.Config{Env: "production", LogLevel: slog.LevelWarn}))

			log.Info("dropped")
			log.Warn("kept", "workspace_id", 9)

			Expect(buf.String()).ToNot(ContainSubstring("dropped"))
			Expect(buf.String()).To(ContainSubstring(`"msg":"kept"`))
			Expect(buf.String()).To(ContainSubstring(`"workspace_id":9`))
		})

		It("writes text outside production", func() {
			var buf bytes.Buffer
			log := slog.New(logger.NewHandler(&buf, config.Config{Env: "development", LogLevel: slog.LevelInfo}))

			log.Info("hello")

			Expect(buf.String()).To(ContainSubstring("msg=hello"))
		})
	})
})
