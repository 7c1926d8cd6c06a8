package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"captainhub.app/relay/internal/model"
)

const contextThreadPath = "/api/context-thread"

// PermanentError marks a delivery failure that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// contextThreadRequest is the row shape the agent's context-thread endpoint reads.
type contextThreadRequest struct {
	EventID          string          `json:"event_id"`
	DedupFingerprint string          `json:"dedup_fingerprint"`
	WorkspaceID      *int64          `json:"workspace_id"`
	UES              json.RawMessage `json:"ues"`
}

type HTTPForwarder struct {
	client      *http.Client
	endpoint    string
	traceHeader string
}

func NewHTTPForwarder(agentURL string, timeout time.Duration, traceHeader string) *HTTPForwarder {
	return &HTTPForwarder{
		client:      &http.Client{Timeout: timeout},
		endpoint:    strings.TrimRight(agentURL, "/") + contextThreadPath,
		traceHeader: traceHeader,
	}
}

func (f *HTTPForwarder) Endpoint() string {
	return f.endpoint
}

func (f *HTTPForwarder) Forward(ctx context.Context, rec *model.EventRecord, traceID string) error {
	body, err := json.Marshal(contextThreadRequest{
		EventID:          rec.EventID,
		DedupFingerprint: rec.DedupFingerprint,
		WorkspaceID:      rec.WorkspaceID,
		UES:              rec.Payload,
	})
	if err != nil {
		return &PermanentError{Err: fmt.Errorf("encoding event: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return &PermanentError{Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if traceID != "" && f.traceHeader != "" {
		req.Header.Set(f.traceHeader, traceID)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := fmt.Errorf("agent returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	if retryableStatus(resp.StatusCode) {
		return statusErr
	}
	return &PermanentError{Err: statusErr}
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
}
