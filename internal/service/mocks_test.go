package service_test

import (
	"context"
	"encoding/json"
	"sync"

	"captainhub.app/relay/internal/model"
	"captainhub.app/relay/internal/queue"
	"captainhub.app/relay/internal/service"
	"captainhub.app/relay/internal/store"
)

// mockEventRecordStore keeps records in memory keyed by fingerprint and
// mirrors the unique constraints of the real table.
type mockEventRecordStore struct {
	mu sync.Mutex

	existingFn    func(ctx context.Context, fingerprints []string) (map[string]struct{}, error)
	insertFn      func(ctx context.Context, records []model.EventRecord) (map[string]int64, error)
	markFailedFn  func(ctx context.Context, id int64, errMsg string) error
	listFn        func(ctx context.Context, workspaceID int64, limit int32) ([]model.EventRecord, error)
	lookupCalls   int
	insertCalls   int
	byFingerprint map[string]model.EventRecord
	byEventID     map[string]struct{}
	forwarded     []int64
}

func newMockEventRecordStore() *mockEventRecordStore {
	return &mockEventRecordStore{
		byFingerprint: map[string]model.EventRecord{},
		byEventID:     map[string]struct{}{},
	}
}

func (m *mockEventRecordStore) ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]struct{}, error) {
	m.mu.Lock()
	m.lookupCalls++
	m.mu.Unlock()
	if m.existingFn != nil {
		return m.existingFn(ctx, fingerprints)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	found := map[string]struct{}{}
	for _, fp := range fingerprints {
		if _, ok := m.byFingerprint[fp]; ok {
			found[fp] = struct{}{}
		}
	}
	return found, nil
}

func (m *mockEventRecordStore) InsertIgnoreDuplicates(ctx context.Context, records []model.EventRecord) (map[string]int64, error) {
	m.mu.Lock()
	m.insertCalls++
	m.mu.Unlock()
	if m.insertFn != nil {
		return m.insertFn(ctx, records)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := map[string]int64{}
	for _, rec := range records {
		if _, ok := m.byFingerprint[rec.DedupFingerprint]; ok {
			continue
		}
		if _, ok := m.byEventID[rec.EventID]; ok {
			continue
		}
		m.byFingerprint[rec.DedupFingerprint] = rec
		m.byEventID[rec.EventID] = struct{}{}
		inserted[rec.DedupFingerprint] = rec.ID
	}
	return inserted, nil
}

func (m *mockEventRecordStore) GetByID(_ context.Context, id int64) (*model.EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.byFingerprint {
		if rec.ID == id {
			r := rec
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockEventRecordStore) ListByWorkspace(ctx context.Context, workspaceID int64, limit int32) ([]model.EventRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, workspaceID, limit)
	}
	return nil, nil
}

func (m *mockEventRecordStore) MarkForwarded(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forwarded = append(m.forwarded, id)
	return nil
}

func (m *mockEventRecordStore) MarkForwardFailed(ctx context.Context, id int64, errMsg string) error {
	if m.markFailedFn != nil {
		return m.markFailedFn(ctx, id, errMsg)
	}
	return nil
}

func (m *mockEventRecordStore) stored() []model.EventRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.EventRecord, 0, len(m.byFingerprint))
	for _, rec := range m.byFingerprint {
		out = append(out, rec)
	}
	return out
}

type mockWorkspaceStore struct {
	getByIDFn          func(ctx context.Context, id int64) (*model.Workspace, error)
	ownersFn           func(ctx context.Context, keys []string) (map[string]int64, error)
	savePlanFn         func(ctx context.Context, id int64, plan []byte) (*model.Workspace, error)
	workspaces         map[int64]*model.Workspace
	lockedCalls        int
	savePlanCalls      int
	requestedOwnerKeys [][]string
}

func newMockWorkspaceStore(workspaces ...*model.Workspace) *mockWorkspaceStore {
	m := &mockWorkspaceStore{workspaces: map[int64]*model.Workspace{}}
	for _, ws := range workspaces {
		m.workspaces[ws.ID] = ws
	}
	return m
}

func (m *mockWorkspaceStore) GetByID(ctx context.Context, id int64) (*model.Workspace, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	ws, ok := m.workspaces[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *ws
	return &copied, nil
}

func (m *mockWorkspaceStore) GetByIDForUpdate(ctx context.Context, id int64) (*model.Workspace, error) {
	m.lockedCalls++
	return m.GetByID(ctx, id)
}

func (m *mockWorkspaceStore) Create(_ context.Context, ws *model.Workspace) error {
	if ws.JiraProjectKey != nil {
		for _, existing := range m.workspaces {
			if existing.JiraProjectKey != nil && *existing.JiraProjectKey == *ws.JiraProjectKey {
				return store.ErrConflict
			}
		}
	}
	m.workspaces[ws.ID] = ws
	return nil
}

func (m *mockWorkspaceStore) WorkspaceIDsByProjectKeys(ctx context.Context, keys []string) (map[string]int64, error) {
	m.requestedOwnerKeys = append(m.requestedOwnerKeys, keys)
	if m.ownersFn != nil {
		return m.ownersFn(ctx, keys)
	}
	owners := map[string]int64{}
	for _, ws := range m.workspaces {
		if ws.JiraProjectKey == nil {
			continue
		}
		for _, k := range keys {
			if k == *ws.JiraProjectKey {
				owners[k] = ws.ID
			}
		}
	}
	return owners, nil
}

func (m *mockWorkspaceStore) SavePlan(ctx context.Context, id int64, plan []byte) (*model.Workspace, error) {
	m.savePlanCalls++
	if m.savePlanFn != nil {
		return m.savePlanFn(ctx, id, plan)
	}
	ws, ok := m.workspaces[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	ws.Plan = json.RawMessage(plan)
	copied := *ws
	return &copied, nil
}

type mockStoreProvider struct {
	events store.EventRecordStore
	work   store.WorkspaceStore
}

func (m *mockStoreProvider) EventRecords() store.EventRecordStore {
	return m.events
}

func (m *mockStoreProvider) Workspaces() store.WorkspaceStore {
	return m.work
}

type mockTxRunner struct {
	withTxFn func(ctx context.Context, fn func(stores service.StoreProvider) error) error
	calls    int
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	m.calls++
	if m.withTxFn != nil {
		return m.withTxFn(ctx, fn)
	}
	return fn(&mockStoreProvider{})
}

type mockQueueProducer struct {
	enqueueFn func(ctx context.Context, msg queue.EventMessage) error
	messages  []queue.EventMessage
}

func (m *mockQueueProducer) Enqueue(ctx context.Context, msg queue.EventMessage) error {
	if m.enqueueFn != nil {
		if err := m.enqueueFn(ctx, msg); err != nil {
			return err
		}
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockQueueProducer) Close() error {
	return nil
}

type mockStatusPublisher struct {
	publishFn func(ctx context.Context, workspaceID int64, update queue.StatusUpdate) error
	published map[int64][]queue.StatusUpdate
}

func (m *mockStatusPublisher) Publish(ctx context.Context, workspaceID int64, update queue.StatusUpdate) error {
	if m.publishFn != nil {
		if err := m.publishFn(ctx, workspaceID, update); err != nil {
			return err
		}
	}
	if m.published == nil {
		m.published = map[int64][]queue.StatusUpdate{}
	}
	m.published[workspaceID] = append(m.published[workspaceID], update)
	return nil
}

func strPtr(s string) *string { return &s }
