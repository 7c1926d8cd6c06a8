package service

import (
	"log/slog"

	"captainhub.app/relay/internal/mapper"
	"captainhub.app/relay/internal/queue"
	"captainhub.app/relay/internal/store"
)

type Services struct {
	stores      *store.Stores
	txRunner    TxRunner
	producer    queue.Producer
	status      queue.StatusPublisher
	normalizers *mapper.NormalizerRegistry
	logger      *slog.Logger
}

type ServicesConfig struct {
	Stores      *store.Stores
	TxRunner    TxRunner
	Producer    queue.Producer
	Status      queue.StatusPublisher
	Normalizers *mapper.NormalizerRegistry
	Logger      *slog.Logger
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		stores:      cfg.Stores,
		txRunner:    cfg.TxRunner,
		producer:    cfg.Producer,
		status:      cfg.Status,
		normalizers: cfg.Normalizers,
		logger:      cfg.Logger,
	}
}

func (s *Services) EventIngest() EventIngestService {
	return NewEventIngestService(s.normalizers, s.stores.EventRecords(), s.stores.Workspaces(), s.producer, s.status, s.logger)
}

func (s *Services) Plans() PlanService {
	return NewPlanService(s.stores.Workspaces(), s.txRunner, s.logger)
}

func (s *Services) Events() EventQueryService {
	return NewEventQueryService(s.stores.EventRecords(), s.stores.Workspaces())
}

func (s *Services) Workspaces() WorkspaceService {
	return NewWorkspaceService(s.stores.Workspaces())
}
