package mapper

import (
	"fmt"
	"sync"

	"captainhub.app/relay/internal/domain"
)

// EventNormalizer turns one decoded webhook delivery into a unified event.
// It returns nil when the delivery carries nothing to record.
type EventNormalizer interface {
	Normalize(body map[string]any) *domain.UnifiedEvent
}

type NormalizerRegistry struct {
	mu          sync.RWMutex
	normalizers map[string]EventNormalizer
}

// NewNormalizerRegistry returns a registry with the Jira normalizer
// registered under its source name.
func NewNormalizerRegistry(jira *JiraEventMapper) *NormalizerRegistry {
	r := &NormalizerRegistry{normalizers: make(map[string]EventNormalizer)}
	if jira != nil {
		r.Register(jira.Source(), jira)
	}
	return r
}

func (r *NormalizerRegistry) Register(source string, n EventNormalizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalizers[source] = n
}

func (r *NormalizerRegistry) Get(source string) (EventNormalizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.normalizers[source]
	if !ok {
		return nil, fmt.Errorf("unsupported source: %s", source)
	}
	return n, nil
}

func (r *NormalizerRegistry) MustGet(source string) EventNormalizer {
	n, err := r.Get(source)
	if err != nil {
		panic(err)
	}
	return n
}
