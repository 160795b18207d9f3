package infra

import (
	"context"
	"sync"
	"time"

	"posts-gateway/aggregator/domain"
)

type Counters struct {
	OK          int64
	NotFound    int64
	Unavailable int64

	// TotalLatency soma a latência de todas as chamadas do serviço.
	TotalLatency time.Duration
}

func (c Counters) Calls() int64 { return c.OK + c.NotFound + c.Unavailable }

// MemoryStatsStore guarda contadores por serviço em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é compartilhado entre instâncias.
type MemoryStatsStore struct {
	mu        sync.Mutex
	total     Counters
	byService map[string]Counters
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{byService: make(map[string]Counters)}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.CallEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byService[ev.Service]
	add(&c, ev)
	s.byService[ev.Service] = c
	add(&s.total, ev)
	return nil
}

func add(c *Counters, ev domain.CallEvent) {
	switch ev.Status {
	case domain.StatusOK:
		c.OK++
	case domain.StatusNotFound:
		c.NotFound++
	default:
		c.Unavailable++
	}
	c.TotalLatency += ev.Latency
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByService() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byService))
	for k, v := range s.byService {
		out[k] = v
	}
	return out
}
