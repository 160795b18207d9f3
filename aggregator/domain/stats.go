package domain

import (
	"context"
	"time"
)

// CallEvent representa o desfecho de uma chamada upstream.
type CallEvent struct {
	Service string
	Status  Status
	Latency time.Duration

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas das chamadas upstream.
//
// Implementações podem armazenar em Redis, memória, etc.
// Quem registra deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev CallEvent) error
}
