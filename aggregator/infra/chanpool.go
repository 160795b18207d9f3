package infra

import (
	"context"
	"sync"

	"posts-gateway/aggregator/domain"
)

// ChanPool é um semáforo baseado em channel. Cada vaga corresponde a um
// worker disponível para uma chamada upstream (ou para um request de entrada).
type ChanPool struct {
	sem chan struct{}
}

var _ domain.SlotPool = (*ChanPool)(nil)

// NewChanPool cria um pool com capacidade `max` (mínimo 1).
func NewChanPool(max int) *ChanPool {
	if max <= 0 {
		max = 1
	}
	return &ChanPool{sem: make(chan struct{}, max)}
}

func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	// ctx já encerrado não ganha vaga, mesmo que haja sobra.
	if ctx.Err() != nil {
		return nil, false
	}
	select {
	case p.sem <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-p.sem }) }, true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *ChanPool) Cap() int   { return cap(p.sem) }
func (p *ChanPool) InUse() int { return len(p.sem) }
