package infra

import (
	"context"
	"sync"

	"posts-gateway/aggregator/domain"

	"golang.org/x/time/rate"
)

// Throttle é um token bucket (x/time/rate) por serviço upstream.
//
// Os limiters são criados sob demanda e nunca expiram: o número de chaves
// é o número de serviços upstream.
type Throttle struct {
	mu      sync.Mutex
	entries map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
}

var _ domain.Throttle = (*Throttle)(nil)

// NewThrottle devolve nil quando rps <= 0. Um *Throttle nil não limita nada.
func NewThrottle(rps float64, burst int) *Throttle {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{
		entries: make(map[string]*rate.Limiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (t *Throttle) RPS() float64 { return float64(t.rps) }
func (t *Throttle) Burst() int   { return t.burst }

// Wait implementa domain.Throttle. Retorna erro se o ctx encerrar (ou se o
// deadline do ctx não comportar a espera) antes de haver token.
func (t *Throttle) Wait(ctx context.Context, service string) error {
	if t == nil {
		return nil
	}
	return t.limiter(service).Wait(ctx)
}

func (t *Throttle) limiter(service string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if lim, ok := t.entries[service]; ok {
		return lim
	}
	lim := rate.NewLimiter(t.rps, t.burst)
	t.entries[service] = lim
	return lim
}
