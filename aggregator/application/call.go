package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"posts-gateway/aggregator/domain"
	"posts-gateway/logger"
)

// DefaultCallTimeout é o budget por chamada quando nenhum outro é configurado.
const DefaultCallTimeout = 5 * time.Second

// ErrNoWorker indica que nenhuma vaga do pool foi liberada dentro do budget.
var ErrNoWorker = errors.New("no upstream worker available")

// Caller concentra a execução resiliente de chamadas upstream, sem saber nada sobre HTTP.
//
// Todos os campos são opcionais: sem Pool não há limite de workers, sem
// Throttle não há controle de ritmo e sem Stats nada é registrado.
type Caller struct {
	Pool     domain.SlotPool
	Throttle domain.Throttle
	Stats    domain.StatsStore
	Log      *logger.Logger
	Timeout  time.Duration
}

func (c *Caller) timeout(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	if c != nil && c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultCallTimeout
}

// Call executa fn num worker com um budget de tempo rígido e normaliza o desfecho:
//
//   - Ok(value): fn terminou dentro do budget sem erro
//   - NotFound: fn devolveu um erro que satisfaz errors.Is(err, domain.ErrNotFound)
//   - Unavailable(cause): timeout, falta de worker/token, erro de transporte, panic ou qualquer outro erro
//
// O budget (timeout <= 0 usa o padrão do Caller) cobre throttle, espera por
// worker e a chamada em si. Ele não se propaga a outras chamadas: cada Call
// deriva seu próprio ctx do ctx recebido. Não há retry.
func Call[T any](ctx context.Context, c *Caller, service string, timeout time.Duration, fn func(ctx context.Context) (T, error)) domain.Result[T] {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, c.timeout(timeout))
	defer cancel()

	res := run(callCtx, c, service, fn)
	c.record(ctx, service, res.Status, res.Err, time.Since(start))
	return res
}

func run[T any](ctx context.Context, c *Caller, service string, fn func(ctx context.Context) (T, error)) domain.Result[T] {
	if c != nil && c.Throttle != nil {
		if err := c.Throttle.Wait(ctx, service); err != nil {
			return domain.Unavailable[T](fmt.Errorf("%s throttled: %w", service, err))
		}
	}

	release := func() {}
	if c != nil && c.Pool != nil {
		r, ok := c.Pool.Acquire(ctx)
		if !ok {
			return domain.Unavailable[T](fmt.Errorf("%s: %w", service, ErrNoWorker))
		}
		release = r
	}

	type outcome struct {
		v   T
		err error
	}
	// buffer 1: se o budget estourar, a goroutine termina sozinha sem bloquear.
	done := make(chan outcome, 1)
	go func() {
		defer release()
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("%s upstream panic: %v", service, p)}
			}
		}()
		v, err := fn(ctx)
		done <- outcome{v: v, err: err}
	}()

	select {
	case out := <-done:
		switch {
		case out.err == nil:
			return domain.Ok(out.v)
		case errors.Is(out.err, domain.ErrNotFound):
			return domain.NotFound[T](out.err)
		default:
			return domain.Unavailable[T](out.err)
		}
	case <-ctx.Done():
		return domain.Unavailable[T](fmt.Errorf("%s call: %w", service, ctx.Err()))
	}
}

func (c *Caller) record(ctx context.Context, service string, status domain.Status, cause error, latency time.Duration) {
	var fallback *logger.Logger
	var stats domain.StatsStore
	if c != nil {
		fallback, stats = c.Log, c.Stats
	}

	log := logger.FromContext(ctx, fallback)
	if status == domain.StatusOK {
		log.Debug("upstream call", "service", service, "status", status.String(), "latency", latency)
	} else {
		log.Warn("upstream call failed", "service", service, "status", status.String(), "latency", latency, "error", cause)
	}

	if stats == nil {
		return
	}
	// contexto próprio: o ctx do request pode já ter encerrado.
	statsCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := stats.Record(statsCtx, domain.CallEvent{
		Service: service,
		Status:  status,
		Latency: latency,
		At:      time.Now(),
	}); err != nil {
		log.Debug("stats record failed", "service", service, "error", err)
	}
}
