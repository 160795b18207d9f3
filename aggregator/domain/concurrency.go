package domain

import "context"

// SlotPool representa um recurso com capacidade finita (ex: workers para chamadas upstream).
//
// A semântica é: Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}

// Throttle controla o ritmo de chamadas por serviço upstream.
//
// Wait bloqueia até a chamada ser permitida ou até o ctx encerrar.
type Throttle interface {
	Wait(ctx context.Context, service string) error
}
