package application

import (
	"context"
	"fmt"
	"sync"

	"posts-gateway/aggregator/domain"
)

// UserFetchFunc busca um usuário e já devolve o desfecho normalizado
// (normalmente um Call sobre UsersClient.GetUser).
type UserFetchFunc func(ctx context.Context, userID int64) domain.Result[domain.User]

// UserCache deduplica a resolução de autores dentro de UM request de agregação.
//
// O primeiro Resolve de um id dispara a busca; os demais recebem o mesmo
// handle. Falhas ficam em cache até o fim do request (sem retry). Não deve ser
// reaproveitado entre requests: crie um por chamada de Aggregate.
type UserCache struct {
	fetch UserFetchFunc

	mu      sync.Mutex
	entries map[int64]*UserHandle
}

func NewUserCache(fetch UserFetchFunc) *UserCache {
	return &UserCache{
		fetch:   fetch,
		entries: make(map[int64]*UserHandle),
	}
}

// UserHandle é o resultado, pendente ou pronto, da resolução de um usuário.
type UserHandle struct {
	done chan struct{}
	res  domain.Result[domain.User]
}

func readyHandle(res domain.Result[domain.User]) *UserHandle {
	h := &UserHandle{done: make(chan struct{}), res: res}
	close(h.done)
	return h
}

// Wait bloqueia até a busca terminar. Se o ctx do chamador encerrar antes,
// devolve Unavailable para este chamador apenas; a busca continua para os outros.
func (h *UserHandle) Wait(ctx context.Context) domain.Result[domain.User] {
	select {
	case <-h.done:
		return h.res
	case <-ctx.Done():
		return domain.Unavailable[domain.User](ctx.Err())
	}
}

// Ready informa se a busca já terminou, sem bloquear.
func (h *UserHandle) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Resolve devolve o handle do usuário sem bloquear.
// userID <= 0 (autor ausente) devolve o placeholder sem tocar no cache.
func (c *UserCache) Resolve(ctx context.Context, userID int64) *UserHandle {
	if userID <= 0 {
		return readyHandle(domain.Result[domain.User]{
			Value:  domain.UnknownUser,
			Status: domain.StatusNotFound,
			Err:    fmt.Errorf("post without author: %w", domain.ErrNotFound),
		})
	}

	c.mu.Lock()
	if h, ok := c.entries[userID]; ok {
		c.mu.Unlock()
		return h
	}
	h := &UserHandle{done: make(chan struct{})}
	c.entries[userID] = h
	c.mu.Unlock()

	go func() {
		defer close(h.done)
		h.res = c.fetch(ctx, userID)
	}()
	return h
}

// Len devolve quantos ids distintos já foram requisitados.
func (c *UserCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
