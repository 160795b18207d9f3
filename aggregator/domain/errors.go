package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: o recurso primário (lista de posts, post a remover) não existe.
	ErrNotFound = errors.New("not found")
	// ErrServiceUnavailable: upstream fora do ar, com erro ou acima do timeout
	// numa chamada cuja falha é fatal para o request.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrInvalidInput: identificador inválido, rejeitado antes de qualquer chamada upstream.
	ErrInvalidInput = errors.New("invalid input")
)

// UpstreamError representa uma resposta não-2xx de um serviço upstream.
//
// Um 404 deve ser reportado como ErrNotFound (Is devolve true nesse caso).
type UpstreamError struct {
	Service    string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream returned status %d", e.Service, e.StatusCode)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
