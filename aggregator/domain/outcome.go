package domain

// Status é o resultado normalizado de uma chamada upstream.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Result é o resultado de uma chamada upstream: Ok(value), NotFound ou Unavailable(cause).
//
// Quem chama decide como reagir a cada caso; nenhuma falha é descartada antes disso.
type Result[T any] struct {
	Value  T
	Status Status
	// Err é a causa original quando Status != StatusOK.
	Err error
}

func Ok[T any](v T) Result[T] { return Result[T]{Value: v, Status: StatusOK} }

func NotFound[T any](err error) Result[T] {
	return Result[T]{Status: StatusNotFound, Err: err}
}

func Unavailable[T any](err error) Result[T] {
	return Result[T]{Status: StatusUnavailable, Err: err}
}

func (r Result[T]) OK() bool { return r.Status == StatusOK }

// DeleteOutcome é a tradução do status upstream do DELETE para o chamador.
type DeleteOutcome int

const (
	Deleted DeleteOutcome = iota
	DeleteNotFound
	DeleteInvalidRequest
	DeleteUpstreamUnavailable
	// DeleteInternalFailure: o upstream não devolveu resposta nenhuma
	// (violação de contrato), diferente de upstream indisponível.
	DeleteInternalFailure
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	case DeleteNotFound:
		return "not_found"
	case DeleteInvalidRequest:
		return "invalid_request"
	case DeleteUpstreamUnavailable:
		return "upstream_unavailable"
	case DeleteInternalFailure:
		return "internal_failure"
	default:
		return "unknown"
	}
}
