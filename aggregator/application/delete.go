package application

import (
	"context"
	"fmt"
	"time"

	"posts-gateway/aggregator/domain"
	"posts-gateway/logger"
)

// Deleter encaminha a remoção de um post e traduz o status do upstream.
type Deleter struct {
	Posts   domain.PostsClient
	Caller  *Caller
	Log     *logger.Logger
	Timeout time.Duration
}

// Delete valida o id e encaminha o DELETE.
//
// Só devolve erro (domain.ErrInvalidInput) quando postID <= 0; nesse caso o
// upstream não é chamado. Qualquer outro desfecho vem em DeleteOutcome.
func (d *Deleter) Delete(ctx context.Context, postID int64) (domain.DeleteOutcome, error) {
	log := logger.FromContext(ctx, d.Log).With("post_id", postID)

	if postID <= 0 {
		log.Warn("invalid post id")
		return domain.DeleteInvalidRequest, fmt.Errorf("post id must be positive, got %d: %w", postID, domain.ErrInvalidInput)
	}

	res := Call(ctx, d.Caller, domain.ServicePosts, d.Timeout, func(ctx context.Context) (int, error) {
		return d.Posts.DeletePost(ctx, postID)
	})

	outcome := deleteOutcome(res)
	switch outcome {
	case domain.Deleted:
		log.Info("post deleted", "upstream_status", res.Value)
	case domain.DeleteNotFound, domain.DeleteInvalidRequest:
		log.Warn("post delete rejected", "outcome", outcome.String(), "upstream_status", res.Value)
	default:
		log.Error("post delete failed", "outcome", outcome.String(), "upstream_status", res.Value, "error", res.Err)
	}
	return outcome, nil
}

func deleteOutcome(res domain.Result[int]) domain.DeleteOutcome {
	switch res.Status {
	case domain.StatusNotFound:
		return domain.DeleteNotFound
	case domain.StatusUnavailable:
		return domain.DeleteUpstreamUnavailable
	}

	status := res.Value
	switch {
	case status == 0:
		// sem resposta do colaborador: violação de contrato, não indisponibilidade
		return domain.DeleteInternalFailure
	case status >= 200 && status <= 299:
		return domain.Deleted
	case status == 404:
		return domain.DeleteNotFound
	case status >= 400 && status <= 499:
		return domain.DeleteInvalidRequest
	default:
		return domain.DeleteUpstreamUnavailable
	}
}
