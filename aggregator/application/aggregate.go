package application

import (
	"context"
	"fmt"
	"time"

	"posts-gateway/aggregator/domain"
	"posts-gateway/logger"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxPosts    = 1000
	DefaultFanoutLimit = 16
)

// Aggregator monta a lista de posts com comentários e autor.
//
// Só a busca da lista de posts é fatal. Falhas de comentários ou autor
// degradam para lista vazia / placeholder e nunca escapam como erro.
type Aggregator struct {
	Posts    domain.PostsClient
	Comments domain.CommentsClient
	Users    domain.UsersClient

	Caller *Caller
	Log    *logger.Logger

	// Timeouts por tipo de chamada; 0 usa o timeout do Caller.
	PostsTimeout    time.Duration
	CommentsTimeout time.Duration
	UsersTimeout    time.Duration

	// MaxPosts limita quantos posts são enriquecidos (mantém os primeiros N).
	MaxPosts int
	// FanoutLimit limita as tarefas de enriquecimento simultâneas por request.
	FanoutLimit int
}

// Aggregate busca os posts, aplica q e enriquece cada post em paralelo,
// preservando a ordem devolvida pelo upstream.
//
// Erros: domain.ErrServiceUnavailable se a lista de posts não puder ser obtida;
// domain.ErrNotFound se a lista (após o filtro) estiver vazia.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) ([]domain.AggregatedPost, error) {
	log := a.logFor(ctx)

	res := Call(ctx, a.Caller, domain.ServicePosts, a.PostsTimeout, a.Posts.ListPosts)
	switch res.Status {
	case domain.StatusOK:
	case domain.StatusNotFound:
		log.Warn("posts upstream reported not found", "error", res.Err)
		return nil, fmt.Errorf("list posts: %w", domain.ErrNotFound)
	default:
		log.Error("posts upstream unavailable", "error", res.Err)
		return nil, fmt.Errorf("list posts: %w: %w", domain.ErrServiceUnavailable, res.Err)
	}

	posts := validPosts(res.Value, log)
	posts = q.apply(posts)
	if len(posts) == 0 {
		log.Info("no posts found")
		return nil, fmt.Errorf("list posts: %w", domain.ErrNotFound)
	}

	if limit := a.maxPosts(); len(posts) > limit {
		log.Warn("post list truncated", "received", len(posts), "max", limit)
		posts = posts[:limit]
	}

	out := make([]domain.AggregatedPost, len(posts))
	for i, p := range posts {
		out[i] = domain.NewAggregatedPost(p)
	}

	users := NewUserCache(func(ctx context.Context, userID int64) domain.Result[domain.User] {
		return Call(ctx, a.Caller, domain.ServiceUsers, a.UsersTimeout, func(ctx context.Context) (domain.User, error) {
			return a.Users.GetUser(ctx, userID)
		})
	})

	// Sem errgroup.WithContext: uma tarefa nunca cancela as irmãs.
	// Cada tarefa escreve apenas em out[i], então não há disputa.
	var g errgroup.Group
	g.SetLimit(a.fanoutLimit())

	for i, p := range posts {
		g.Go(func() error {
			out[i].Comments = a.comments(ctx, p.ID, log)
			return nil
		})

		handle := users.Resolve(ctx, p.AuthorID)
		g.Go(func() error {
			ur := handle.Wait(ctx)
			if ur.OK() {
				out[i].WithAuthor(ur.Value)
			} else if p.AuthorID > 0 {
				log.Warn("author degraded to placeholder", "post_id", p.ID, "user_id", p.AuthorID, "status", ur.Status.String())
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("posts aggregated", "posts", len(out), "distinct_users", users.Len())
	return out, nil
}

func (a *Aggregator) comments(ctx context.Context, postID int64, log *logger.Logger) []domain.Comment {
	res := Call(ctx, a.Caller, domain.ServiceComments, a.CommentsTimeout, func(ctx context.Context) ([]domain.Comment, error) {
		return a.Comments.ListComments(ctx, postID)
	})
	if !res.OK() {
		log.Warn("comments degraded to empty list", "post_id", postID, "status", res.Status.String())
		return []domain.Comment{}
	}
	if res.Value == nil {
		return []domain.Comment{}
	}
	return res.Value
}

// validPosts descarta posts sem id válido mantendo a ordem.
func validPosts(posts []domain.Post, log *logger.Logger) []domain.Post {
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID <= 0 {
			log.Warn("post without id skipped")
			continue
		}
		out = append(out, p)
	}
	return out
}

func (a *Aggregator) maxPosts() int {
	if a.MaxPosts > 0 {
		return a.MaxPosts
	}
	return DefaultMaxPosts
}

func (a *Aggregator) fanoutLimit() int {
	if a.FanoutLimit > 0 {
		return a.FanoutLimit
	}
	return DefaultFanoutLimit
}

func (a *Aggregator) logFor(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx, a.Log)
}
