package domain

import "context"

// Nomes dos serviços upstream, usados em logs, estatísticas e throttle.
const (
	ServicePosts    = "posts"
	ServiceComments = "comments"
	ServiceUsers    = "users"
)

// PostsClient acessa o serviço de posts.
//
// DeletePost devolve o status HTTP do upstream. Status 0 com err == nil
// significa que não houve resposta.
type PostsClient interface {
	ListPosts(ctx context.Context) ([]Post, error)
	DeletePost(ctx context.Context, postID int64) (int, error)
}

// CommentsClient acessa o serviço de comentários.
// Ausência é sinalizada com um erro que satisfaz errors.Is(err, ErrNotFound).
type CommentsClient interface {
	ListComments(ctx context.Context, postID int64) ([]Comment, error)
}

// UsersClient acessa o serviço de usuários.
// Ausência é sinalizada com um erro que satisfaz errors.Is(err, ErrNotFound).
type UsersClient interface {
	GetUser(ctx context.Context, userID int64) (User, error)
}
