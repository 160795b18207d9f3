package domain

// UnknownAuthor é o valor usado em AuthorName/AuthorEmail quando o autor
// não pôde ser resolvido (falha no upstream ou post sem userId).
const UnknownAuthor = "unknown"

type Post struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	AuthorID int64  `json:"userId"`
}

type Comment struct {
	PostID int64  `json:"postId"`
	ID     int64  `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Body   string `json:"body"`
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UnknownUser é o placeholder devolvido quando o autor não existe ou falhou.
var UnknownUser = User{Name: UnknownAuthor, Email: UnknownAuthor}

// AggregatedPost é o post enriquecido devolvido ao chamador.
// Comments nunca é nil: falha ao buscar comentários resulta em lista vazia.
type AggregatedPost struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"authorEmail"`
	Comments    []Comment `json:"comments"`
}

// NewAggregatedPost monta o post de saída já com os defaults de degradação.
func NewAggregatedPost(p Post) AggregatedPost {
	return AggregatedPost{
		ID:          p.ID,
		Title:       p.Title,
		Body:        p.Body,
		AuthorName:  UnknownAuthor,
		AuthorEmail: UnknownAuthor,
		Comments:    []Comment{},
	}
}

// WithAuthor copia nome/email do usuário, mantendo o placeholder para campos vazios.
func (a *AggregatedPost) WithAuthor(u User) {
	if u.Name != "" {
		a.AuthorName = u.Name
	}
	if u.Email != "" {
		a.AuthorEmail = u.Email
	}
}
