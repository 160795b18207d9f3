package application

import (
	"strings"

	"posts-gateway/aggregator/domain"
)

// Query restringe a lista base de posts antes do enriquecimento.
// O valor zero não filtra nada.
type Query struct {
	AuthorID int64
	// Search é comparado sem diferenciar maiúsculas com título e corpo.
	Search string
	Offset int
	// Limit <= 0 significa sem limite (além de MaxPosts).
	Limit int
}

func (q Query) apply(posts []domain.Post) []domain.Post {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := posts
	if q.AuthorID > 0 || search != "" {
		out = make([]domain.Post, 0, len(posts))
		for _, p := range posts {
			if q.AuthorID > 0 && p.AuthorID != q.AuthorID {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(p.Title), search) &&
				!strings.Contains(strings.ToLower(p.Body), search) {
				continue
			}
			out = append(out, p)
		}
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
