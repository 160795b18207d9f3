package aggregator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"posts-gateway/aggregator/application"
	"posts-gateway/aggregator/domain"
	"posts-gateway/logger"

	"github.com/go-playground/validator/v10"
)

const (
	MaxLimit     = 500
	MaxSearchLen = 200
)

// Aggregator é o caso de uso de GET /posts (implementado por *application.Aggregator).
type Aggregator interface {
	Aggregate(ctx context.Context, q application.Query) ([]domain.AggregatedPost, error)
}

// Deleter é o caso de uso de DELETE /posts/{id} (implementado por *application.Deleter).
type Deleter interface {
	Delete(ctx context.Context, postID int64) (domain.DeleteOutcome, error)
}

type Handlers struct {
	agg      Aggregator
	del      Deleter
	log      *logger.Logger
	validate *validator.Validate
}

func NewHandlers(agg Aggregator, del Deleter, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{
		agg:      agg,
		del:      del,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes registra as rotas da API num mux novo.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /posts", h.ListPosts)
	mux.HandleFunc("DELETE /posts/{id}", h.DeletePost)
	return mux
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// listParams espelha os query params de GET /posts.
// Sem limit, só o MaxPosts do agregador limita a resposta.
type listParams struct {
	AuthorID *int64 `validate:"omitempty,gt=0"`
	Search   string `validate:"max=200"`
	Limit    *int   `validate:"omitempty,min=1,max=500"`
	Offset   int    `validate:"min=0"`
}

// caracteres removidos do parâmetro search (controles ASCII, < e >)
var unsafeSearchChars = regexp.MustCompile(`[<>\x00-\x1F\x7F]`)

func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.log)

	q, err := h.parseListQuery(r)
	if err != nil {
		writeDomainError(w, log, err)
		return
	}
	log.Info("list posts", "author_id", q.AuthorID, "search", q.Search, "limit", q.Limit, "offset", q.Offset)

	posts, err := h.agg.Aggregate(r.Context(), q)
	if err != nil {
		writeDomainError(w, log, err)
		return
	}
	log.Info("list posts done", "results", len(posts))
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handlers) parseListQuery(r *http.Request) (application.Query, error) {
	values := r.URL.Query()
	var p listParams

	if v := strings.TrimSpace(values.Get("authorId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return application.Query{}, invalidParam("authorId must be a positive integer", err)
		}
		p.AuthorID = &id
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return application.Query{}, invalidParam(fmt.Sprintf("limit must be an integer between 1 and %d", MaxLimit), err)
		}
		p.Limit = &n
	}
	if v := strings.TrimSpace(values.Get("offset")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return application.Query{}, invalidParam("offset must be a non-negative integer", err)
		}
		p.Offset = n
	}
	p.Search = strings.TrimSpace(values.Get("search"))

	if err := h.validate.Struct(p); err != nil {
		return application.Query{}, invalidParam(describeValidation(err), err)
	}

	q := application.Query{
		Search: strings.TrimSpace(unsafeSearchChars.ReplaceAllString(p.Search, "")),
		Offset: p.Offset,
	}
	if p.AuthorID != nil {
		q.AuthorID = *p.AuthorID
	}
	if p.Limit != nil {
		q.Limit = *p.Limit
	}
	return q, nil
}

// requestError é uma entrada inválida cuja message pode ir para o cliente;
// a causa (parser, validator) fica só no log.
type requestError struct {
	message string
	cause   error
}

func (e *requestError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

func (e *requestError) Unwrap() []error {
	if e.cause == nil {
		return []error{domain.ErrInvalidInput}
	}
	return []error{domain.ErrInvalidInput, e.cause}
}

func invalidParam(message string, cause error) error {
	return &requestError{message: message, cause: cause}
}

// clientMessage devolve a mensagem segura de um erro de entrada.
func clientMessage(err error) string {
	var re *requestError
	if errors.As(err, &re) {
		return re.message
	}
	return "invalid request"
}

// describeValidation monta uma mensagem curta a partir dos erros do validator.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid query"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "AuthorID":
		return "authorId must be positive"
	case "Search":
		return fmt.Sprintf("search must be at most %d characters", MaxSearchLen)
	case "Limit":
		return fmt.Sprintf("limit must be between 1 and %d", MaxLimit)
	case "Offset":
		return "offset must not be negative"
	default:
		return fe.Error()
	}
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.log)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDomainError(w, log, invalidParam("post id must be a positive integer", err))
		return
	}

	outcome, err := h.del.Delete(r.Context(), id)
	if err != nil {
		writeDomainError(w, log, err)
		return
	}

	status := statusForDelete(outcome)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeError(w, status, deleteMessage(outcome))
}

func deleteMessage(o domain.DeleteOutcome) string {
	switch o {
	case domain.DeleteNotFound:
		return "post not found"
	case domain.DeleteInvalidRequest:
		return "upstream rejected the delete request"
	case domain.DeleteUpstreamUnavailable:
		return "upstream service unavailable"
	default:
		return internalErrorMessage
	}
}
