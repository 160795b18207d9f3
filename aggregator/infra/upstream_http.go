package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"posts-gateway/aggregator/domain"
)

// HTTPUpstream é um cliente JSON para um dos serviços upstream.
//
// A mesma struct implementa PostsClient, CommentsClient e UsersClient; cada
// serviço normalmente recebe sua própria instância com a base URL configurada.
// Não aplica timeout próprio: o budget vem do ctx de cada chamada.
type HTTPUpstream struct {
	service string
	baseURL *url.URL
	hc      *http.Client
}

var (
	_ domain.PostsClient    = (*HTTPUpstream)(nil)
	_ domain.CommentsClient = (*HTTPUpstream)(nil)
	_ domain.UsersClient    = (*HTTPUpstream)(nil)
)

func NewHTTPUpstream(service, baseURL string, hc *http.Client) (*HTTPUpstream, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s base url: %w", service, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s base url %q: scheme and host are required", service, baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPUpstream{service: service, baseURL: u, hc: hc}, nil
}

func (c *HTTPUpstream) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	if err := c.getJSON(ctx, "/posts", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *HTTPUpstream) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := c.getJSON(ctx, "/posts/"+strconv.FormatInt(postID, 10)+"/comments", &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *HTTPUpstream) GetUser(ctx context.Context, userID int64) (domain.User, error) {
	var u domain.User
	if err := c.getJSON(ctx, "/users/"+strconv.FormatInt(userID, 10), &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// DeletePost devolve o status do upstream sem interpretá-lo; só erro de transporte vira erro.
func (c *HTTPUpstream) DeletePost(ctx context.Context, postID int64) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/posts/"+strconv.FormatInt(postID, 10)), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s upstream: %w", c.service, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *HTTPUpstream) endpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *HTTPUpstream) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s upstream: %w", c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &domain.UpstreamError{Service: c.service, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s upstream: decode %s: %w", c.service, path, err)
	}
	return nil
}
