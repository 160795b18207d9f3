package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"posts-gateway/aggregator/application"
	"posts-gateway/aggregator/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAggregator struct {
	posts []domain.AggregatedPost
	err   error
	panic bool

	calls int
	last  application.Query
}

func (s *stubAggregator) Aggregate(_ context.Context, q application.Query) ([]domain.AggregatedPost, error) {
	s.calls++
	s.last = q
	if s.panic {
		panic("boom")
	}
	return s.posts, s.err
}

type stubDeleter struct {
	outcome domain.DeleteOutcome
	err     error
	calls   int
}

func (s *stubDeleter) Delete(_ context.Context, postID int64) (domain.DeleteOutcome, error) {
	s.calls++
	if postID <= 0 {
		return domain.DeleteInvalidRequest, fmt.Errorf("bad id: %w", domain.ErrInvalidInput)
	}
	return s.outcome, s.err
}

func newTestServer(agg Aggregator, del Deleter) http.Handler {
	h := NewHandlers(agg, del, nil)
	var handler http.Handler = h.Routes()
	handler = RecoverMiddleware(nil)(handler)
	handler = RequestLogMiddleware(h.log)(handler)
	return handler
}

func doRequest(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body=%s", rr.Body.String())
	return body
}

func TestListPosts_Success(t *testing.T) {
	agg := &stubAggregator{posts: []domain.AggregatedPost{
		{ID: 1, Title: "Test Post 1", AuthorName: "Author 1", Comments: []domain.Comment{}},
		{ID: 2, Title: "Test Post 2", AuthorName: "Author 2", Comments: []domain.Comment{}},
	}}

	rr := doRequest(newTestServer(agg, &stubDeleter{}), http.MethodGet, "/posts")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, float64(1), got[0]["id"])
	assert.Equal(t, "Test Post 1", got[0]["title"])
	assert.Equal(t, "Author 1", got[0]["authorName"])
	assert.Equal(t, []any{}, got[0]["comments"])
	assert.Equal(t, application.Query{}, agg.last, "no params must not limit the list")
}

func TestListPosts_QueryParams(t *testing.T) {
	agg := &stubAggregator{posts: []domain.AggregatedPost{{ID: 1}}}

	rr := doRequest(newTestServer(agg, &stubDeleter{}), http.MethodGet,
		"/posts?authorId=1&search=%20test%3Cscript%3E%20&limit=10&offset=5")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, application.Query{AuthorID: 1, Search: "testscript", Limit: 10, Offset: 5}, agg.last)
}

func TestListPosts_ExplicitLimitAtMax(t *testing.T) {
	agg := &stubAggregator{posts: []domain.AggregatedPost{{ID: 1}}}

	rr := doRequest(newTestServer(agg, &stubDeleter{}), http.MethodGet, "/posts?limit=500")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, application.Query{Limit: MaxLimit}, agg.last)
}

func TestListPosts_SearchStripsOnlyASCIIControls(t *testing.T) {
	agg := &stubAggregator{posts: []domain.AggregatedPost{{ID: 1}}}

	// %01 e %7F são removidos; U+0085 (controle C1) e acentos ficam.
	rr := doRequest(newTestServer(agg, &stubDeleter{}), http.MethodGet,
		"/posts?search=caf%C3%A9%01%7F%C2%85x")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "café\u0085x", agg.last.Search)
}

func TestListPosts_InvalidParams(t *testing.T) {
	testCases := []struct {
		name    string
		query   string
		message string
	}{
		{name: "negative_author", query: "authorId=-1", message: "authorId must be positive"},
		{name: "zero_author", query: "authorId=0", message: "authorId must be positive"},
		{name: "non_numeric_author", query: "authorId=abc", message: "authorId must be a positive integer"},
		{name: "non_numeric_limit", query: "limit=abc", message: "limit must be an integer between 1 and 500"},
		{name: "limit_zero", query: "limit=0", message: "limit must be between 1 and 500"},
		{name: "limit_too_high", query: "limit=501", message: "limit must be between 1 and 500"},
		{name: "non_numeric_offset", query: "offset=1.5", message: "offset must be a non-negative integer"},
		{name: "negative_offset", query: "offset=-1", message: "offset must not be negative"},
		{name: "search_too_long", query: "search=" + strings.Repeat("a", 201), message: "search must be at most 200 characters"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			agg := &stubAggregator{}
			rr := doRequest(newTestServer(agg, &stubDeleter{}), http.MethodGet, "/posts?"+tc.query)

			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			body := decodeError(t, rr)
			assert.Equal(t, http.StatusBadRequest, body.Status)
			assert.Equal(t, tc.message, body.Message)
			assert.NotContains(t, body.Message, "strconv")
			assert.Equal(t, 0, agg.calls)
		})
	}
}

func TestListPosts_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not_found", err: fmt.Errorf("list posts: %w", domain.ErrNotFound), status: http.StatusNotFound},
		{name: "unavailable", err: fmt.Errorf("list posts: %w: %w", domain.ErrServiceUnavailable, errors.New("timeout")), status: http.StatusBadGateway},
		{name: "unexpected", err: errors.New("something else"), status: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(newTestServer(&stubAggregator{err: tc.err}, &stubDeleter{}), http.MethodGet, "/posts")

			assert.Equal(t, tc.status, rr.Code)
			body := decodeError(t, rr)
			assert.Equal(t, tc.status, body.Status)
			assert.NotEmpty(t, body.Timestamp)
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, internalErrorMessage, body.Message)
			}
		})
	}
}

func TestListPosts_PanicBecomes500(t *testing.T) {
	rr := doRequest(newTestServer(&stubAggregator{panic: true}, &stubDeleter{}), http.MethodGet, "/posts")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, internalErrorMessage, decodeError(t, rr).Message)
}

func TestDeletePost_StatusMapping(t *testing.T) {
	testCases := []struct {
		name    string
		path    string
		outcome domain.DeleteOutcome
		status  int
	}{
		{name: "deleted", path: "/posts/1", outcome: domain.Deleted, status: http.StatusNoContent},
		{name: "not_found", path: "/posts/999", outcome: domain.DeleteNotFound, status: http.StatusNotFound},
		{name: "client_error", path: "/posts/2", outcome: domain.DeleteInvalidRequest, status: http.StatusBadRequest},
		{name: "server_error", path: "/posts/3", outcome: domain.DeleteUpstreamUnavailable, status: http.StatusBadGateway},
		{name: "no_response", path: "/posts/4", outcome: domain.DeleteInternalFailure, status: http.StatusInternalServerError},
		{name: "zero_id", path: "/posts/0", status: http.StatusBadRequest},
		{name: "negative_id", path: "/posts/-1", status: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(newTestServer(&stubAggregator{}, &stubDeleter{outcome: tc.outcome}), http.MethodDelete, tc.path)

			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
			if tc.status == http.StatusNoContent {
				assert.Empty(t, rr.Body.String())
			}
		})
	}
}

func TestDeletePost_NonNumericID(t *testing.T) {
	del := &stubDeleter{}
	rr := doRequest(newTestServer(&stubAggregator{}, del), http.MethodDelete, "/posts/abc")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "post id must be a positive integer", decodeError(t, rr).Message)
	assert.Equal(t, 0, del.calls)
}

func TestHealth(t *testing.T) {
	rr := doRequest(newTestServer(&stubAggregator{}, &stubDeleter{}), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
}
