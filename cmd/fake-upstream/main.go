package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"posts-gateway/aggregator/domain"
)

// Servidor de desenvolvimento que imita os três upstreams (posts, comments, users)
// em memória, no formato do jsonplaceholder.
//
// FAKE_LATENCY (ex: 200ms) atrasa todas as respostas para exercitar os timeouts.
func main() {
	st := newStore()

	latency, _ := time.ParseDuration(os.Getenv("FAKE_LATENCY"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, st.listPosts())
	})
	mux.HandleFunc("GET /posts/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		comments, ok := st.comments(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, comments)
	})
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		u, ok := st.users[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, u)
	})
	mux.HandleFunc("DELETE /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if !st.deletePost(id) {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	h := http.Handler(mux)
	if latency > 0 {
		next := h
		h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("fake upstream listening on %s (latency=%s)", addr, latency)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

type store struct {
	mu    sync.Mutex
	posts []domain.Post
	users map[int64]domain.User
}

func newStore() *store {
	s := &store{users: map[int64]domain.User{
		1: {ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz"},
		2: {ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv"},
	}}
	for i := int64(1); i <= 10; i++ {
		// autor 3 não existe: exercita o placeholder
		s.posts = append(s.posts, domain.Post{
			ID:       i,
			Title:    "post " + strconv.FormatInt(i, 10),
			Body:     "body of post " + strconv.FormatInt(i, 10),
			AuthorID: i%3 + 1,
		})
	}
	return s
}

func (s *store) listPosts() []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Post(nil), s.posts...)
}

func (s *store) comments(postID int64) ([]domain.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID != postID {
			continue
		}
		out := make([]domain.Comment, 0, postID%3)
		for i := int64(0); i < postID%3; i++ {
			out = append(out, domain.Comment{
				PostID: postID,
				ID:     postID*10 + i,
				Email:  "reader@example.com",
				Body:   "comment " + strconv.FormatInt(i, 10),
			})
		}
		return out, true
	}
	return nil, false
}

func (s *store) deletePost(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.posts {
		if p.ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
