package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"posts-gateway/aggregator"
	"posts-gateway/aggregator/application"
	"posts-gateway/aggregator/domain"
	"posts-gateway/aggregator/infra"
	"posts-gateway/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	lg, err := logger.New(cfg.logMode)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer lg.Sync()

	hc := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        cfg.upstreamConcurrency * 2,
			MaxIdleConnsPerHost: cfg.upstreamConcurrency,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	postsClient := mustUpstream(lg, domain.ServicePosts, cfg.postsURL, hc)
	commentsClient := mustUpstream(lg, domain.ServiceComments, cfg.commentsURL, hc)
	usersClient := mustUpstream(lg, domain.ServiceUsers, cfg.usersURL, hc)

	var stats domain.StatsStore = infra.NewMemoryStatsStore()
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			lg.Fatal("redis stats ping error", "addr", cfg.statsRedisAddr, "error", err)
		}

		stats = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
		)
	}

	caller := &application.Caller{
		Pool:    infra.NewChanPool(cfg.upstreamConcurrency),
		Stats:   stats,
		Log:     lg,
		Timeout: cfg.upstreamTimeout,
	}
	// *Throttle nil dentro da interface não é nil; só atribui quando habilitado.
	if th := infra.NewThrottle(cfg.upstreamRPS, cfg.upstreamBurst); th != nil {
		caller.Throttle = th
	}

	agg := &application.Aggregator{
		Posts:           postsClient,
		Comments:        commentsClient,
		Users:           usersClient,
		Caller:          caller,
		Log:             lg,
		PostsTimeout:    cfg.upstreamTimeout,
		CommentsTimeout: cfg.commentsTimeout,
		UsersTimeout:    cfg.upstreamTimeout,
		MaxPosts:        cfg.maxPosts,
		FanoutLimit:     cfg.fanoutLimit,
	}
	del := &application.Deleter{
		Posts:   postsClient,
		Caller:  caller,
		Log:     lg,
		Timeout: cfg.upstreamTimeout,
	}

	handlers := aggregator.NewHandlers(agg, del, lg)

	var h http.Handler = handlers.Routes()
	if cfg.concurrencyMax > 0 {
		h = aggregator.ConcurrencyMiddleware(aggregator.ConcurrencyOptions{
			Pool:           infra.NewChanPool(cfg.concurrencyMax),
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.concurrencyTimeout,
		})(h)
	}
	h = aggregator.RecoverMiddleware(lg)(h)
	h = aggregator.RequestLogMiddleware(lg)(h)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Info("gateway listening", "addr", cfg.listenAddr, "posts", cfg.postsURL, "comments", cfg.commentsURL, "users", cfg.usersURL)
	lg.Info("upstream", "timeout", cfg.upstreamTimeout, "commentsTimeout", cfg.commentsTimeout, "concurrency", cfg.upstreamConcurrency, "fanout", cfg.fanoutLimit, "maxPosts", cfg.maxPosts, "rps", cfg.upstreamRPS, "burst", cfg.upstreamBurst)
	lg.Info("stats", "redis", cfg.statsEnabled, "addr", cfg.statsRedisAddr, "prefix", cfg.statsPrefix, "ttl", cfg.statsTTL)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("server error", "error", err)
	}
}

func mustUpstream(lg *logger.Logger, service, baseURL string, hc *http.Client) *infra.HTTPUpstream {
	c, err := infra.NewHTTPUpstream(service, baseURL, hc)
	if err != nil {
		lg.Fatal("invalid upstream url", "service", service, "error", err)
	}
	return c
}

type config struct {
	listenAddr  string
	logMode     string
	postsURL    string
	commentsURL string
	usersURL    string

	upstreamTimeout     time.Duration
	commentsTimeout     time.Duration
	maxPosts            int
	upstreamConcurrency int
	fanoutLimit         int
	upstreamRPS         float64
	upstreamBurst       int

	concurrencyMax     int
	concurrencyTimeout time.Duration

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.logMode = getenvDefault("LOG_MODE", "dev")
	cfg.postsURL = strings.TrimSpace(os.Getenv("POSTS_API_URL"))
	// comments e users costumam morar no mesmo host que posts (ex: jsonplaceholder)
	cfg.commentsURL = getenvDefault("COMMENTS_API_URL", cfg.postsURL)
	cfg.usersURL = getenvDefault("USERS_API_URL", cfg.postsURL)

	cfg.upstreamTimeout = getenvMillisDefault("UPSTREAM_TIMEOUT_MS", application.DefaultCallTimeout)
	cfg.commentsTimeout = getenvMillisDefault("COMMENTS_TIMEOUT_MS", cfg.upstreamTimeout)
	cfg.maxPosts = getenvIntDefault("MAX_POSTS", application.DefaultMaxPosts)
	cfg.upstreamConcurrency = getenvIntDefault("UPSTREAM_CONCURRENCY", 32)
	cfg.fanoutLimit = getenvIntDefault("FANOUT_LIMIT", application.DefaultFanoutLimit)
	cfg.upstreamRPS = getenvParse("UPSTREAM_RPS", 0.0, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
	cfg.upstreamBurst = getenvIntDefault("UPSTREAM_BURST", 20)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvParse("CONCURRENCY_TIMEOUT", time.Duration(0), time.ParseDuration)

	cfg.statsEnabled = getenvParse("STATS_ENABLED", false, strconv.ParseBool)
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "posts-gateway:upstream")
	cfg.statsTTL = getenvParse("STATS_TTL", 24*time.Hour, time.ParseDuration)

	if cfg.postsURL == "" {
		return config{}, errors.New("POSTS_API_URL is required")
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	if cfg.upstreamTimeout <= 0 || cfg.commentsTimeout <= 0 {
		return config{}, errors.New("UPSTREAM_TIMEOUT_MS and COMMENTS_TIMEOUT_MS must be > 0")
	}
	if cfg.maxPosts <= 0 {
		return config{}, errors.New("MAX_POSTS must be > 0")
	}
	if cfg.upstreamConcurrency <= 0 || cfg.fanoutLimit <= 0 {
		return config{}, errors.New("UPSTREAM_CONCURRENCY and FANOUT_LIMIT must be > 0")
	}
	if cfg.upstreamRPS < 0 {
		return config{}, errors.New("UPSTREAM_RPS must be >= 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// getenvParse lê k com parse; ausente ou inválido devolve def.
func getenvParse[T any](k string, def T, parse func(string) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	parsed, err := parse(v)
	if err != nil {
		return def
	}
	return parsed
}

func getenvIntDefault(k string, def int) int {
	return getenvParse(k, def, strconv.Atoi)
}

// getenvMillisDefault lê um inteiro em milissegundos.
func getenvMillisDefault(k string, def time.Duration) time.Duration {
	return getenvParse(k, def, func(v string) (time.Duration, error) {
		ms, err := strconv.Atoi(v)
		return time.Duration(ms) * time.Millisecond, err
	})
}
