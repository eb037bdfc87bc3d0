package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"stock-market-service/api"
	"stock-market-service/middleware/ratelimit"
	"stock-market-service/middleware/ratelimit/domain"
	"stock-market-service/middleware/ratelimit/infra"
	"stock-market-service/middleware/requestlog"
	stocksapp "stock-market-service/stocks/application"
	stocksinfra "stock-market-service/stocks/infra"
	usersapp "stock-market-service/users/application"
	usersdomain "stock-market-service/users/domain"
	usersinfra "stock-market-service/users/infra"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env é opcional; variáveis de ambiente reais têm precedência
	_ = godotenv.Load()

	cfg, err := readConfig()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.logLevel)
	if err != nil {
		logrus.Fatalf("invalid LOG_LEVEL %q: %v", cfg.logLevel, err)
	}
	log.SetLevel(level)
	if cfg.environment != "" {
		log.AddHook(&envHook{environment: cfg.environment})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	directory, closeDB, err := openDirectory(ctx, cfg)
	if err != nil {
		log.Fatalf("users directory error: %v", err)
	}
	defer closeDB()

	store := infra.NewWindowStore(cfg.maxPerMinute, cfg.maxPerSecond,
		infra.WithCleanupEvery(cfg.rateCleanupEvery))
	store.StartJanitor(ctx)

	var statsStore domain.StatsStore
	if cfg.rateStatsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.rateStatsRedisAddr,
			Password: cfg.rateStatsRedisPassword,
			DB:       cfg.rateStatsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancelPing()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.rateStatsPrefix),
			infra.WithStatsTTL(cfg.rateStatsTTL),
			infra.WithStatsBucket(cfg.rateStatsBucket),
			infra.WithStatsTrackKeys(cfg.rateStatsTrackKeys),
		)
	}

	clientOpts := []stocksinfra.ClientOption{}
	if cfg.alphaBaseURL != "" {
		clientOpts = append(clientOpts, stocksinfra.WithBaseURL(cfg.alphaBaseURL))
	}
	if cfg.upstreamPerMinute > 0 {
		clientOpts = append(clientOpts, stocksinfra.WithThrottle(cfg.upstreamPerMinute))
	}
	quotes := stocksapp.Service{
		Fetcher: stocksinfra.NewAlphaVantageClient(cfg.alphaAPIKey, clientOpts...),
	}
	signup := usersapp.SignupService{Directory: directory}

	// rate limit aplicado por rota, no registro (a raiz não é limitada)
	limited := ratelimit.Middleware(ratelimit.Options{
		Store:               store,
		Stats:               statsStore,
		KeyHeader:           cfg.rateKeyHeader,
		TrustXForwardedFor:  cfg.trustXFF,
		RejectStatus:        http.StatusTooManyRequests,
		RetryAfter:          cfg.retryAfter,
		AddRateLimitHeaders: cfg.addHeaders,
	})

	mux := http.NewServeMux()
	mux.Handle("POST /signup", limited(api.SignupHandler(signup, log)))
	mux.Handle("GET /stock-info", limited(api.StockInfoHandler(directory, quotes, log)))
	mux.Handle("GET /{$}", api.IndexHandler(cfg.redirectURL))

	h := http.Handler(mux)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
	})(h)
	h = requestlog.Middleware(log)(h)

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
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("stock market service listening on %s", cfg.listenAddr)
	log.Infof("rate: perMinute=%d perSecond=%d keyHeader=%q trustXFF=%v", cfg.maxPerMinute, cfg.maxPerSecond, cfg.rateKeyHeader, cfg.trustXFF)
	log.Infof("rate-stats: enabled=%v redisAddr=%q bucket=%q ttl=%s trackKeys=%v", cfg.rateStatsEnabled, cfg.rateStatsRedisAddr, cfg.rateStatsBucket, cfg.rateStatsTTL, cfg.rateStatsTrackKeys)
	log.Infof("concurrency: max=%d acquireTimeout=%s", cfg.concurrencyMax, cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

// envHook carimba o ambiente (dev/staging/prod) em toda entrada de log.
type envHook struct {
	environment string
}

func (h *envHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *envHook) Fire(e *logrus.Entry) error {
	e.Data["environment"] = h.environment
	return nil
}

// openDirectory escolhe a implementação do diretório de usuários.
// DB_URI vazio ou "memory" sobe o diretório em memória (desenvolvimento);
// qualquer outro valor é tratado como DSN do Postgres.
func openDirectory(ctx context.Context, cfg config) (usersdomain.Directory, func(), error) {
	if cfg.dbURI == "" || cfg.dbURI == "memory" {
		return usersinfra.NewMemoryDirectory(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.dbURI)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	dir := usersinfra.NewPostgresDirectory(db)
	if err := dir.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return dir, func() { _ = db.Close() }, nil
}

type config struct {
	listenAddr  string
	environment string
	logLevel    string
	redirectURL string

	dbURI string

	alphaAPIKey       string
	alphaBaseURL      string
	upstreamPerMinute int

	maxPerMinute     int
	maxPerSecond     int
	rateKeyHeader    string
	trustXFF         bool
	retryAfter       time.Duration
	addHeaders       bool
	rateCleanupEvery time.Duration

	concurrencyMax     int
	concurrencyTimeout time.Duration

	rateStatsEnabled       bool
	rateStatsRedisAddr     string
	rateStatsRedisPassword string
	rateStatsRedisDB       int
	rateStatsPrefix        string
	rateStatsTTL           time.Duration
	rateStatsBucket        string
	rateStatsTrackKeys     bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.environment = getenvDefault("ENVIRONMENT", "development")
	cfg.logLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.redirectURL = getenvDefault("REDIRECT_URL", "https://github.com/ivanliedtke/stock-market-service")

	cfg.dbURI = os.Getenv("DB_URI")

	cfg.alphaAPIKey = os.Getenv("ALPHAVANTAGE_API_KEY")
	cfg.alphaBaseURL = os.Getenv("ALPHAVANTAGE_URL")
	cfg.upstreamPerMinute = getenvIntDefault("UPSTREAM_PER_MINUTE", 0)

	cfg.maxPerMinute = getenvIntDefault("MAX_PER_MINUTE", 10)
	cfg.maxPerSecond = getenvIntDefault("MAX_PER_SECOND", 1)
	cfg.rateKeyHeader = os.Getenv("RATE_KEY_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.retryAfter = getenvDurationDefault("RETRY_AFTER", 1*time.Second)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)
	cfg.rateCleanupEvery = getenvDurationDefault("RATE_CLEANUP_EVERY", 0)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.rateStatsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.rateStatsRedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", "")
	cfg.rateStatsRedisPassword = os.Getenv("RATE_STATS_REDIS_PASSWORD")
	cfg.rateStatsRedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", 0)
	cfg.rateStatsPrefix = getenvDefault("RATE_STATS_PREFIX", "stockmarket:ratelimit")
	cfg.rateStatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.rateStatsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	if cfg.alphaAPIKey == "" {
		return config{}, errors.New("ALPHAVANTAGE_API_KEY is required")
	}
	if cfg.maxPerMinute <= 0 {
		return config{}, errors.New("MAX_PER_MINUTE must be > 0")
	}
	if cfg.maxPerSecond <= 0 {
		return config{}, errors.New("MAX_PER_SECOND must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.rateStatsEnabled && strings.TrimSpace(cfg.rateStatsRedisAddr) == "" {
		return config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
