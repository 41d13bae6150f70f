package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"github.com/BartekB-it/prawda-w-sieci-verifier/adapters/events"
	"github.com/BartekB-it/prawda-w-sieci-verifier/adapters/prober"
	"github.com/BartekB-it/prawda-w-sieci-verifier/adapters/store"
	"github.com/BartekB-it/prawda-w-sieci-verifier/core"
	"github.com/BartekB-it/prawda-w-sieci-verifier/metrics"
	"github.com/BartekB-it/prawda-w-sieci-verifier/ports"
	"github.com/BartekB-it/prawda-w-sieci-verifier/service"
	httptransport "github.com/BartekB-it/prawda-w-sieci-verifier/transport/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	wmLogger := watermill.NewSlogLogger(logger)

	addr := envOr("ADDR", ":8080")
	baseURL := envOr("PUBLIC_BASE_URL", "http://localhost:8080")
	domainsFile := envOr("DOMAINS_FILE", "domains.json")
	ttl := envDurationSeconds("SESSION_TTL", core.DefaultSessionTTL)

	mode := core.PolicyMode(envOr("TRUST_POLICY", string(core.PolicyGovFallback)))
	if mode != core.PolicyGovFallback && mode != core.PolicyWhitelistOnly {
		logger.Error("unknown TRUST_POLICY", slog.String("value", string(mode)))
		os.Exit(1)
	}

	domains, err := loadDomains(domainsFile)
	if err != nil {
		// the gov-fallback policy still works with an empty list; the
		// whitelist-only policy will reject everything until fixed
		logger.Warn("could not load trusted domains, starting with an empty list",
			slog.String("file", domainsFile),
			slog.Any("error", err))
	}
	policy := core.NewTrustPolicy(domains, mode)
	logger.Info("trust policy loaded",
		slog.String("mode", string(mode)),
		slog.Int("domains", policy.Len()))

	var (
		sessions  ports.SessionStore
		publisher message.Publisher
	)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Error("failed to parse Redis URL", slog.Any("error", err))
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			wmLogger,
		)
		if err != nil {
			logger.Error("failed to create Redis publisher", slog.Any("error", err))
			os.Exit(1)
		}

		sessions = store.NewRedisStore(redisClient, ttl)
		logger.Info("using redis session store")
	} else {
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		sessions = store.NewMemoryStore(ttl)
		logger.Info("using in-memory session store")
	}

	m := metrics.New()
	svc := service.NewVerifyService(
		sessions,
		prober.New(),
		events.NewWatermillPublisher(publisher),
		policy,
		m,
		logger,
		ttl,
		baseURL,
	)

	router := httptransport.SetupRouter(svc, m)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		logger.Info("starting verifier", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// loadDomains reads the administrator-supplied trusted-domain list. The
// result feeds core.NewTrustPolicy once and is never reloaded.
func loadDomains(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var domains []string
	if err := json.Unmarshal(raw, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
