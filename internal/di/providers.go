package di

import (
	"context"
	"fmt"
	"time"

	"CoinCast/internal/domain/repository"
	"CoinCast/internal/handler/api"
	"CoinCast/internal/inference/artifacts"
	internalrepo "CoinCast/internal/repository"
	"CoinCast/internal/service/cache"
	"CoinCast/internal/service/ratelimit"
	"CoinCast/internal/usecase"
	pkgch "CoinCast/pkg/clickhouse"
	"CoinCast/pkg/config"
	xhttp "CoinCast/pkg/http"
	pkgkafka "CoinCast/pkg/kafka"
	applogger "CoinCast/pkg/logger"
	"CoinCast/pkg/metrics"
	"CoinCast/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	startupTimeout  = 10 * time.Second
	janitorInterval = time.Minute
	limiterIdle     = 10 * time.Minute
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideArtifacts loads the scaler and all models. Any failure is fatal.
func ProvideArtifacts(cfg *config.Config, l *applogger.Logger) (*artifacts.Store, error) {
	st, err := artifacts.Load(cfg.Forecast.ArtifactsDir,
		artifacts.WithLogger(l),
		artifacts.WithWindowSize(cfg.Forecast.WindowSize),
	)
	if err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}
	return st, nil
}

// ProvideClickHouseClient connects to ClickHouse when it is the history
// source; otherwise it returns a nil client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.History.Source != "clickhouse" {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecution),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := client.InitSchema(ctx, pkgch.DailyClosesSchema(cfg.History.Table)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvidePriceHistory selects the CSV or ClickHouse history source.
func ProvidePriceHistory(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.PriceHistory, error) {
	switch cfg.History.Source {
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("price history: clickhouse client not configured")
		}
		h := internalrepo.NewCHPriceHistory(ch, cfg.History.Table)
		h.SetLogger(l)
		return h, nil
	default:
		h := internalrepo.NewCSVPriceHistory(cfg.History.DataDir)
		h.SetLogger(l)
		return h, nil
	}
}

// ProvideForecastCache builds the configured forecast cache backend.
func ProvideForecastCache(cfg *config.Config) (cache.BytesCache, func(), error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewTTLCache(), func() {}, nil
	case "redis":
		rc := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("forecast cache: %w", err)
		}
		return rc, func() { _ = rc.Close() }, nil
	default:
		return cache.Nop{}, func() {}, nil
	}
}

// ProvideForecastPublisher creates the Kafka event publisher, or a no-op one
// when Kafka is disabled.
func ProvideForecastPublisher(cfg *config.Config) (repository.ForecastPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopForecastPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaForecastPublisher(producer)
	return pub, func() { _ = pub.Close() }, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New(prometheus.DefaultRegisterer)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideWindowExtractor creates the window extractor use case.
func ProvideWindowExtractor(history repository.PriceHistory, st *artifacts.Store, cfg *config.Config, l *applogger.Logger) *usecase.WindowExtractor {
	w := usecase.NewWindowExtractor(history, st.Scaler, cfg.Forecast.WindowSize)
	w.SetLogger(l)
	return w
}

func ProvideForecastEngine(st *artifacts.Store) *usecase.ForecastEngine {
	return usecase.NewForecastEngine(st.Scaler)
}

// ProvideForecastService creates the forecast use case.
func ProvideForecastService(
	extractor *usecase.WindowExtractor,
	engine *usecase.ForecastEngine,
	st *artifacts.Store,
	c cache.BytesCache,
	pub repository.ForecastPublisher,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.ForecastService {
	return usecase.NewForecastService(extractor, engine, st.Registry,
		usecase.WithCache(c, cfg.Cache.TTL),
		usecase.WithPublisher(pub),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
	)
}

func ProvidePredictHandler(l *applogger.Logger, svc *usecase.ForecastService, limiter *ratelimit.Limiter, cfg *config.Config) (*api.PredictEchoHandler, error) {
	h, err := api.NewPredictEchoHandler(l, svc, limiter, cfg.Forecast.MaxHorizon)
	if err != nil {
		return nil, fmt.Errorf("predict handler: %w", err)
	}
	return h, nil
}

// ProvideHTTPServer creates the Echo server with every route registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.PredictEchoHandler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer([]xhttp.Handler{h},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithMetrics(metricsPath, prometheus.DefaultRegisterer, prometheus.DefaultGatherer),
		xhttp.WithLogger(l),
	)
}

// ProvideApp assembles the application with its housekeeping loops.
func ProvideApp(l *applogger.Logger, srv *xhttp.Server, c cache.BytesCache, limiter *ratelimit.Limiter) *server.App {
	var tasks []server.Task
	if ttl, ok := c.(*cache.TTLCache); ok {
		tasks = append(tasks, func(ctx context.Context) { ttl.RunJanitor(ctx, janitorInterval) })
	}
	if limiter.Enabled() {
		tasks = append(tasks, func(ctx context.Context) {
			t := time.NewTicker(limiterIdle)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					if n := limiter.Prune(limiterIdle); n > 0 {
						l.Debug("rate limiter pruned", applogger.Int("buckets", n))
					}
				}
			}
		})
	}
	return server.New(l, srv, tasks...)
}
