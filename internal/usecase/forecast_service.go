package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"CoinCast/internal/domain/models"
	domrepo "CoinCast/internal/domain/repository"
	domsvc "CoinCast/internal/domain/service"
	"CoinCast/internal/service/cache"
	xhttp "CoinCast/pkg/http"
	applogger "CoinCast/pkg/logger"
	"CoinCast/pkg/metrics"

	"github.com/google/uuid"
)

// ForecastService answers prediction requests: window extraction, model
// lookup, multi-step inference, then caching, metrics and event publishing.
type ForecastService struct {
	extractor *WindowExtractor
	engine    *ForecastEngine
	registry  domsvc.ModelRegistry
	cache     cache.BytesCache
	cacheTTL  time.Duration
	publisher domrepo.ForecastPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
	now       func() time.Time
}

type ServiceOption func(*ForecastService)

// WithCache enables result caching for ttl.
func WithCache(c cache.BytesCache, ttl time.Duration) ServiceOption {
	return func(s *ForecastService) {
		if c != nil {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

func WithPublisher(p domrepo.ForecastPublisher) ServiceOption {
	return func(s *ForecastService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithMetrics(m domrepo.Metrics) ServiceOption {
	return func(s *ForecastService) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithLogger(l *applogger.Logger) ServiceOption {
	return func(s *ForecastService) {
		if l != nil {
			s.l = l
		}
	}
}

func NewForecastService(extractor *WindowExtractor, engine *ForecastEngine, registry domsvc.ModelRegistry, opts ...ServiceOption) *ForecastService {
	s := &ForecastService{
		extractor: extractor,
		engine:    engine,
		registry:  registry,
		cache:     cache.Nop{},
		publisher: nopPublisher{},
		metrics:   metrics.Nop{},
		l:         applogger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Predict returns horizon predicted closes. Errors are *xhttp.AppError.
func (s *ForecastService) Predict(ctx context.Context, req models.PredictRequest) (*models.PredictResponse, error) {
	prices, err := s.run(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	return &models.PredictResponse{PredictedPrices: prices}, nil
}

// PredictStream is Predict with onStep called for every step in order.
// Cached results are replayed through onStep as well.
func (s *ForecastService) PredictStream(ctx context.Context, req models.PredictRequest, onStep StepFunc) (*models.PredictResponse, error) {
	prices, err := s.run(ctx, req, onStep)
	if err != nil {
		return nil, err
	}
	return &models.PredictResponse{PredictedPrices: prices}, nil
}

func (s *ForecastService) Cryptos() []models.Crypto { return models.Cryptos() }

func (s *ForecastService) Models() []models.ModelInfo { return s.registry.Models() }

func (s *ForecastService) WindowSize() int { return s.extractor.Size() }

func (s *ForecastService) run(ctx context.Context, req models.PredictRequest, onStep StepFunc) ([]float64, error) {
	horizon := req.HorizonOrDefault()
	if !models.IsKnownCrypto(req.Crypto) {
		return nil, xhttp.UnprocessableError("crypto", fmt.Sprintf("unsupported crypto %q", req.Crypto))
	}
	if horizon < 1 {
		return nil, xhttp.UnprocessableError("horizon", "horizon must be greater than or equal to 1").WithParam("min", 1)
	}
	log := s.l.With(
		applogger.String("crypto", req.Crypto),
		applogger.String("model", req.Model),
		applogger.Int("horizon", horizon),
	)
	key := cache.ForecastKey(req.Crypto, req.Model, horizon)

	if prices, ok := s.cached(ctx, key, horizon, log); ok {
		if onStep != nil {
			for i, p := range prices {
				onStep(models.ForecastStep{Step: i + 1, Price: p})
			}
		}
		s.finish(ctx, req, horizon, prices, true, log)
		return prices, nil
	}

	p, err := s.registry.Resolve(models.ModelID(req.Model))
	if err != nil {
		s.metrics.RecordError("unknown_model")
		log.Error("model resolve failed", applogger.Error(err))
		return nil, xhttp.InternalError("model unavailable").WithError(err)
	}

	start := s.now()
	window, err := s.extractor.Extract(ctx, req.Crypto)
	if err != nil {
		if errors.Is(err, ErrInsufficientHistory) {
			s.metrics.RecordError("insufficient_history")
			return nil, xhttp.BadRequestError("Not enough data for " + req.Crypto).WithError(err)
		}
		s.metrics.RecordError("history")
		log.Error("window extraction failed", applogger.Error(err))
		return nil, xhttp.InternalError("history unavailable").WithError(err)
	}
	s.metrics.RecordLatency("extract", s.now().Sub(start).Seconds())

	start = s.now()
	prices, err := s.engine.Forecast(ctx, window, p, horizon, onStep)
	if err != nil {
		s.metrics.RecordError("inference")
		log.Error("forecast failed", applogger.Error(err))
		return nil, xhttp.InternalError("inference failed").WithError(err)
	}
	elapsed := s.now().Sub(start)
	s.metrics.RecordLatency("forecast", elapsed.Seconds())
	log.Debug("forecast done", applogger.Duration("duration_ms", elapsed), applogger.Floats("prices", prices))

	if b, err := json.Marshal(prices); err == nil {
		if err := s.cache.SetBytes(ctx, key, b, s.cacheTTL); err != nil {
			s.metrics.RecordError("cache")
			log.Warn("cache store failed", applogger.Error(err))
		}
	}
	s.finish(ctx, req, horizon, prices, false, log)
	return prices, nil
}

func (s *ForecastService) cached(ctx context.Context, key string, horizon int, log *applogger.Logger) ([]float64, bool) {
	if _, nop := s.cache.(cache.Nop); nop {
		return nil, false
	}
	b, ok, err := s.cache.GetBytes(ctx, key)
	if err != nil {
		s.metrics.RecordError("cache")
		log.Warn("cache lookup failed", applogger.Error(err))
		return nil, false
	}
	var prices []float64
	if ok {
		if err := json.Unmarshal(b, &prices); err != nil || len(prices) != horizon {
			ok = false
		}
	}
	s.metrics.RecordCache(ok)
	return prices, ok
}

// finish records metrics and publishes the event. Publish failures are
// logged only; the caller already has its answer.
func (s *ForecastService) finish(ctx context.Context, req models.PredictRequest, horizon int, prices []float64, cached bool, log *applogger.Logger) {
	s.metrics.RecordForecast(req.Crypto, req.Model, horizon)
	s.metrics.RecordLastPrice(req.Crypto, req.Model, prices[len(prices)-1])

	ev := &models.ForecastEvent{
		ID:        uuid.NewString(),
		Crypto:    req.Crypto,
		Model:     req.Model,
		Horizon:   horizon,
		Prices:    prices,
		Cached:    cached,
		CreatedAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.metrics.RecordError("publish")
		log.Warn("forecast event publish failed", applogger.String("event_id", ev.ID), applogger.Error(err))
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *models.ForecastEvent) error { return nil }

func (nopPublisher) Close() error { return nil }
