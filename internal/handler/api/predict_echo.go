package api

import (
	"net/http"
	"time"

	"CoinCast/internal/domain/models"
	"CoinCast/internal/service/ratelimit"
	"CoinCast/internal/usecase"
	xhttp "CoinCast/pkg/http"
	xlogger "CoinCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictEchoHandler serves the forecasting API.
type PredictEchoHandler struct {
	logger    *xlogger.Logger
	svc       *usecase.ForecastService
	limiter   *ratelimit.Limiter
	startedAt time.Time
}

func NewPredictEchoHandler(logger *xlogger.Logger, svc *usecase.ForecastService, limiter *ratelimit.Limiter, maxHorizon int) (*PredictEchoHandler, error) {
	if err := registerValidators(maxHorizon); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PredictEchoHandler{logger: logger, svc: svc, limiter: limiter, startedAt: time.Now()}, nil
}

func (h *PredictEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/predict", h.Predict, h.rateLimit)
	e.GET("/ws/predict", h.PredictWS)
	e.GET("/cryptos", h.Cryptos)
	e.GET("/models", h.Models)
	e.GET("/health", h.Health)
}

// Predict handles POST /predict {crypto, model, horizon}.
func (h *PredictEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}

	res, err := h.svc.Predict(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("predict usecase error",
			xlogger.String("crypto", req.Crypto),
			xlogger.String("model", req.Model),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *PredictEchoHandler) Cryptos(c echo.Context) error {
	list := h.svc.Cryptos()
	return xhttp.ListResponse(c, list, int64(len(list)))
}

func (h *PredictEchoHandler) Models(c echo.Context) error {
	list := h.svc.Models()
	return xhttp.ListResponse(c, list, int64(len(list)))
}

type healthResponse struct {
	Status     string `json:"status"`
	Models     int    `json:"models"`
	Cryptos    int    `json:"cryptos"`
	WindowSize int    `json:"window_size"`
	Uptime     string `json:"uptime"`
}

func (h *PredictEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, healthResponse{
		Status:     "ok",
		Models:     len(h.svc.Models()),
		Cryptos:    len(h.svc.Cryptos()),
		WindowSize: h.svc.WindowSize(),
		Uptime:     time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

func (h *PredictEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP()) {
			h.logger.Warn("rate limited", xlogger.String("remote_ip", c.RealIP()), xlogger.String("route", c.Path()))
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("Too many requests"))
		}
		return next(c)
	}
}
