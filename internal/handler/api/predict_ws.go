package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"CoinCast/internal/domain/models"
	xhttp "CoinCast/pkg/http"
	xlogger "CoinCast/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait      = 5 * time.Second
	wsIdleWait       = 60 * time.Second
	wsMaxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// any origin, same as the HTTP CORS policy
	CheckOrigin: func(*http.Request) bool { return true },
}

// PredictWS serves GET /ws/predict. Each text message is a predict request;
// the reply is one {"step","price"} frame per step followed by the full
// {"predicted_prices"} frame, or a {"detail"} frame on error. Every message
// takes a rate limit token, like a POST /predict call.
func (h *PredictEchoHandler) PredictWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxMessageSize)
	ctx := c.Request().Context()
	clientIP := c.RealIP()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleWait))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("websocket closed", xlogger.Error(err))
			}
			return nil
		}

		if !h.limiter.Allow(clientIP) {
			h.logger.Warn("rate limited", xlogger.String("remote_ip", clientIP), xlogger.String("route", c.Path()))
			if !h.writeWS(conn, xhttp.DetailResponse{Detail: "Too many requests"}) {
				return nil
			}
			continue
		}

		req := &models.PredictRequest{}
		if err := json.Unmarshal(msg, req); err != nil {
			if !h.writeWS(conn, xhttp.DetailResponse{Detail: []xhttp.ValidationError{{Code: "ERR_INVALID_BODY", Message: err.Error()}}}) {
				return nil
			}
			continue
		}
		if verr := xhttp.ValidateStruct(ctx, req); verr != nil {
			if !h.writeWS(conn, xhttp.DetailResponse{Detail: verr}) {
				return nil
			}
			continue
		}

		writeOK := true
		res, err := h.svc.PredictStream(ctx, *req, func(s models.ForecastStep) {
			if writeOK {
				writeOK = h.writeWS(conn, s)
			}
		})
		if !writeOK {
			return nil
		}
		if err != nil {
			if !h.writeWS(conn, xhttp.DetailResponse{Detail: wsErrorDetail(err)}) {
				return nil
			}
			continue
		}
		if !h.writeWS(conn, res) {
			return nil
		}
	}
}

func (h *PredictEchoHandler) writeWS(conn *websocket.Conn, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(v); err != nil {
		h.logger.Warn("websocket write failed", xlogger.Error(err))
		return false
	}
	return true
}

func wsErrorDetail(err error) any {
	var appErr *xhttp.AppError
	if xhttp.StatusOf(err) < http.StatusInternalServerError && errors.As(err, &appErr) {
		return appErr.Message
	}
	return http.StatusText(http.StatusInternalServerError)
}
