// Package api exposes the scoring service over HTTP.
package api

import (
	"errors"
	"net/http"

	"CoinScope/internal/domain/models"
	"CoinScope/internal/usecase"
	xhttp "CoinScope/pkg/http"
	xlogger "CoinScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScoresHandler serves the valuation endpoints.
type ScoresHandler struct {
	reconciler *usecase.Reconciler
	logger     *xlogger.Logger
}

// NewScoresHandler creates the HTTP handler for the scoring surface.
func NewScoresHandler(reconciler *usecase.Reconciler, logger *xlogger.Logger) *ScoresHandler {
	return &ScoresHandler{reconciler: reconciler, logger: logger}
}

// RegisterRoutes mounts the API routes on the Echo instance.
func (h *ScoresHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/cryptos", h.Cryptos)
	e.GET("/analyze/:symbol", h.Analyze)
	e.GET("/history/:symbol", h.History)
}

// Root reports service liveness with a human-readable status line.
func (h *ScoresHandler) Root(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{
		"status": "CoinScope running",
	})
}

// Health is the probe endpoint.
func (h *ScoresHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "healthy"})
}

type cryptosRequest struct {
	Refresh bool `query:"refresh"`
}

// Cryptos returns the scored universe, served from the score store unless the
// caller forces a recomputation with ?refresh=true.
func (h *ScoresHandler) Cryptos(c echo.Context) error {
	var req cryptosRequest
	if verrs := xhttp.ReadAndValidateRequest(c, &req); verrs != nil {
		return xhttp.BadRequestResponse(c, verrs)
	}

	result := h.reconciler.Cryptos(c.Request().Context(), req.Refresh)
	return xhttp.SuccessResponse(c, result)
}

type analyzeRequest struct {
	Symbol string `param:"symbol" validate:"required"`
}

// Analyze computes a fresh score for a single symbol on demand.
func (h *ScoresHandler) Analyze(c echo.Context) error {
	var req analyzeRequest
	if verrs := xhttp.ReadAndValidateRequest(c, &req); verrs != nil {
		return xhttp.BadRequestResponse(c, verrs)
	}

	score, err := h.reconciler.Analyze(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.scoreError(c, req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, score)
}

type historyRequest struct {
	Symbol string `param:"symbol" validate:"required"`
	Days   int    `query:"days" default:"365" validate:"gte=30,lte=1460"`
}

// History returns a daily close-price series for charting.
func (h *ScoresHandler) History(c echo.Context) error {
	var req historyRequest
	if verrs := xhttp.ReadAndValidateRequest(c, &req); verrs != nil {
		return xhttp.BadRequestResponse(c, verrs)
	}

	points, err := h.reconciler.History(c.Request().Context(), req.Symbol, req.Days)
	if err != nil {
		return h.scoreError(c, req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol":  h.reconciler.Normalize(req.Symbol),
		"days":    req.Days,
		"history": points,
	})
}

func (h *ScoresHandler) scoreError(c echo.Context, symbol string, err error) error {
	h.logger.Warn("request failed",
		xlogger.String("symbol", symbol), xlogger.Error(err))

	switch {
	case errors.Is(err, models.ErrInsufficientHistory):
		return c.JSON(http.StatusNotFound, xhttp.ErrorBody{Error: err.Error(), Symbol: symbol})
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return c.JSON(http.StatusBadGateway, xhttp.ErrorBody{Error: err.Error(), Symbol: symbol})
	default:
		return c.JSON(http.StatusInternalServerError, xhttp.ErrorBody{Error: err.Error(), Symbol: symbol})
	}
}
