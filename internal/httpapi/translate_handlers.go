package httpapi

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/mtroute/internal/auth"
	payloadschema "horse.fit/mtroute/internal/schema"
	"horse.fit/mtroute/internal/translation"
)

func (s *Server) handleTranslate(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}

	req, err := payloadschema.ValidateTranslateRequest(body)
	if err != nil {
		var validationErr *payloadschema.ValidationError
		if errors.As(err, &validationErr) {
			return failValidation(c, validationErr.Fields)
		}
		s.logger.Error().Err(err).Msg("validate translate request failed")
		return serverError(c, "Failed to validate request", nil)
	}

	result, err := s.translator.Execute(c.Request().Context(), translation.Request{
		Text:         req.Q,
		Source:       req.Source,
		Target:       req.Target,
		MaxNewTokens: req.MaxNewTokensOrZero(),
		Debug:        req.Debug,
	})
	if err != nil {
		return s.translateFailure(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// translateFailure maps the orchestrator error taxonomy onto HTTP statuses.
func (s *Server) translateFailure(c echo.Context, err error) error {
	var (
		validationErr *translation.ValidationError
		routeErr      *translation.RouteError
		backendErr    *translation.BackendError
	)

	switch {
	case errors.As(err, &validationErr):
		return failValidation(c, map[string]string{validationErr.Field: validationErr.Message})
	case errors.As(err, &routeErr):
		return fail(c, http.StatusBadRequest, routeErr.Error(), map[string]string{
			"source": routeErr.Source.String(),
			"target": routeErr.Target.String(),
		})
	case errors.As(err, &backendErr):
		s.logger.Error().
			Err(err).
			Str("backend", backendErr.Backend.String()).
			Str("model", backendErr.Model).
			Strs("route", backendErr.Route).
			Msg("translate request failed")
		return serverError(c, backendFailureMessage(backendErr), map[string]any{
			"backend": backendErr.Backend.String(),
			"model":   backendErr.Model,
			"route":   backendErr.Route,
		})
	default:
		s.logger.Error().Err(err).Msg("translate request failed")
		return serverError(c, "Translation failed", nil)
	}
}

func backendFailureMessage(err *translation.BackendError) string {
	if errors.Is(err, translation.ErrBackendLoad) {
		return fmt.Sprintf("Failed to load backend %s", err.Backend)
	}
	return fmt.Sprintf("Backend %s failed to translate", err.Backend)
}

// handleDebugModel runs exactly one backend. Every failure, including bad
// query parameters, is reported as 500.
func (s *Server) handleDebugModel(c echo.Context) error {
	text := c.QueryParam("text")
	if strings.TrimSpace(text) == "" {
		return serverError(c, "text is required", nil)
	}

	maxNewTokens, err := parsePositiveInt(c.QueryParam("max_new_tokens"), 0, 1, math.MaxInt32)
	if err != nil {
		return serverError(c, "max_new_tokens "+err.Error(), nil)
	}

	result, err := s.translator.TranslateDirect(c.Request().Context(), translation.DirectRequest{
		Text:         text,
		Source:       c.QueryParam("src"),
		Target:       c.QueryParam("tgt"),
		MaxNewTokens: maxNewTokens,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("src", c.QueryParam("src")).
			Str("tgt", c.QueryParam("tgt")).
			Msg("debug model request failed")
		return serverError(c, err.Error(), nil)
	}

	return success(c, result)
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}

// requireDebugToken rejects /debug_model calls without the configured bearer
// token. It is a no-op when no token hash is configured.
func (s *Server) requireDebugToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.opts.DebugModelTokenHash == "" {
				return next(c)
			}
			token := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !auth.VerifyToken(token, s.opts.DebugModelTokenHash) {
				return fail(c, http.StatusUnauthorized, "Authentication required", nil)
			}
			return next(c)
		}
	}
}
