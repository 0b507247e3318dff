package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/freelance/core"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind core.Kind) int {
	switch kind {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindChallenge, core.KindSignature, core.KindInactive, core.KindUnauthorized:
		return http.StatusUnauthorized
	case core.KindForbidden:
		return http.StatusForbidden
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict:
		return http.StatusConflict
	case core.KindUpstream, core.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError aborts the request with the public message of err. Causes are logged only.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var e *core.Error
	if !errors.As(err, &e) {
		e = core.NewError(core.KindInternal, "Errore interno del server", err)
	}
	status := StatusFor(e.Kind)

	fields := []zap.Field{
		zap.String("kind", e.Kind.String()),
		zap.Int("status", status),
		zap.String("path", c.FullPath()),
	}
	if e.Err != nil {
		fields = append(fields, zap.NamedError("cause", e.Err))
	}
	switch {
	case errors.Is(e, core.ErrTokenExpired):
		fields = append(fields, zap.String("token", "expired"))
	case errors.Is(e, core.ErrTokenInvalid):
		fields = append(fields, zap.String("token", "invalid"))
	}

	if status >= http.StatusInternalServerError {
		logger.Error(e.Message, fields...)
	} else {
		logger.Info(e.Message, fields...)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: e.Message, Success: false})
}
