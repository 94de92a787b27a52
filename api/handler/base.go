package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

// decodeBody unmarshals the request body into dst. An empty body decodes as {}
// so that missing fields surface as validation errors.
func (h baseHandler) decodeBody(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.respondMessage(ctx, http.StatusBadRequest, domain.ErrInvalidPayload.Message)
		return false
	}
	return true
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"message":"Internal server error"}`)
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondMessage(ctx *fasthttp.RequestCtx, status int, message string) {
	h.respondJSON(ctx, status, transport.NewMessage(message))
}

// respondError maps domain errors to their status and message. Anything else
// is logged and answered with the operation's generic failure message.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error, failure string) {
	status, ok := mapError(err)
	if !ok {
		logger.For(stdCtx, h.logger).Error(failure,
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
		h.respondMessage(ctx, status, failure)
		return
	}

	var dErr *domain.Error
	if errors.As(err, &dErr) {
		h.respondMessage(ctx, status, dErr.Message)
		return
	}
	h.respondMessage(ctx, status, failure)
}

// mapError returns the HTTP status for err and whether err is an expected
// domain failure.
func mapError(err error) (int, bool) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, true
	case domain.IsDomainError(err, domain.ErrCodeInvalid),
		domain.IsDomainError(err, domain.ErrCodeConflict),
		domain.IsDomainError(err, domain.ErrCodeInvalidCredentials):
		return http.StatusBadRequest, true
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, true
	default:
		return http.StatusInternalServerError, false
	}
}
