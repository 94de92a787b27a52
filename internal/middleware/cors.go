package middleware

import (
	"github.com/AdhityaRamadhanus/fasthttpcors"
	"github.com/valyala/fasthttp"
)

var (
	corsAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsAllowHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
)

// CORS lets the single-page frontend call the API from another origin.
// Preflight requests never reach the router and are answered with 204.
func CORS(allowedOrigins []string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	cors := fasthttpcors.NewCorsHandler(fasthttpcors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: corsAllowMethods,
		AllowedHeaders: corsAllowHeaders,
		AllowMaxAge:    3600,
	})

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		handler := cors.CorsMiddleware(next)
		return func(ctx *fasthttp.RequestCtx) {
			handler(ctx)
			if ctx.IsOptions() {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
			}
		}
	}
}
