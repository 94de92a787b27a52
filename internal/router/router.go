package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New registers every route. authMiddleware guards the task and profile
// routes; global middlewares wrap the whole router, outermost first.
func New(handlers Handlers, authMiddleware Middleware, global ...Middleware) fasthttp.RequestHandler {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.POST("/api/auth/register", handlers.Auth.Register)
	r.POST("/api/auth/login", handlers.Auth.Login)

	r.GET("/api/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/api/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.GET("/api/users/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/users/profile", authMiddleware(handlers.Profile.UpdateProfile))

	handler := r.Handler
	for i := len(global) - 1; i >= 0; i-- {
		handler = global[i](handler)
	}
	return handler
}
