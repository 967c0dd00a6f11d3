package transport

import (
	"fmt"
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	System    SystemHandlers
	Functions FunctionHandlers
	Hooks     HookHandlers
	Agent     AgentHandlers
	Debug     DebugHandlers
}

type SystemHandlers struct {
	Version stdhttp.HandlerFunc
	Healthz stdhttp.HandlerFunc
}

type RouterConfig struct {
	// BasePath prefixes every authenticated route. Empty mounts them at root.
	BasePath string
	// Auth guards the routes under BasePath. Nil leaves them open.
	Auth func(stdhttp.Handler) stdhttp.Handler
	// Middleware runs for every request, public routes included.
	Middleware []func(stdhttp.Handler) stdhttp.Handler
}

func NewRouter(cfg RouterConfig, handlers Handlers) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.Middleware {
		r.Use(mw)
	}

	r.Get("/version", mustHandler("version", handlers.System.Version))
	r.Get("/healthz", mustHandler("healthz", handlers.System.Healthz))

	protected := func(api chi.Router) {
		if cfg.Auth != nil {
			api.Use(cfg.Auth)
		}
		registerFunctionRoutes(api, handlers.Functions)
		registerHookRoutes(api, handlers.Hooks)
		registerAgentRoutes(api, handlers.Agent)
		registerDebugRoutes(api, handlers.Debug)
	}
	if cfg.BasePath == "" {
		r.Group(protected)
	} else {
		r.Route(cfg.BasePath, protected)
	}
	return r
}

func mustHandler(name string, handler stdhttp.HandlerFunc) stdhttp.HandlerFunc {
	if handler == nil {
		panic(fmt.Sprintf("transport: handler %q is not configured", name))
	}
	return handler
}
