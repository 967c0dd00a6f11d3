package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"fnrelay/gateway/internal/agent"
	transport "fnrelay/gateway/internal/app/http"
	"fnrelay/gateway/internal/config"
	"fnrelay/gateway/internal/domain"
	"fnrelay/gateway/internal/observability"
	"fnrelay/gateway/internal/registry"
	"fnrelay/gateway/internal/service/hooks"
)

// Version is overridden at link time.
var Version = "0.1.0"

const maxRequestBodyBytes = 1 << 20

type Dependencies struct {
	Config    config.Config
	Registry  *registry.Registry
	Hooks     *hooks.Service
	Verifier  observability.Verifier
	Telemetry *observability.Telemetry
	// Agent is nil when no reasoner is configured; /agent/chat then answers 503.
	Agent *agent.Loop
	// LogContext carries the clue logger handed to every request.
	LogContext context.Context
}

type Server struct {
	deps Dependencies

	routerOnce sync.Once
	router     chi.Router
}

func NewServer(deps Dependencies) (*Server, error) {
	if deps.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if deps.Hooks == nil {
		return nil, errors.New("hooks service is required")
	}
	if deps.Verifier == nil {
		return nil, errors.New("signature verifier is required")
	}
	if deps.LogContext == nil {
		deps.LogContext = context.Background()
	}
	return &Server{deps: deps}, nil
}

func (s *Server) Handler() http.Handler {
	return s.Router()
}

// Router builds the chi tree once and returns it.
func (s *Server) Router() chi.Router {
	s.routerOnce.Do(func() {
		s.router = transport.NewRouter(transport.RouterConfig{
			BasePath:   s.deps.Config.BasePath,
			Auth:       observability.SignedKey(s.deps.Verifier),
			Middleware: []func(http.Handler) http.Handler{observability.RequestLogging(s.deps.LogContext)},
		}, transport.Handlers{
			System: transport.SystemHandlers{
				Version: s.handleVersion,
				Healthz: s.handleHealthz,
			},
			Functions: transport.FunctionHandlers{
				ListFunctions:  s.listFunctions,
				InvokeFunction: s.invokeFunction,
			},
			Hooks: transport.HookHandlers{
				GetHook: s.getHook,
				SetHook: s.setHook,
			},
			Agent: transport.AgentHandlers{
				Chat: s.agentChat,
			},
			Debug: transport.DebugHandlers{
				ListRoutes: s.listRoutes,
			},
		})
	})
	return s.router
}

// Routes lists every route the server handles.
func (s *Server) Routes() []domain.RouteInfo {
	return transport.ListRoutes(s.Router())
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) listRoutes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.RoutesResponse{Routes: s.Routes()})
}

// callerContext tags ctx with the authenticated account for implementations.
func callerContext(r *http.Request) context.Context {
	return registry.WithCaller(r.Context(), observability.AccountFromContext(r.Context()))
}

// decodeJSON reads an optional JSON body. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, code int, errCode, message string, details interface{}) {
	writeJSON(w, code, domain.APIErrorBody{Error: domain.APIError{Code: errCode, Message: message, Details: details}})
}
