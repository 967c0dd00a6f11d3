package transport

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
)

type AgentHandlers struct {
	Chat stdhttp.HandlerFunc
}

type DebugHandlers struct {
	ListRoutes stdhttp.HandlerFunc
}

func registerAgentRoutes(api chi.Router, handlers AgentHandlers) {
	api.Post("/agent/chat", mustHandler("agent-chat", handlers.Chat))
}

func registerDebugRoutes(api chi.Router, handlers DebugHandlers) {
	api.Get("/debug/routes", mustHandler("list-routes", handlers.ListRoutes))
}
