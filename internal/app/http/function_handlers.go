package transport

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
)

type FunctionHandlers struct {
	ListFunctions  stdhttp.HandlerFunc
	InvokeFunction stdhttp.HandlerFunc
}

type HookHandlers struct {
	GetHook stdhttp.HandlerFunc
	SetHook stdhttp.HandlerFunc
}

func registerFunctionRoutes(api chi.Router, handlers FunctionHandlers) {
	api.Route("/functions", func(r chi.Router) {
		r.Get("/", mustHandler("list-functions", handlers.ListFunctions))
		r.Post("/{name}", mustHandler("invoke-function", handlers.InvokeFunction))
	})
}

func registerHookRoutes(api chi.Router, handlers HookHandlers) {
	api.Route("/hooks", func(r chi.Router) {
		r.Get("/{key}", mustHandler("get-hook", handlers.GetHook))
		r.Post("/{key}", mustHandler("set-hook", handlers.SetHook))
	})
}
