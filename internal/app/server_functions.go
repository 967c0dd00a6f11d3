package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"goa.design/clue/log"

	"fnrelay/gateway/internal/domain"
	"fnrelay/gateway/internal/observability"
	"fnrelay/gateway/internal/registry"
)

const (
	codeInvalidJSON     = "invalid_json"
	codeInvalidArgument = "invalid_argument"
)

func (s *Server) listFunctions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Registry.Catalog())
}

func (s *Server) invokeFunction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req domain.InvokeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, codeInvalidJSON, "invalid json body", nil)
		return
	}

	ctx, done := s.deps.Telemetry.StartCall(callerContext(r), name)
	result, err := s.deps.Registry.CallByName(ctx, name, req.Args)
	if err != nil {
		done(registry.Code(err), err)
		s.writeCallErr(w, r, err)
		return
	}
	done(observability.OutcomeOK, nil)
	writeJSON(w, http.StatusOK, domain.InvokeResponse{Result: result})
}

// writeCallErr maps registry failures onto the public error envelope. An
// ExecutionError is matched first: whatever it wraps, including errors of a
// delegated call, is logged and never returned.
func (s *Server) writeCallErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		argErr  *registry.ArgumentValidationError
		execErr *registry.ExecutionError
	)
	switch {
	case errors.As(err, &execErr):
		log.Errorf(r.Context(), execErr.Cause, "function %q failed", execErr.Function)
		writeErr(w, http.StatusInternalServerError, registry.ErrExecution.Error(), "function execution failed", nil)
	case errors.Is(err, registry.ErrNotFound):
		writeErr(w, http.StatusNotFound, registry.ErrNotFound.Error(), err.Error(), nil)
	case errors.As(err, &argErr):
		writeErr(w, http.StatusBadRequest, codeInvalidArgument, argErr.Error(), domain.ArgumentErrorDetails{
			Function: argErr.Function,
			Field:    argErr.Field,
			Reason:   argErr.Reason,
		})
	case errors.Is(err, registry.ErrTimeout):
		writeErr(w, http.StatusGatewayTimeout, registry.ErrTimeout.Error(), err.Error(), nil)
	default:
		log.Errorf(r.Context(), err, "unexpected call error")
		writeErr(w, http.StatusInternalServerError, registry.ErrExecution.Error(), "function execution failed", nil)
	}
}
