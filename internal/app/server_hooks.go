package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"goa.design/clue/log"

	"fnrelay/gateway/internal/domain"
	"fnrelay/gateway/internal/observability"
	"fnrelay/gateway/internal/service/hooks"
)

func (s *Server) getHook(w http.ResponseWriter, r *http.Request) {
	hook, err := s.deps.Hooks.Get(r.Context(), observability.AccountFromContext(r.Context()), chi.URLParam(r, "key"))
	if err != nil {
		writeHookErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hook)
}

func (s *Server) setHook(w http.ResponseWriter, r *http.Request) {
	var req domain.SetHookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, codeInvalidJSON, "invalid json body", nil)
		return
	}
	hook, err := s.deps.Hooks.Set(r.Context(), observability.AccountFromContext(r.Context()), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		writeHookErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hook)
}

func writeHookErr(w http.ResponseWriter, r *http.Request, err error) {
	validation := (*hooks.ValidationError)(nil)
	if errors.As(err, &validation) {
		writeErr(w, http.StatusBadRequest, validation.Code, validation.Message, nil)
		return
	}
	log.Errorf(r.Context(), err, "hook store failed")
	writeErr(w, http.StatusInternalServerError, hooks.ErrStoreUnavailable.Error(), "hook store unavailable", nil)
}
