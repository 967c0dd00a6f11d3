package app

import (
	"errors"
	"net/http"
	"strings"

	"goa.design/clue/log"

	"fnrelay/gateway/internal/agent"
	"fnrelay/gateway/internal/domain"
)

const (
	codeReasonerUnavailable = "reasoner_unavailable"
	codeAgentFailed         = "agent_failed"
)

func (s *Server) agentChat(w http.ResponseWriter, r *http.Request) {
	if s.deps.Agent == nil {
		writeErr(w, http.StatusServiceUnavailable, codeReasonerUnavailable, "no reasoner is configured", nil)
		return
	}
	var req domain.AgentChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, codeInvalidJSON, "invalid json body", nil)
		return
	}
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		writeErr(w, http.StatusBadRequest, codeInvalidArgument, "instruction is required", domain.ArgumentErrorDetails{
			Field:  "instruction",
			Reason: "is required",
		})
		return
	}

	result, err := s.deps.Agent.Run(callerContext(r), instruction)
	if err != nil {
		log.Errorf(r.Context(), err, "agent run failed after %d steps", len(result.Steps))
		message := "agent run failed"
		if errors.Is(err, agent.ErrStepLimit) {
			message = agent.ErrStepLimit.Error()
		}
		writeErr(w, http.StatusInternalServerError, codeAgentFailed, message, map[string]interface{}{
			"steps": toAgentSteps(result.Steps),
		})
		return
	}
	writeJSON(w, http.StatusOK, domain.AgentChatResponse{
		Answer: result.Answer,
		Steps:  toAgentSteps(result.Steps),
	})
}

func toAgentSteps(steps []agent.Step) []domain.AgentStep {
	out := make([]domain.AgentStep, 0, len(steps))
	for _, step := range steps {
		item := domain.AgentStep{
			Function: step.FunctionName,
			Args:     step.Args,
			Result:   step.Result,
		}
		if step.Failed() {
			item.Error = &domain.APIError{Code: step.ErrorKind, Message: step.ErrorMessage}
		}
		out = append(out, item)
	}
	return out
}
