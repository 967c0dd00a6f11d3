package domain

import "encoding/json"

const (
	DefaultBasePath = "/api"
	MaxHookKeyBytes = 256
)

type APIErrorBody struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ArgumentErrorDetails is carried by invalid_argument responses.
type ArgumentErrorDetails struct {
	Function string `json:"function"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

type InvokeRequest struct {
	Args map[string]interface{} `json:"args"`
}

type InvokeResponse struct {
	Result interface{} `json:"result"`
}

// Hook is one account-scoped key/value slot. Value is JSON null when the key
// has never been set.
type Hook struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type SetHookRequest struct {
	Value json.RawMessage `json:"value"`
}

type AgentChatRequest struct {
	Instruction string `json:"instruction"`
}

type AgentStep struct {
	Function string                 `json:"function"`
	Args     map[string]interface{} `json:"args,omitempty"`
	Result   interface{}            `json:"result,omitempty"`
	Error    *APIError              `json:"error,omitempty"`
}

type AgentChatResponse struct {
	Answer string      `json:"answer"`
	Steps  []AgentStep `json:"steps"`
}

type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

type RoutesResponse struct {
	Routes []RouteInfo `json:"routes"`
}
