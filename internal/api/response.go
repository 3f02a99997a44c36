package api

import "github.com/arvergara/hualpen-roster/internal/validation"

// APIResponse is the uniform envelope every handler returns.
type APIResponse struct {
	Data       interface{}        `json:"data,omitempty"`
	Validation *validation.Result `json:"validation,omitempty"`
	Error      string             `json:"error,omitempty"`
	Meta       map[string]any     `json:"meta,omitempty"`
}

func ok(data interface{}, v *validation.Result) APIResponse {
	return APIResponse{Data: data, Validation: v}
}

func fail(err error) APIResponse {
	return APIResponse{Error: err.Error()}
}
