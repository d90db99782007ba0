package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/DELAxGithub/wordmiro/pkg/errors"
	"github.com/DELAxGithub/wordmiro/pkg/expand"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// statusFor maps application error codes to HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidTerm, errors.ErrCodeInvalidRelation,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidBounds, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound, errors.ErrCodeGraphNotFound,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		// Sentinel errors from collaborating packages.
		switch {
		case stderrors.Is(err, expand.ErrNotFound):
			code = errors.ErrCodeNotFound
		case stderrors.Is(err, expand.ErrNetwork):
			code = errors.ErrCodeNetwork
		case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
			code = errors.ErrCodeTimeout
		}
	}
	writeJSON(w, statusFor(code), errorResponse{
		Error: errors.UserMessage(err),
		Code:  code,
	})
}

func writeStoreUnavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{
		Error: "graph storage is not configured on this server",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
