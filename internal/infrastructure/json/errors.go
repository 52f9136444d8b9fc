package json

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Logger receives internal errors. It discards them until SetLogger is called.
var Logger logging.Logger = logging.NewNop()

func SetLogger(logger logging.Logger) {
	if logger != nil {
		Logger = logger
	}
}

func WriteError(w http.ResponseWriter, status int, err error, msg string) {
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: msg,
	}
	_ = Write(w, status, resp)
}

func WriteValidationError(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusBadRequest, err, err.Error())
}

func WriteBadRequestError(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, errors.New("bad request"), msg)
}

func WriteInternalError(w http.ResponseWriter, err error) {
	Logger.Error(logging.RequestResponse, logging.ExternalService, "internal error", map[logging.ExtraKey]any{
		logging.ErrorMessage: err.Error(),
	})
	WriteError(w, http.StatusInternalServerError, err, "An unexpected error occurred")
}

func WriteUnavailableError(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusServiceUnavailable, errors.New("unavailable"), msg)
}

func WriteRateLimitError(w http.ResponseWriter, retryAfter int) {
	resp := ErrorResponse{
		Error:   http.StatusText(http.StatusTooManyRequests),
		Message: "Too many requests. Please try again later.",
	}

	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	_ = Write(w, http.StatusTooManyRequests, resp)
}
