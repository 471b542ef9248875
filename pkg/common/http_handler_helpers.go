package common

import (
	"errors"
	"log"
	"net/http"

	"github.com/matst80/slask-catalog/pkg/common/jsoncompat"
	"github.com/matst80/slask-catalog/pkg/types"
)

// HttpError carries the status code a handler wants to answer with.
type HttpError struct {
	Status  int
	Message string
	Err     error
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func NewHttpError(status int, message string, err error) *HttpError {
	return &HttpError{Status: status, Message: message, Err: err}
}

type errorResponse struct {
	Error string `json:"error"`
}

type JsonHandlerFunc func(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error

func JsonHandler(trk types.Tracking, fn JsonHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		sessionId := HandleSessionCookie(trk, w, r)
		allowOrigin(w, r)
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")

		enc := jsoncompat.NewEncoder(w)
		err := fn(w, r, sessionId, enc)
		if err == nil {
			return
		}
		log.Printf("Error handling request %s %s: %v", r.Method, r.URL.Path, err)
		status := http.StatusInternalServerError
		message := http.StatusText(status)
		var httpErr *HttpError
		if errors.As(err, &httpErr) {
			status = httpErr.Status
			message = httpErr.Message
		}
		w.WriteHeader(status)
		if encErr := enc.Encode(errorResponse{Error: message}); encErr != nil {
			log.Printf("Error writing error response: %v", encErr)
		}
	}
}

func allowOrigin(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
