package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mwantia/docsync/pkg/vaulterr"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Failed    []string  `json:"failed,omitempty"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"status":"error","error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

func HealthyResponse(data any) Response {
	return Response{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func UnhealthyResponse(errMsg string) Response {
	return Response{
		Status:    "unhealthy",
		Timestamp: time.Now().UTC(),
		Error:     errMsg,
	}
}

func OKResponse(data any) Response {
	return Response{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func ErrorResponse(errMsg string) Response {
	return Response{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     errMsg,
	}
}

func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, ErrorResponse(msg))
}

// statusOf maps an error kind onto an HTTP status.
func statusOf(err error) int {
	switch vaulterr.CodeOf(err) {
	case vaulterr.ErrNotFound:
		return http.StatusNotFound
	case vaulterr.ErrInvalidMove, vaulterr.ErrInvalidPath:
		return http.StatusBadRequest
	case vaulterr.ErrConflict:
		return http.StatusConflict
	case vaulterr.ErrPartialFailure:
		return http.StatusMultiStatus
	case vaulterr.ErrRemoteUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Fail writes err as an error response. Partial failures carry the failed
// sub-paths and data describing what did succeed.
func Fail(w http.ResponseWriter, err error, data any) {
	resp := ErrorResponse(err.Error())

	var verr *vaulterr.Error
	if errors.As(err, &verr) && verr.Code == vaulterr.ErrPartialFailure {
		resp.Status = "partial"
		resp.Data = data
		resp.Failed = verr.FailedPaths()
	}
	JSON(w, statusOf(err), resp)
}
