package server

import (
	"encoding/json"
	"net/http"

	"github.com/dataspace-ops/emc/pkg/deployment"
	"github.com/dataspace-ops/emc/pkg/inventory"
	"github.com/dataspace-ops/emc/pkg/manifest"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/dataspace-ops/emc/pkg/repository"
)

//ErrorResponse is the payload of every failed request
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

//StatusCode maps the error kinds of the service to HTTP status codes
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case repository.IsNotFoundError(err):
		return http.StatusNotFound
	case inventory.IsDuplicateNameError(err):
		return http.StatusConflict
	case model.IsInvalidSpecError(err),
		manifest.IsTemplateNotFoundError(err),
		manifest.IsInvalidVersionError(err),
		manifest.IsInvalidIdentityError(err):
		return http.StatusBadRequest
	case deployment.IsTimeout(err):
		return http.StatusGatewayTimeout
	case deployment.IsDeploymentFailure(err), deployment.IsParseError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

//SendError responds the error with the status code derived from its kind
func SendError(w http.ResponseWriter, err error) {
	SendHTTPError(w, StatusCode(err), err)
}

//errorRecorder keeps the error of a request for the access log
type errorRecorder interface {
	recordError(err error)
}

//SendHTTPError responds an ErrorResponse. Deployment tool output is never part of the message.
//The error is handed to the access log if the writer is wrapped by AccessLog.
func SendHTTPError(w http.ResponseWriter, httpCode int, err error) {
	if recorder, ok := w.(errorRecorder); ok {
		recorder.recordError(err)
	}
	SendResponse(w, httpCode, &ErrorResponse{
		Error:  err.Error(),
		Status: httpCode,
	})
}

func SendResponse(w http.ResponseWriter, httpCode int, resp interface{}) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(httpCode)
	if resp == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response payload to JSON", http.StatusInternalServerError)
	}
}
