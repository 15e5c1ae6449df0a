package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dataspace-ops/emc/pkg/deployment"
	"github.com/dataspace-ops/emc/pkg/inventory"
	"github.com/dataspace-ops/emc/pkg/manifest"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/dataspace-ops/emc/pkg/repository"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"No error", nil, http.StatusOK},
		{"Unknown record", &repository.EntityNotFoundError{}, http.StatusNotFound},
		{"Duplicate name", &inventory.DuplicateNameError{Name: "acme"}, http.StatusConflict},
		{"Wrapped duplicate name", errors.Wrap(&inventory.DuplicateNameError{Name: "acme"}, "create"), http.StatusConflict},
		{"Invalid spec", &model.InvalidSpecError{Problems: []string{"bpn is required"}}, http.StatusBadRequest},
		{"Unsupported version", &manifest.TemplateNotFoundError{Version: "0.12.0"}, http.StatusBadRequest},
		{"Deployment failure", &deployment.DeploymentFailure{Operation: deployment.OperationInstall, Reason: deployment.ReasonFailed}, http.StatusBadGateway},
		{"Deployment timeout", &deployment.DeploymentFailure{Operation: deployment.OperationInstall, Reason: deployment.ReasonTimeout}, http.StatusGatewayTimeout},
		{"Parse error", &deployment.ParseError{Line: 1, Reason: "header missing"}, http.StatusBadGateway},
		{"Anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, StatusCode(tc.err))
		})
	}
}

func TestSendError(t *testing.T) {
	recorder := httptest.NewRecorder()
	SendError(recorder, &deployment.DeploymentFailure{
		Operation: deployment.OperationInstall,
		Release:   "acme",
		Reason:    deployment.ReasonFailed,
		Message:   "INSTALLATION FAILED: boom",
		Output:    "raw tool output with secrets",
	})

	require.Equal(t, http.StatusBadGateway, recorder.Code)
	require.Equal(t, "application/json", recorder.Header().Get("content-type"))
	require.NotContains(t, recorder.Body.String(), "raw tool output")

	resp := &ErrorResponse{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), resp))
	require.Equal(t, http.StatusBadGateway, resp.Status)
	require.Contains(t, resp.Error, "INSTALLATION FAILED: boom")
}

func TestParseErrorHidesToolOutput(t *testing.T) {
	toolOutput := "WARNING: kubeconfig /home/op/.kube/config is group-readable token=s3cr3t"
	_, err := deployment.ParseReleases(toolOutput + "\nacme\tedc\t1\tnow\tdeployed\tc\t1\n")
	require.True(t, deployment.IsParseError(err))

	t.Run("Response body", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		SendError(recorder, errors.Wrap(err, "failed to list deployments"))

		require.Equal(t, http.StatusBadGateway, recorder.Code)
		require.NotContains(t, recorder.Body.String(), "s3cr3t")
		require.NotContains(t, recorder.Body.String(), "kubeconfig")

		resp := &ErrorResponse{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), resp))
		require.Contains(t, resp.Error, "line 1 (header missing)")
	})

	t.Run("Access log keeps the details", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		handler := AccessLog(zap.New(core).Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			SendError(w, err)
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/deployments", nil))

		require.Equal(t, http.StatusBadGateway, recorder.Code)
		require.NotContains(t, recorder.Body.String(), "s3cr3t")
		entries := logs.FilterLevelExact(zap.WarnLevel).All()
		require.Len(t, entries, 1)
		require.Contains(t, entries[0].Message, "/api/deployments -> 502")
		require.Contains(t, entries[0].Message, "token=s3cr3t")
	})

	t.Run("Successful requests are not logged as failures", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		handler := AccessLog(zap.New(core).Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			SendResponse(w, http.StatusOK, map[string]string{"status": "ok"})
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Empty(t, logs.FilterLevelExact(zap.WarnLevel).All())
		require.Len(t, logs.FilterLevelExact(zap.DebugLevel).All(), 1)
	})
}
