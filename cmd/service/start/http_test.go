package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/dataspace-ops/emc/pkg/app"
	"github.com/dataspace-ops/emc/pkg/db"
	"github.com/dataspace-ops/emc/pkg/identity"
	"github.com/dataspace-ops/emc/pkg/logger"
	"github.com/dataspace-ops/emc/pkg/test"
	"github.com/stretchr/testify/require"
)

type testService struct {
	url string
	edc string
}

func newTestService(t *testing.T) *testService {
	chartDir := t.TempDir()
	key, err := db.NewKey()
	require.NoError(t, err)
	cfg, err := app.LoadConfig("")
	require.NoError(t, err)
	cfg.DB.Encryption.Key = key
	cfg.DB.Sqlite.File = filepath.Join(t.TempDir(), "emc.db")
	cfg.Deployment.Binary = test.NewFakeHelm(t)
	cfg.Deployment.ChartDir = chartDir
	cfg.Deployment.Namespace = "edc"
	cfg.Dataspace = identity.TrustConfig{
		WalletURL:      "https://wallet.example",
		TrustAuthority: "did:web:issuer.example",
		StsDimURL:      "https://dim.example/api/sts",
		StsTokenURL:    "https://auth.example/token",
		BdrsURL:        "https://bdrs.example/api",
		IngressDomain:  "connectors.example",
	}

	log := logger.NewOptionalLogger(true)
	registry, err := app.NewApplicationRegistry(cfg, log, true, true)
	require.NoError(t, err)

	o := NewOptions(&cli.Options{Registry: registry})
	srv := httptest.NewServer(newRouter(o))
	edc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/check/") {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(func() {
		srv.Close()
		edc.Close()
		require.NoError(t, o.Close())
	})
	return &testService{url: srv.URL, edc: edc.URL}
}

func (s *testService) call(t *testing.T, method, path string, payload interface{}) (int, []byte) {
	var body io.Reader
	switch p := payload.(type) {
	case nil:
	case string:
		body = strings.NewReader(p)
	default:
		data, err := json.Marshal(p)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.url+path, body)
	require.NoError(t, err)
	req.Header.Set("X-Remote-User", "operator")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (s *testService) object(t *testing.T, method, path string, payload interface{}, expectedStatus int) map[string]interface{} {
	status, data := s.call(t, method, path, payload)
	require.Equal(t, expectedStatus, status, string(data))
	result := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &result))
	return result
}

func (s *testService) list(t *testing.T, path string) []map[string]interface{} {
	status, data := s.call(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status, string(data))
	var result []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &result))
	return result
}

func (s *testService) spec(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":    name,
		"bpn":     "BPNL000000000001",
		"version": "0.10.2",
		"url":     s.edc,
		"database": map[string]interface{}{
			"password": "s3cr3t",
		},
	}
}

func TestWebservice(t *testing.T) {
	svc := newTestService(t)

	require.Equal(t, "ok", svc.object(t, http.MethodGet, "/health", nil, http.StatusOK)["status"])

	var id string
	t.Run("Create connector", func(t *testing.T) {
		created := svc.object(t, http.MethodPost, "/api/connectors", svc.spec("acme"), http.StatusCreated)
		id = created["id"].(string)
		require.NotEmpty(t, id)
		require.Equal(t, "unknown", created["status"])
		require.Equal(t, "operator", created["createdBy"])
		require.Equal(t, "acme-controlplane.connectors.example", created["controlPlaneHost"])
		require.NotContains(t, created, "config")
	})

	t.Run("Create duplicate connector", func(t *testing.T) {
		resp := svc.object(t, http.MethodPost, "/api/connectors", svc.spec("acme"), http.StatusConflict)
		require.Equal(t, float64(http.StatusConflict), resp["status"])
		require.Contains(t, resp["error"], "acme")
	})

	t.Run("Create with failing deployment tool", func(t *testing.T) {
		resp := svc.object(t, http.MethodPost, "/api/connectors", svc.spec("broken"), http.StatusBadGateway)
		require.Contains(t, resp["error"], "INSTALLATION FAILED")
	})

	t.Run("Create with invalid payload", func(t *testing.T) {
		svc.object(t, http.MethodPost, "/api/connectors", "{not json", http.StatusBadRequest)
		svc.object(t, http.MethodPost, "/api/connectors", "", http.StatusBadRequest)
		invalid := svc.spec("Invalid Name")
		svc.object(t, http.MethodPost, "/api/connectors", invalid, http.StatusBadRequest)
		unsupported := svc.spec("future")
		unsupported["version"] = "0.12.0"
		svc.object(t, http.MethodPost, "/api/connectors", unsupported, http.StatusBadRequest)
	})

	t.Run("List connectors with health", func(t *testing.T) {
		connectors := svc.list(t, "/api/connectors")
		require.Len(t, connectors, 1)
		require.Equal(t, "healthy", connectors[0]["status"])
		require.Equal(t, "https://acme-controlplane.connectors.example/management/v3/assets",
			connectors[0]["resources"].(map[string]interface{})["assets"])
	})

	t.Run("Get connector", func(t *testing.T) {
		connector := svc.object(t, http.MethodGet, "/api/connectors/"+id, nil, http.StatusOK)
		require.Equal(t, "acme", connector["name"])
		health := connector["health"].(map[string]interface{})
		require.Equal(t, "ready", health["readiness"])

		svc.object(t, http.MethodGet, "/api/connectors/unknown", nil, http.StatusNotFound)
	})

	t.Run("Connector health", func(t *testing.T) {
		health := svc.object(t, http.MethodGet, "/api/connectors/"+id+"/health", nil, http.StatusOK)
		require.Equal(t, true, health["healthy"])
		require.Equal(t, "healthy", health["liveness"])
	})

	t.Run("Update record", func(t *testing.T) {
		updated := svc.object(t, http.MethodPut, "/api/connectors/"+id, map[string]interface{}{"bpn": "BPNL000000000002"}, http.StatusOK)
		require.Equal(t, "BPNL000000000002", updated["bpn"])
		require.Equal(t, "0.10.2", updated["version"])

		svc.object(t, http.MethodPut, "/api/connectors/"+id, map[string]interface{}{"status": "sleeping"}, http.StatusBadRequest)
		svc.object(t, http.MethodPut, "/api/connectors/unknown", map[string]interface{}{"bpn": "x"}, http.StatusNotFound)
	})

	t.Run("Upgrade connector", func(t *testing.T) {
		upgraded := svc.object(t, http.MethodPost, "/api/connectors/"+id+"/upgrade", map[string]interface{}{"version": "0.11.0"}, http.StatusOK)
		require.Equal(t, "0.11.0", upgraded["version"])
		require.Equal(t, "deploying", upgraded["status"])

		svc.object(t, http.MethodPost, "/api/connectors/"+id+"/upgrade", map[string]interface{}{"name": "renamed"}, http.StatusBadRequest)
	})

	t.Run("List deployments", func(t *testing.T) {
		releases := svc.list(t, "/api/deployments")
		require.Len(t, releases, 1)
		require.Equal(t, "acme", releases[0]["name"])
		require.Equal(t, "deployed", releases[0]["status"])
	})

	t.Run("Dataspace settings", func(t *testing.T) {
		for _, path := range []string{"/api/config", "/api/dataspace"} {
			settings := svc.object(t, http.MethodGet, path, nil, http.StatusOK)
			require.Equal(t, "https://wallet.example", settings["walletUrl"])
			require.Equal(t, "edc", settings["namespace"])
		}
	})

	t.Run("Metrics", func(t *testing.T) {
		status, data := svc.call(t, http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, status)
		require.Contains(t, string(data), `emc_connector_status{connector="acme",version="0.11.0"}`)
		require.Contains(t, string(data), "emc_deployment_tool_duration_seconds")
	})

	t.Run("Delete connector", func(t *testing.T) {
		deleted := svc.object(t, http.MethodDelete, "/api/connectors/"+id, nil, http.StatusOK)
		require.Equal(t, true, deleted["deleted"])
		svc.object(t, http.MethodDelete, "/api/connectors/"+id, nil, http.StatusNotFound)
		require.Empty(t, svc.list(t, "/api/connectors"))
	})

	t.Run("Activity log", func(t *testing.T) {
		activities := svc.list(t, "/api/activity-logs")
		require.Len(t, activities, 11)
		for _, activity := range activities {
			require.Equal(t, "operator", activity["createdBy"])
		}
		require.Len(t, svc.list(t, "/api/activity-logs?limit=3"), 3)
		svc.object(t, http.MethodGet, "/api/activity-logs?limit=many", nil, http.StatusBadRequest)
	})

	t.Run("Unknown route", func(t *testing.T) {
		resp := svc.object(t, http.MethodGet, "/api/unknown", nil, http.StatusNotFound)
		require.Equal(t, float64(http.StatusNotFound), resp["status"])
		svc.object(t, http.MethodPatch, "/api/connectors", nil, http.StatusMethodNotAllowed)
	})
}
