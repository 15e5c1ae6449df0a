package reconciler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dataspace-ops/emc/pkg/health"
	"github.com/dataspace-ops/emc/pkg/inventory"
	"github.com/dataspace-ops/emc/pkg/logger"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/dataspace-ops/emc/pkg/test"
	"github.com/stretchr/testify/require"
)

func newEdcServer(status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
}

func newTestReconciler(t *testing.T) (*Reconciler, *inventory.DefaultInventory) {
	log := logger.NewOptionalLogger(true)
	inv := inventory.NewInventory(test.NewTestConnection(t), log, nil)
	rec, err := NewReconciler(inv, health.NewChecker(health.Config{}, log), Config{PoolSize: 3}, log)
	require.NoError(t, err)
	t.Cleanup(rec.Close)
	return rec, inv
}

func createConnector(t *testing.T, inv inventory.Inventory, name, url string, registry *model.ServiceDescriptor) *model.ConnectorEntity {
	connector, err := inv.Create(&model.ConnectorEntity{
		Name:       name,
		URL:        url,
		BPN:        "BPNL000000000001",
		Version:    "0.10.2",
		Namespace:  "edc",
		CPHostname: name + "-controlplane.example",
		DPHostname: name + "-dataplane.example",
	}, registry, nil)
	require.NoError(t, err)
	return connector
}

func TestReconciler(t *testing.T) {
	ctx := context.Background()

	t.Run("Reconcile list keeps order and unreachable connectors", func(t *testing.T) {
		rec, inv := newTestReconciler(t)

		healthy := newEdcServer(http.StatusOK)
		defer healthy.Close()
		failing := newEdcServer(http.StatusServiceUnavailable)
		defer failing.Close()
		closed := newEdcServer(http.StatusOK)
		closedURL := closed.URL
		closed.Close()

		var expected []string
		for i := 0; i < 9; i++ {
			url := []string{healthy.URL, failing.URL, closedURL}[i%3]
			name := fmt.Sprintf("connector-%d", i)
			createConnector(t, inv, name, url, nil)
			expected = append(expected, name)
		}

		views, err := rec.ReconcileList(ctx)
		require.NoError(t, err)
		require.Len(t, views, 9)
		for i, view := range views {
			require.Equal(t, expected[i], view.Name)
			require.NotNil(t, view.Health)
			if i%3 == 0 {
				require.Equal(t, model.ConnectorStatusHealthy, view.Status)
				require.True(t, view.Health.Healthy)
			} else {
				require.Equal(t, model.ConnectorStatusUnhealthy, view.Status)
				require.Equal(t, health.ReadinessNotReady, view.Health.Readiness)
			}

			stored, err := inv.Get(view.ID)
			require.NoError(t, err)
			require.Equal(t, view.Status, stored.Status)
		}
	})

	t.Run("Empty store", func(t *testing.T) {
		rec, _ := newTestReconciler(t)
		views, err := rec.ReconcileList(ctx)
		require.NoError(t, err)
		require.Empty(t, views)
	})

	t.Run("Resource URLs", func(t *testing.T) {
		rec, inv := newTestReconciler(t)
		srv := newEdcServer(http.StatusOK)
		defer srv.Close()

		connector := createConnector(t, inv, "acme", srv.URL, &model.ServiceDescriptor{URL: "https://registry.example/semantics"})
		view, err := rec.Reconcile(ctx, connector.ID)
		require.NoError(t, err)
		require.Equal(t, map[string]string{
			"assets":         "https://acme-controlplane.example/management/v3/assets",
			"policies":       "https://acme-controlplane.example/management/v3/policydefinitions",
			"contracts":      "https://acme-controlplane.example/management/v3/contractdefinitions",
			ResourceRegistry: "https://registry.example/semantics",
		}, view.Resources)
	})

	t.Run("Status transitions", func(t *testing.T) {
		rec, inv := newTestReconciler(t)
		var status int32 = http.StatusOK
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(int(atomic.LoadInt32(&status)))
		}))
		defer srv.Close()

		connector := createConnector(t, inv, "acme", srv.URL, nil)
		require.Equal(t, model.ConnectorStatusUnknown, connector.Status)

		view, err := rec.Reconcile(ctx, connector.ID)
		require.NoError(t, err)
		require.Equal(t, model.ConnectorStatusHealthy, view.Status)

		atomic.StoreInt32(&status, http.StatusInternalServerError)
		view, err = rec.Reconcile(ctx, connector.ID)
		require.NoError(t, err)
		require.Equal(t, model.ConnectorStatusUnhealthy, view.Status)

		stored, err := inv.Get(connector.ID)
		require.NoError(t, err)
		require.Equal(t, model.ConnectorStatusUnhealthy, stored.Status)
	})

	t.Run("Reconcile unknown connector", func(t *testing.T) {
		rec, _ := newTestReconciler(t)
		_, err := rec.Reconcile(ctx, "does-not-exist")
		require.Error(t, err)
	})

	t.Run("Health check of arbitrary URL", func(t *testing.T) {
		rec, _ := newTestReconciler(t)
		srv := newEdcServer(http.StatusOK)
		defer srv.Close()
		result := rec.HealthCheck(ctx, srv.URL)
		require.Equal(t, &health.Result{URL: srv.URL, Liveness: health.LivenessHealthy, Readiness: health.ReadinessReady, Healthy: true}, result)
	})

	t.Run("Invalid pool size", func(t *testing.T) {
		_, err := NewReconciler(nil, nil, Config{PoolSize: -1}, logger.NewOptionalLogger(true))
		require.Error(t, err)
	})
}
