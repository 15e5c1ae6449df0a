package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dataspace-ops/emc/pkg/inventory"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/dataspace-ops/emc/pkg/server"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const (
	paramConnectorID = "id"
	paramLimit       = "limit"

	//headerRemoteUser carries the authenticated user set by the fronting proxy
	headerRemoteUser = "X-Remote-User"
	anonymousUser    = "anonymous"

	defaultActivityLimit = 20
	maxPayloadBytes      = 1 << 20
)

func newRouter(o *Options) *mux.Router {
	//routing
	router := mux.NewRouter()
	router.Use(server.AccessLog(o.Logger()))

	router.HandleFunc("/health", callHandler(o, serviceHealth)).Methods("GET")

	router.HandleFunc("/api/connectors", callHandler(o, listConnectors)).Methods("GET")
	router.HandleFunc("/api/connectors", callHandler(o, createConnector)).Methods("POST")
	router.HandleFunc(
		fmt.Sprintf("/api/connectors/{%s}", paramConnectorID),
		callHandler(o, getConnector)).
		Methods("GET")
	router.HandleFunc(
		fmt.Sprintf("/api/connectors/{%s}", paramConnectorID),
		callHandler(o, updateConnector)).
		Methods("PUT")
	router.HandleFunc(
		fmt.Sprintf("/api/connectors/{%s}", paramConnectorID),
		callHandler(o, deleteConnector)).
		Methods("DELETE")
	router.HandleFunc(
		fmt.Sprintf("/api/connectors/{%s}/upgrade", paramConnectorID),
		callHandler(o, upgradeConnector)).
		Methods("POST")
	router.HandleFunc(
		fmt.Sprintf("/api/connectors/{%s}/health", paramConnectorID),
		callHandler(o, connectorHealth)).
		Methods("GET")

	router.HandleFunc("/api/deployments", callHandler(o, listDeployments)).Methods("GET")
	router.HandleFunc("/api/activity-logs", callHandler(o, listActivities)).Methods("GET")
	router.HandleFunc("/api/config", callHandler(o, dataspaceConfig)).Methods("GET")
	router.HandleFunc("/api/dataspace", callHandler(o, dataspaceConfig)).Methods("GET")

	//metrics endpoint
	router.Handle("/metrics", o.Registry.Metrics().Handler())

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.SendHTTPError(w, http.StatusNotFound, fmt.Errorf("path '%s' not found", r.URL.Path))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.SendHTTPError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed on '%s'", r.Method, r.URL.Path))
	})
	return router
}

func callHandler(o *Options, handler func(o *Options, w http.ResponseWriter, r *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		handler(o, w, r)
	}
}

func serviceHealth(o *Options, w http.ResponseWriter, r *http.Request) {
	if err := o.Registry.Connection().Ping(); err != nil {
		server.SendHTTPError(w, http.StatusServiceUnavailable, errors.Wrap(err, "database not reachable"))
		return
	}
	server.SendResponse(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func listConnectors(o *Options, w http.ResponseWriter, r *http.Request) {
	views, err := o.Registry.Reconciler().ReconcileList(r.Context())
	if err != nil {
		server.SendError(w, errors.Wrap(err, "failed to list connectors"))
		return
	}
	server.SendResponse(w, http.StatusOK, views)
}

func getConnector(o *Options, w http.ResponseWriter, r *http.Request) {
	id, err := server.NewParams(r).String(paramConnectorID)
	if err != nil {
		server.SendHTTPError(w, http.StatusBadRequest, err)
		return
	}
	view, err := o.Registry.Reconciler().Reconcile(r.Context(), id)
	if err != nil {
		server.SendError(w, err)
		return
	}
	server.SendResponse(w, http.StatusOK, view)
}

func createConnector(o *Options, w http.ResponseWriter, r *http.Request) {
	spec := &model.ConnectorSpec{}
	if err := readJSON(w, r, spec); err != nil {
		server.SendHTTPError(w, http.StatusBadRequest, err)
		return
	}
	connector, err := o.Registry.Orchestrator().Create(r.Context(), spec, remoteUser(r))
	if err != nil {
		server.SendError(w, err)
		return
	}
	server.SendResponse(w, http.StatusCreated, connectorPayload(connector))
}

func upgradeConnector(o *Options, w http.ResponseWriter, r *http.Request) {
	id, err := server.NewParams(r).String(paramConnectorID)
	if err != nil {
		server.SendHTTPError(w, http.StatusBadRequest, err)
		return
	}
	spec := &model.ConnectorSpec{}
	if err := readJSON(w, r, spec); err != nil {
		server.SendHTTPError(w, http.StatusBadRequest, err)
		return
	}
	connector, err := o.Registry.Orchestrator().Upgrade(r.Context(), id, spec, remoteUser(r))
	if err != nil {
		server.SendError(w, err)
		return
	}
	server.SendResponse(w, http.StatusOK, connectorPayload(connector))
}

//updateRequest changes the stored record only: fields which are not sent stay untouched
type updateRequest struct {
	URL     *string `json:"url"`
	BPN     *string `json:"bpn"`
	Version *string `json:"version"`
	Status  *string `json:"status"`
}

func (u *updateRequest) toConnectorUpdate() (*inventory.ConnectorUpdate, error) {
	update := &inventory.ConnectorUpdate{
		URL:     u.URL,
		BPN:     u.BPN,
		Version: u.Version,
	}
	if u.Status != nil {
		status, err := model.NewConnectorStatus(*u.Status)
		if err != nil {
			return nil, err
		}
		update.Status = &status
	}
	return update, nil
}

func updateConnector(o *Options, w http.ResponseWriter, r *http.Request) {
	id, err := server.NewParams(r).String(paramConnectorID)
	if err != nil {
		server.SendHTTPError(w, http.StatusBadRequest, err)
		return
	}
	req := &updateRequest{}
	if err := readJSON(w, r, req); err != nil {
		server.SendHTTPError(w, http.StatusBadRequest, err)
		return
	}
	update, err := req.toConnectorUpdate()
	if err != nil {
		server.SendHTTPError(w, http.StatusBadRequest, err)
		return
	}
	connector, err := o.Registry.Orchestrator().UpdateRecord(id, update, remoteUser(r))
	if err != nil {
		server.SendError(w, err)
		return
	}
	server.SendResponse(w, http.StatusOK, connectorPayload(connector))
}

func deleteConnector(o *Options, w http.ResponseWriter, r *http.Request) {
	id, err := server.NewParams(r).String(paramConnectorID)
	if err != nil {
		server.SendHTTPError(w, http.StatusBadRequest, err)
		return
	}
	deleted, err := o.Registry.Orchestrator().Delete(r.Context(), id, remoteUser(r))
	if err != nil {
		server.SendError(w, err)
		return
	}
	if !deleted {
		server.SendHTTPError(w, http.StatusNotFound, fmt.Errorf("connector '%s' not found", id))
		return
	}
	server.SendResponse(w, http.StatusOK, map[string]interface{}{
		"id":      id,
		"deleted": true,
	})
}

func connectorHealth(o *Options, w http.ResponseWriter, r *http.Request) {
	id, err := server.NewParams(r).String(paramConnectorID)
	if err != nil {
		server.SendHTTPError(w, http.StatusBadRequest, err)
		return
	}
	connector, err := o.Registry.Inventory().Get(id)
	if err != nil {
		server.SendError(w, err)
		return
	}
	server.SendResponse(w, http.StatusOK, o.Registry.Reconciler().HealthCheck(r.Context(), connector.URL))
}

func listDeployments(o *Options, w http.ResponseWriter, r *http.Request) {
	releases, err := o.Registry.Driver().List(r.Context(), "")
	if err != nil {
		server.SendError(w, errors.Wrap(err, "failed to list deployments"))
		return
	}
	server.SendResponse(w, http.StatusOK, releases)
}

func listActivities(o *Options, w http.ResponseWriter, r *http.Request) {
	limit, err := server.NewParams(r).IntOrDefault(paramLimit, defaultActivityLimit)
	if err != nil {
		server.SendHTTPError(w, http.StatusBadRequest, err)
		return
	}
	activities, err := o.Registry.Inventory().RecentActivity(limit)
	if err != nil {
		server.SendError(w, err)
		return
	}
	payload := make([]map[string]interface{}, 0, len(activities))
	for _, activity := range activities {
		payload = append(payload, activityPayload(activity))
	}
	server.SendResponse(w, http.StatusOK, payload)
}

func dataspaceConfig(o *Options, w http.ResponseWriter, r *http.Request) {
	server.SendResponse(w, http.StatusOK, o.Registry.Config().DataspaceSettings())
}

func readJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		return errors.Wrap(err, "failed to read received JSON payload")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("request body is empty")
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.Wrap(err, "failed to unmarshal JSON payload")
	}
	return nil
}

func remoteUser(r *http.Request) string {
	if user := strings.TrimSpace(r.Header.Get(headerRemoteUser)); user != "" {
		return user
	}
	return anonymousUser
}

//connectorPayload never contains the stored configuration: it includes credentials
func connectorPayload(connector *model.ConnectorEntity) map[string]interface{} {
	return map[string]interface{}{
		"id":               connector.ID,
		"name":             connector.Name,
		"url":              connector.URL,
		"bpn":              connector.BPN,
		"chart":            connector.Chart,
		"version":          connector.Version,
		"namespace":        connector.Namespace,
		"status":           connector.Status,
		"controlPlaneHost": connector.CPHostname,
		"dataPlaneHost":    connector.DPHostname,
		"registryId":       connector.RegistryID,
		"submodelServerId": connector.SubmodelID,
		"createdBy":        connector.CreatedBy,
		"created":          connector.Created,
		"updated":          connector.Updated,
	}
}

func activityPayload(activity *model.ActivityEntity) map[string]interface{} {
	return map[string]interface{}{
		"id":            activity.ID,
		"connectorId":   activity.ConnectorID,
		"connectorName": activity.ConnectorName,
		"action":        activity.Action,
		"details":       activity.Details,
		"status":        activity.Status,
		"createdBy":     activity.CreatedBy,
		"created":       activity.Created,
	}
}

