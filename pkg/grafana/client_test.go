package grafana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/monsync/pkg/errors"
)

func TestUploadDashboard(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/dashboards/db", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1")
	status, err := c.UploadDashboard(context.Background(), json.RawMessage(`{"title":"net"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	// Overwrite must always be set so re-uploads are idempotent.
	assert.Equal(t, true, got["overwrite"])
	dashboard, ok := got["dashboard"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "net", dashboard["title"])
}

func TestUploadDashboardRepeatIsIdempotent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["overwrite"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "key")
	dash := json.RawMessage(`{"uid":"abc"}`)
	for i := 0; i < 2; i++ {
		_, err := c.UploadDashboard(context.Background(), dash)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestUploadDashboardNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "key")
	status, err := c.UploadDashboard(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, errors.ErrCodeImportFailed, errors.CodeOf(err))
}

func TestListDatasources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/datasources", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Datasource{
			{Name: "Zabbix", Type: "alexanderzobnin-zabbix-datasource"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "key")
	list, err := c.ListDatasources(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Zabbix", list[0].Name)
}

func TestCreateDatasource(t *testing.T) {
	var got Datasource
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/datasources", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "key")
	err := c.CreateDatasource(context.Background(), Datasource{
		Name:   "Zabbix",
		Type:   "alexanderzobnin-zabbix-datasource",
		URL:    "http://zabbix/api_jsonrpc.php",
		Access: "proxy",
	})
	require.NoError(t, err)
	assert.Equal(t, "Zabbix", got.Name)
	assert.Equal(t, "proxy", got.Access)
}

func TestWaitReadyEventuallyHealthy(t *testing.T) {
	probes := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		probes++
		if probes < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "key",
		WithReadinessPolicy(2*time.Second, 10*time.Millisecond))
	require.NoError(t, c.WaitReady(context.Background()))
	assert.GreaterOrEqual(t, probes, 3)
}

func TestWaitReadyTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, "key",
		WithReadinessPolicy(50*time.Millisecond, 10*time.Millisecond))
	err := c.WaitReady(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnavailable, errors.CodeOf(err))
}
