package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-greeter/internal/contract"
	"github.com/bionicotaku/lingo-services-greeter/internal/controllers"
	"github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/configloader"
	httpserver "github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/http_server"
	"github.com/bionicotaku/lingo-services-greeter/internal/metadata"
	"github.com/bionicotaku/lingo-services-greeter/internal/repositories"
	"github.com/bionicotaku/lingo-services-greeter/internal/services"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type readyStub struct{ err error }

func (r readyStub) Ready(context.Context) error { return r.err }

func startServer(t *testing.T, ready httpserver.ReadinessChecker) string {
	t.Helper()
	logger := log.NewStdLogger(io.Discard)
	backend := repositories.NewMemoryContractBackend(nil, logger)
	uc := services.NewGreeterUsecase(backend, backend, contract.DefaultRetention, logger)
	handler := controllers.NewGreeterHandler(uc, controllers.NewBaseHandler(controllers.HandlerTimeouts{}))

	tel, cleanupTel, err := httpserver.NewTelemetry(logger)
	require.NoError(t, err)
	t.Cleanup(cleanupTel)

	cfg := &configloader.Server{HTTP: configloader.HTTPServer{Addr: "127.0.0.1:0"}}
	srv := httpserver.NewHTTPServer(cfg, handler, tel, ready, logger)

	// Force endpoint initialization to retrieve the bound address.
	endpointURL, err := srv.Endpoint()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("server stopped: %v", err)
		}
	}()
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
		defer stopCancel()
		_ = srv.Stop(stopCtx)
		cancel()
	})
	return "http://" + endpointURL.Host
}

type response struct {
	Status int
	Body   map[string]any
}

func call(t *testing.T, base, method, path string, body any, header http.Header) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, base+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := response{Status: resp.StatusCode, Body: map[string]any{}}
	if len(bytes.TrimSpace(raw)) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.Body), "body: %s", raw)
	}
	return out
}

func newAddress() string { return "G" + uuid.NewString() }

func TestHTTPServer_ContractScenario(t *testing.T) {
	base := startServer(t, nil)
	admin, user := newAddress(), newAddress()

	resp := call(t, base, http.MethodPost, "/v1/contract/initialize", map[string]any{"admin": admin}, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, true, resp.Body["ok"])

	resp = call(t, base, http.MethodPost, "/v1/contract/greet", map[string]any{"caller": user, "text": "Ana"}, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, contract.GreetingToken, resp.Body["token"])
	require.EqualValues(t, 1, resp.Body["greeting_count"])

	resp = call(t, base, http.MethodPost, "/v1/contract/greet", map[string]any{"caller": user, "text": "Luis"}, nil)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = call(t, base, http.MethodGet, "/v1/contract/counter", nil, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	require.EqualValues(t, 2, resp.Body["count"])

	resp = call(t, base, http.MethodGet, "/v1/contract/users/"+user+"/last-greeting", nil, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "Luis", resp.Body["text"])
	require.Equal(t, true, resp.Body["found"])

	resp = call(t, base, http.MethodGet, "/v1/contract/users/"+user+"/counter", nil, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	require.EqualValues(t, 2, resp.Body["count"])

	resp = call(t, base, http.MethodPost, "/v1/contract/reset-counter", map[string]any{"caller": user}, nil)
	require.Equal(t, http.StatusForbidden, resp.Status)
	require.Equal(t, "UNAUTHORIZED", resp.Body["reason"])

	resp = call(t, base, http.MethodPost, "/v1/contract/reset-counter", map[string]any{"caller": admin}, nil)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = call(t, base, http.MethodGet, "/v1/contract/counter", nil, nil)
	require.EqualValues(t, 0, resp.Body["count"])

	resp = call(t, base, http.MethodGet, "/v1/contract/users/"+user+"/counter", nil, nil)
	require.EqualValues(t, 2, resp.Body["count"])

	resp = call(t, base, http.MethodPost, "/v1/contract/limit", map[string]any{"caller": admin, "limit": 3}, nil)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = call(t, base, http.MethodGet, "/v1/contract/limit", nil, nil)
	require.EqualValues(t, 3, resp.Body["limit"])

	resp = call(t, base, http.MethodPost, "/v1/contract/greet", map[string]any{"caller": user, "text": "Maria"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.Status)
	require.Equal(t, "INPUT_TOO_LONG", resp.Body["reason"])

	resp = call(t, base, http.MethodGet, "/v1/contract/snapshot?user="+user, nil, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, admin, resp.Body["admin"])
	require.EqualValues(t, 3, resp.Body["character_limit"])
}

func TestHTTPServer_ErrorStatuses(t *testing.T) {
	base := startServer(t, nil)
	admin, other := newAddress(), newAddress()

	resp := call(t, base, http.MethodPost, "/v1/contract/reset-counter", map[string]any{"caller": admin}, nil)
	require.Equal(t, http.StatusPreconditionFailed, resp.Status)
	require.Equal(t, "NOT_INITIALIZED", resp.Body["reason"])

	resp = call(t, base, http.MethodPost, "/v1/contract/greet", map[string]any{"caller": other, "text": ""}, nil)
	require.Equal(t, http.StatusBadRequest, resp.Status)
	require.Equal(t, "EMPTY_INPUT", resp.Body["reason"])

	resp = call(t, base, http.MethodPost, "/v1/contract/initialize", map[string]any{"admin": "  "}, nil)
	require.Equal(t, http.StatusBadRequest, resp.Status)
	require.Equal(t, services.ReasonInvalidAddress, resp.Body["reason"])

	require.Equal(t, http.StatusOK, call(t, base, http.MethodPost, "/v1/contract/initialize", map[string]any{"admin": admin}, nil).Status)

	resp = call(t, base, http.MethodPost, "/v1/contract/initialize", map[string]any{"admin": other}, nil)
	require.Equal(t, http.StatusConflict, resp.Status)
	require.Equal(t, "ALREADY_INITIALIZED", resp.Body["reason"])

	resp = call(t, base, http.MethodPost, "/v1/contract/transfer-admin", map[string]any{"caller": other, "new_admin": other}, nil)
	require.Equal(t, http.StatusForbidden, resp.Status)

	resp = call(t, base, http.MethodGet, "/v1/contract/admin", nil, nil)
	require.Equal(t, admin, resp.Body["admin"])
}

func TestHTTPServer_CallerFromMetadataHeader(t *testing.T) {
	base := startServer(t, nil)
	admin, next := newAddress(), newAddress()
	require.Equal(t, http.StatusOK, call(t, base, http.MethodPost, "/v1/contract/initialize", map[string]any{"admin": admin}, nil).Status)

	header := http.Header{}
	header.Set(metadata.HeaderUserID, admin)
	resp := call(t, base, http.MethodPost, "/v1/contract/transfer-admin", map[string]any{"new_admin": next}, header)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = call(t, base, http.MethodGet, "/v1/contract/admin", nil, nil)
	require.Equal(t, next, resp.Body["admin"])

	resp = call(t, base, http.MethodPost, "/v1/contract/greet", map[string]any{"text": "Ana"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.Status)
	require.Equal(t, services.ReasonInvalidAddress, resp.Body["reason"])
}

func TestHTTPServer_HealthAndMetrics(t *testing.T) {
	base := startServer(t, readyStub{err: errors.New("pool closed")})

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	require.Equal(t, http.StatusOK, call(t, base, http.MethodGet, "/v1/contract/counter", nil, nil).Status)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(raw), "go_goroutines"))
}
