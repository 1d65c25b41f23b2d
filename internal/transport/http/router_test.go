package httptransport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokerage/internal/audit"
	"brokerage/internal/auth"
	"brokerage/internal/claims"
	"brokerage/internal/clients"
	"brokerage/internal/policies"
	"brokerage/internal/products"
	"brokerage/internal/reports"
	"brokerage/internal/storage"
	httptransport "brokerage/internal/transport/http"
	"brokerage/pkg/testutil"
)

// newTestServer assembles the full router over in-memory stores, the same
// wiring as the server minus Prometheus registration.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := testutil.DiscardLogger()
	auditor := audit.NewPublisher(audit.NewInMemoryStore(), nil, log)

	clientStore := storage.NewInMemoryClientStore()
	productStore := storage.NewInMemoryProductStore()
	policyStore := storage.NewInMemoryPolicyStore()
	claimStore := storage.NewInMemoryClaimStore()

	sessions := auth.NewInMemorySessionStore()
	tokens := auth.NewJWTService("router-test-signing-key", "brokerage", "brokerage-api")
	authSvc := auth.NewService(auth.NewInMemoryUserStore(), sessions, tokens, auditor, log)

	_, err := authSvc.CreateUser(context.Background(), "carla", "admin-secret-1", auth.RoleAdmin)
	require.NoError(t, err)
	_, err = authSvc.CreateUser(context.Background(), "otto", "operator-secret-1", auth.RoleOperator)
	require.NoError(t, err)

	clientSvc := clients.NewService(clientStore, auditor, log)
	productSvc := products.NewService(productStore, auditor, log)
	policySvc := policies.NewService(policyStore, clientStore, productStore, claimStore, auditor, nil, log)
	claimSvc := claims.NewService(claimStore, policyStore, policySvc, storage.NopTransactor{}, auditor, nil, log)
	reportSvc := reports.NewService(
		reports.NewStoreQueries(clientStore, productStore, policyStore, claimStore),
		auditor, log, t.TempDir())

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:   log,
		Tokens:   tokens,
		Sessions: sessions,
		Auth:     auth.NewHandler(authSvc, log),
		Clients:  clients.NewHandler(clientSvc, log),
		Products: products.NewHandler(productSvc, log),
		Policies: policies.NewHandler(policySvc, log),
		Claims:   claims.NewHandler(claimSvc, log),
		Reports:  reports.NewHandler(reportSvc, log),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()

	resp, err := http.Post(server.URL+"/auth/login", "application/json",
		strings.NewReader(`{"username":"`+username+`","password":"`+password+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := testutil.DecodeBody[map[string]any](t, resp.Body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func doJSON(t *testing.T, server *httptest.Server, method, path, token, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouterHealth(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterRequiresAuth(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, server, http.MethodGet, "/clients", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, server, http.MethodGet, "/clients", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouterLoginAndRegisterClient(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "otto", "operator-secret-1")

	resp := doJSON(t, server, http.MethodPost, "/clients", token, `{
		"name": "Maria Silva",
		"national_id": "529.982.247-25",
		"birth_date": "15/03/1990",
		"email": "maria@example.com"
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, server, http.MethodGet, "/clients/52998224725", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := testutil.DecodeBody[map[string]any](t, resp.Body)
	assert.Equal(t, "Maria Silva", body["name"])
}

func TestRouterAdminOnly(t *testing.T) {
	server := newTestServer(t)
	userBody := `{"username":"nina","password":"nina-secret-1","role":"operator"}`

	operator := login(t, server, "otto", "operator-secret-1")
	resp := doJSON(t, server, http.MethodPost, "/users", operator, userBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, server, http.MethodPost, "/policies/POL-1/cancel", operator, `{"reason":"fraud"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := login(t, server, "carla", "admin-secret-1")
	resp = doJSON(t, server, http.MethodPost, "/users", admin, userBody)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRouterLogoutRevokesSession(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "otto", "operator-secret-1")

	resp := doJSON(t, server, http.MethodPost, "/auth/logout", token, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, server, http.MethodGet, "/clients", token, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouterWrongCredentials(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/auth/login", "application/json",
		strings.NewReader(`{"username":"otto","password":"wrong"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
