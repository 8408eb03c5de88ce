package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/devconnector-go/auth"
	"github.com/user/devconnector-go/avatar"
	"github.com/user/devconnector-go/config"
	"github.com/user/devconnector-go/users"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestHandler(t *testing.T, health Pinger) http.Handler {
	t.Helper()
	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewJWTIssuer(config.AuthConfig{
		JWTSecret:     "router-test-secret",
		TokenDuration: config.DefaultTokenDuration,
	})
	require.NoError(t, err)

	service := users.NewUserService(users.Deps{
		Store:   users.NewMemoryStore(),
		Avatars: avatar.NewGenerator(avatar.DefaultOptions),
		Hasher:  hasher,
		Tokens:  tokens,
	})
	return newRouter(routerDeps{
		Users:          users.NewUserHandlers(service, zap.NewNop()),
		Tokens:         tokens,
		Logger:         zap.NewNop(),
		AllowedOrigins: []string{"*"},
		Health:         health,
	})
}

func TestRouter_RegisterThenFetchCurrentUser(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	req = httptest.NewRequest(http.MethodGet, "/api/auth", nil)
	req.Header.Set(auth.TokenHeader, body.Token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)
}

func TestRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler(t, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	newTestHandler(t, stubPinger{err: errors.New("down")}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestHandler(t, nil)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "devconnector_http_requests_total")
}

func TestRouter_CORSPreflightAllowsTokenHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/auth", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", auth.TokenHeader)
	w := httptest.NewRecorder()
	newTestHandler(t, nil).ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), auth.TokenHeader)
}

func TestRouter_SwaggerDoc(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler(t, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/users")
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()
	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"serve", "migrate"}, names)
	assert.Len(t, app.Command("migrate").Subcommands, 3)
}
