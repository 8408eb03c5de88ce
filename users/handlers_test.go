package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/devconnector-go/apperror"
	"github.com/user/devconnector-go/auth"
)

func newTestRouter(f *fixture) http.Handler {
	handlers := NewUserHandlers(f.service(), zap.NewNop())
	r := chi.NewRouter()
	r.Post("/api/users", handlers.HandleRegister())
	r.With(auth.Middleware(f.issuer, zap.NewNop())).Get("/api/auth", handlers.HandleGetAuthUser())
	return r
}

func postUsers(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeErrors(t *testing.T, w *httptest.ResponseRecorder) []apperror.FieldError {
	t.Helper()
	var body apperror.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Errors
}

func TestHandleRegister_Success(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	w := postUsers(t, h, `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	claims, err := f.issuer.Parse(resp.Token)
	require.NoError(t, err)
	stored, err := f.memory.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.User.ID)
}

func TestHandleRegister_ValidationMessages(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	w := postUsers(t, h, `{"email":"not-an-email","password":"123"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []apperror.FieldError{
		{Msg: "Name is required", Param: "name", Location: "body"},
		{Msg: "Please include a valid email", Param: "email", Location: "body"},
		{Msg: "Please enter a password with 6 or more characters", Param: "password", Location: "body"},
	}, decodeErrors(t, w))
	assert.Zero(t, f.store.inserts.Load())
}

func TestHandleRegister_ResubmitIsRejected(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)
	body := `{"name":"Alice","email":"a@b.com","password":"secret1"}`

	require.Equal(t, http.StatusOK, postUsers(t, h, body).Code)

	w := postUsers(t, h, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"User already exists"}]}`, w.Body.String())
	assert.EqualValues(t, 1, f.store.inserts.Load())
}

func TestHandleRegister_MalformedBody(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	w := postUsers(t, h, `{"name":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decodeErrors(t, w)
	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid request body", errs[0].Msg)
	assert.Zero(t, f.store.finds.Load())
}

func TestHandleRegister_ServerError(t *testing.T) {
	f := newFixture(t)
	f.store.findErr = errors.New("connection refused")
	h := newTestRouter(f)

	w := postUsers(t, h, `{"name":"Alice","email":"a@b.com","password":"secret1"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server error", w.Body.String())
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestHandleGetAuthUser(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	w := postUsers(t, h, `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var tok TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))

	req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
	req.Header.Set(auth.TokenHeader, tok.Token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var me UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "Alice", me.Name)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.NotEmpty(t, me.Avatar)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestHandleGetAuthUser_Unauthenticated(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token, authorization denied", decodeErrors(t, w)[0].Msg)
}

func TestHandleGetAuthUser_DeletedAccount(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	// A well-formed token for an id the store has never seen.
	token, err := f.issuer.Issue("5b0f3c1e-8a0d-4c52-9d7e-3e1a2b4c5d6f")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
