package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/store"

	impl "accounts/internal/service/impl"
	httpx "accounts/internal/transport/http"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubMailer struct {
	err  error
	sent []struct{ to, token string }
}

func (m *stubMailer) SendActivation(ctx context.Context, to, token string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, struct{ to, token string }{to, token})
	return nil
}

type env struct {
	router   http.Handler
	st       *store.Store
	mailer   *stubMailer
	seedHash string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "accounts.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	st := store.New(gdb)
	if err := st.AutoMigrate(); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	mailer := &stubMailer{}
	pw := impl.NewPasswordServiceBcrypt()
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     "http://localhost:8080",
		Audience:   "client",
		SigningKey: []byte("test-signing-key"),
	})
	us := impl.NewUserServiceImpl(st, pw, mailer)
	as := impl.NewAuthServiceImpl(st, pw)

	hash, err := pw.Hash("P4ssword")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	router := httpx.NewRouter(httpx.NewHandler(us, as, ts, pw), httpx.RouterConfig{})
	return &env{router: router, st: st, mailer: mailer, seedHash: hash}
}

func (e *env) addUsers(t *testing.T, active, inactive int) {
	t.Helper()
	now := time.Now().UTC()
	for i := 1; i <= active+inactive; i++ {
		u := &domain.User{
			Username:  fmt.Sprintf("user%d", i),
			Email:     fmt.Sprintf("user%d@mail.com", i),
			Password:  e.seedHash,
			Inactive:  i > active,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if u.Inactive {
			token := fmt.Sprintf("token-%d", i)
			u.ActivationToken = &token
		}
		if err := e.st.Users().Create(context.Background(), u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
}

func (e *env) do(t *testing.T, method, path string, body any, modify ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range modify {
		m(req)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func (e *env) token(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/1.0/auth", dto.AuthRequest{Email: email, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("auth for token: status %d body %s", rec.Code, rec.Body.String())
	}
	return decode[dto.AuthResponse](t, rec).Token
}

func withLanguage(lang string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Accept-Language", lang) }
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func registerBody() dto.RegisterRequest {
	return dto.RegisterRequest{Username: "user1", Email: "user1@mail.com", Password: "P4ssword"}
}

type errBody struct {
	Path             string            `json:"path"`
	Timestamp        int64             `json:"timestamp"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validationErrors"`
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRegisterUser(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/1.0/users", registerBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if msg := decode[map[string]string](t, rec)["message"]; msg != "User created" {
		t.Fatalf("message = %q, want %q", msg, "User created")
	}

	u, err := e.st.Users().GetByEmail(context.Background(), "user1@mail.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !u.Inactive || u.ActivationToken == nil {
		t.Fatalf("persisted row must be inactive with a token: %+v", u)
	}
}

func TestRegisterUserSpanishMessage(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/1.0/users", registerBody(), withLanguage("es"))
	if msg := decode[map[string]string](t, rec)["message"]; msg != "Usuario creado" {
		t.Fatalf("message = %q, want %q", msg, "Usuario creado")
	}
}

func TestRegisterValidationFailure(t *testing.T) {
	e := newEnv(t)
	before := time.Now().UnixMilli()

	body := registerBody()
	body.Username = ""
	body.Email = ""

	rec := e.do(t, http.MethodPost, "/api/1.0/users", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	eb := decode[errBody](t, rec)
	if eb.Path != "/api/1.0/users" {
		t.Fatalf("path = %q", eb.Path)
	}
	if eb.Timestamp < before {
		t.Fatalf("timestamp %d predates request start %d", eb.Timestamp, before)
	}
	if eb.Message != "Validation failure" {
		t.Fatalf("message = %q", eb.Message)
	}
	if eb.ValidationErrors["username"] != "Username is required" || eb.ValidationErrors["email"] != "E-mail is required" {
		t.Fatalf("validationErrors = %v", eb.ValidationErrors)
	}
}

func TestRegisterValidationFailureLocalized(t *testing.T) {
	e := newEnv(t)

	body := registerBody()
	body.Username = ""

	rec := e.do(t, http.MethodPost, "/api/1.0/users", body, withLanguage("es"))
	eb := decode[errBody](t, rec)
	if eb.ValidationErrors["username"] != "El usuario es requerido" {
		t.Fatalf("validationErrors = %v", eb.ValidationErrors)
	}
}

func TestRegisterEmailInUse(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 1, 0)

	rec := e.do(t, http.MethodPost, "/api/1.0/users", registerBody())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	eb := decode[errBody](t, rec)
	if eb.ValidationErrors["email"] != "E-mail in use" {
		t.Fatalf("validationErrors = %v", eb.ValidationErrors)
	}
}

func TestRegisterMailFailureRollsBack(t *testing.T) {
	e := newEnv(t)
	e.mailer.err = fmt.Errorf("smtp unreachable")

	rec := e.do(t, http.MethodPost, "/api/1.0/users", registerBody())
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if msg := decode[errBody](t, rec).Message; msg != "E-mail failure" {
		t.Fatalf("message = %q", msg)
	}

	var count int64
	if err := e.st.DB.Model(&domain.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero rows after rollback, found %d", count)
	}
}

func TestActivationFlow(t *testing.T) {
	e := newEnv(t)

	if rec := e.do(t, http.MethodPost, "/api/1.0/users", registerBody()); rec.Code != http.StatusOK {
		t.Fatalf("register: status %d", rec.Code)
	}
	token := e.mailer.sent[0].token

	rec := e.do(t, http.MethodPost, "/api/1.0/users/token/"+token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("activate: status %d body %s", rec.Code, rec.Body.String())
	}
	if msg := decode[map[string]string](t, rec)["message"]; msg != "Account is activated" {
		t.Fatalf("message = %q", msg)
	}

	u, err := e.st.Users().GetByEmail(context.Background(), "user1@mail.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Inactive || u.ActivationToken != nil {
		t.Fatalf("row not activated: %+v", u)
	}

	// Replaying the consumed token always fails the same way.
	rec = e.do(t, http.MethodPost, "/api/1.0/users/token/"+token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("replay: status = %d, want 400", rec.Code)
	}
	if msg := decode[errBody](t, rec).Message; msg != "This account is either active or the token is invalid" {
		t.Fatalf("replay message = %q", msg)
	}
}

func TestActivationUnknownToken(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/1.0/users/token/never-issued", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListUsersDefaults(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 11, 0)

	rec := e.do(t, http.MethodGet, "/api/1.0/users", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	page := decode[dto.UserPage](t, rec)
	if len(page.Content) != 10 || page.Page != 0 || page.Size != 10 || page.TotalPages != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestListUsersSecondPage(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 11, 0)

	page := decode[dto.UserPage](t, e.do(t, http.MethodGet, "/api/1.0/users?page=1", nil))
	if page.Page != 1 || len(page.Content) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Content[0].Username != "user11" {
		t.Fatalf("first entry = %q, want user11", page.Content[0].Username)
	}
}

func TestListUsersQueryNormalization(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 11, 0)

	tests := []struct {
		query    string
		wantLen  int
		wantPage int
		wantSize int
	}{
		{"?size=5", 5, 0, 5},
		{"?size=1000", 10, 0, 10},
		{"?size=0", 10, 0, 10},
		{"?page=-5", 10, 0, 10},
		{"?page=page&size=size", 10, 0, 10},
	}
	for _, tt := range tests {
		page := decode[dto.UserPage](t, e.do(t, http.MethodGet, "/api/1.0/users"+tt.query, nil))
		if len(page.Content) != tt.wantLen || page.Page != tt.wantPage || page.Size != tt.wantSize {
			t.Fatalf("%s: unexpected page %+v", tt.query, page)
		}
	}
}

func TestListUsersHugePageReturnsEmptyWindow(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 3, 0)

	page := decode[dto.UserPage](t, e.do(t, http.MethodGet, "/api/1.0/users?page=9223372036854775807", nil))
	if len(page.Content) != 0 {
		t.Fatalf("content length = %d, want 0 (window far past the last row)", len(page.Content))
	}
	if page.TotalPages != 1 {
		t.Fatalf("totalPages = %d, want 1", page.TotalPages)
	}
}

func TestListUsersHidesInactive(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 6, 5)

	page := decode[dto.UserPage](t, e.do(t, http.MethodGet, "/api/1.0/users", nil))
	if len(page.Content) != 6 || page.TotalPages != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestListUsersExcludesBasicAuthCaller(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 3, 0)

	page := decode[dto.UserPage](t, e.do(t, http.MethodGet, "/api/1.0/users", nil, func(r *http.Request) {
		r.SetBasicAuth("user1@mail.com", "P4ssword")
	}))
	if len(page.Content) != 2 {
		t.Fatalf("content length = %d, want 2", len(page.Content))
	}
	for _, u := range page.Content {
		if u.Email == "user1@mail.com" {
			t.Fatal("caller must not appear in the directory")
		}
	}
}

func TestListUsersBadBasicAuthIsNonFatal(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 3, 0)

	rec := e.do(t, http.MethodGet, "/api/1.0/users", nil, func(r *http.Request) {
		r.SetBasicAuth("user1@mail.com", "wrong-password")
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (gate never rejects)", rec.Code)
	}
	if page := decode[dto.UserPage](t, rec); len(page.Content) != 3 {
		t.Fatalf("content length = %d, want 3 (no identity, no exclusion)", len(page.Content))
	}
}

func TestGetUser(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 1, 0)

	rec := e.do(t, http.MethodGet, "/api/1.0/users/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	// Only id, username and email may appear in the outward view.
	raw := decode[map[string]any](t, rec)
	for _, forbidden := range []string{"password", "inactive", "activationToken"} {
		if _, ok := raw[forbidden]; ok {
			t.Fatalf("response leaks %q: %v", forbidden, raw)
		}
	}
	if raw["username"] != "user1" || raw["email"] != "user1@mail.com" {
		t.Fatalf("unexpected view: %v", raw)
	}
}

func TestGetUserNotFound(t *testing.T) {
	e := newEnv(t)
	before := time.Now().UnixMilli()

	rec := e.do(t, http.MethodGet, "/api/1.0/users/5", nil, withLanguage("es"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	eb := decode[errBody](t, rec)
	if eb.Message != "Usuario no encontrado" {
		t.Fatalf("message = %q", eb.Message)
	}
	if eb.Path != "/api/1.0/users/5" || eb.Timestamp < before {
		t.Fatalf("unexpected error body: %+v", eb)
	}
}

func TestGetUserHidesInactive(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 0, 1)

	if rec := e.do(t, http.MethodGet, "/api/1.0/users/1", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAuthSuccess(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 1, 0)

	rec := e.do(t, http.MethodPost, "/api/1.0/auth", dto.AuthRequest{Email: "user1@mail.com", Password: "P4ssword"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}

	raw := decode[map[string]any](t, rec)
	if len(raw) != 3 {
		t.Fatalf("body must contain exactly id, username and token: %v", raw)
	}
	if raw["username"] != "user1" || raw["token"] == "" {
		t.Fatalf("unexpected body: %v", raw)
	}
}

func TestAuthFailures(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 1, 1)

	tests := []struct {
		name     string
		body     dto.AuthRequest
		wantCode int
	}{
		{"unknown email", dto.AuthRequest{Email: "nobody@mail.com", Password: "P4ssword"}, http.StatusUnauthorized},
		{"wrong password", dto.AuthRequest{Email: "user1@mail.com", Password: "P4sword"}, http.StatusUnauthorized},
		{"missing email", dto.AuthRequest{Password: "P4ssword"}, http.StatusUnauthorized},
		{"missing password", dto.AuthRequest{Email: "user1@mail.com"}, http.StatusUnauthorized},
		{"inactive account", dto.AuthRequest{Email: "user2@mail.com", Password: "P4ssword"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := time.Now().UnixMilli()
			rec := e.do(t, http.MethodPost, "/api/1.0/auth", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}

			eb := decode[errBody](t, rec)
			if eb.Path != "/api/1.0/auth" || eb.Timestamp < before || eb.Message == "" {
				t.Fatalf("unexpected error body: %+v", eb)
			}
			if eb.ValidationErrors != nil {
				t.Fatalf("auth errors carry no validationErrors: %+v", eb)
			}
		})
	}
}

func TestAuthFailureLocalized(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/1.0/auth",
		dto.AuthRequest{Email: "user1@mail.com", Password: "P4ssword"}, withLanguage("es"))
	if msg := decode[errBody](t, rec).Message; msg != "Credenciales incorrectas" {
		t.Fatalf("message = %q", msg)
	}
}

func TestUpdateUserWithoutTokenIsForbidden(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 1, 0)
	before := time.Now().UnixMilli()

	rec := e.do(t, http.MethodPut, "/api/1.0/users/5", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	eb := decode[errBody](t, rec)
	if eb.Path != "/api/1.0/users/5" || eb.Timestamp < before {
		t.Fatalf("unexpected error body: %+v", eb)
	}
	if eb.Message != "You are not authorized to update user" {
		t.Fatalf("message = %q", eb.Message)
	}
}

func TestUpdateUserWithInvalidTokenIsForbidden(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 1, 0)

	rec := e.do(t, http.MethodPut, "/api/1.0/users/1",
		dto.UserUpdateRequest{Username: "user1-updated"}, withBearer("garbage"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestUpdateUserForDifferentUserIsForbidden(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 2, 0)

	token := e.token(t, "user1@mail.com", "P4ssword")
	rec := e.do(t, http.MethodPut, "/api/1.0/users/2",
		dto.UserUpdateRequest{Username: "hacked"}, withBearer(token))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	u, err := e.st.Users().GetByID(context.Background(), 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Username != "user2" {
		t.Fatalf("username = %q, row must be untouched", u.Username)
	}
}

func TestUpdateUserEmptyBodyIsBadRequest(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 1, 0)

	token := e.token(t, "user1@mail.com", "P4ssword")
	rec := e.do(t, http.MethodPut, "/api/1.0/users/1", nil, withBearer(token))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	eb := decode[errBody](t, rec)
	if eb.ValidationErrors["username"] != "Username is required" {
		t.Fatalf("validationErrors = %v", eb.ValidationErrors)
	}

	u, err := e.st.Users().GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Username != "user1" {
		t.Fatalf("username = %q, row must be untouched", u.Username)
	}
}

func TestUpdateUserAsOwner(t *testing.T) {
	e := newEnv(t)
	e.addUsers(t, 1, 0)

	token := e.token(t, "user1@mail.com", "P4ssword")
	rec := e.do(t, http.MethodPut, "/api/1.0/users/1",
		dto.UserUpdateRequest{Username: "user1-updated"}, withBearer(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}

	u, err := e.st.Users().GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Username != "user1-updated" {
		t.Fatalf("username = %q, want user1-updated", u.Username)
	}
}
