package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/rafaelmeneses/shopfront/internal/httpapi"
	"github.com/rafaelmeneses/shopfront/internal/stubserver"
	"github.com/rafaelmeneses/shopfront/internal/tokenstore"
)

func newTestSession(t *testing.T, opts ...httpapi.Option) (*Session, *httpapi.Client, tokenstore.Store) {
	t.Helper()
	srv := httptest.NewServer(stubserver.New().Router())
	t.Cleanup(srv.Close)

	store := tokenstore.NewFileStore(filepath.Join(t.TempDir(), "tokens.json"))
	logger := logrus.New()
	api := httpapi.New(srv.URL, store, append([]httpapi.Option{httpapi.WithLogger(logger)}, opts...)...)
	return New(api, store, logger), api, store
}

func TestLoginEstablishesSession(t *testing.T) {
	sess, _, store := newTestSession(t)

	if err := sess.Login(context.Background(), "test@example.com", "password"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if !sess.IsAuthenticated() {
		t.Error("expected authenticated session")
	}
	if sess.IsAdmin() {
		t.Error("customer account must not be admin")
	}
	if u := sess.User(); u == nil || u.Email != "test@example.com" {
		t.Errorf("unexpected user: %+v", u)
	}
	if sess.Err() != "" {
		t.Errorf("unexpected error message: %q", sess.Err())
	}
	if _, err := store.Token(tokenstore.RoleCustomer); err != nil {
		t.Errorf("token not persisted: %v", err)
	}
}

func TestLoginBadPasswordSurfacesDetail(t *testing.T) {
	sess, _, store := newTestSession(t)

	err := sess.Login(context.Background(), "test@example.com", "wrong")
	if !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}

	if got := sess.Err(); got != "Incorrect email or password" {
		t.Errorf("expected server detail, got %q", got)
	}
	if sess.IsAuthenticated() {
		t.Error("failed login must leave the session anonymous")
	}
	if _, err := store.Token(tokenstore.RoleCustomer); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Errorf("no token should be persisted, got %v", err)
	}
}

func TestAdminRoleRejectsCustomerCredentials(t *testing.T) {
	sess, _, store := newTestSession(t, httpapi.WithRole(tokenstore.RoleAdmin))

	// Valid customer credentials must read as a plain failed login.
	err := sess.Login(context.Background(), "test@example.com", "password")
	if !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}
	if got := sess.Err(); got != "Access denied. Admin privileges required." {
		t.Errorf("unexpected message: %q", got)
	}
	if sess.IsAuthenticated() {
		t.Error("non-admin must not establish an admin session")
	}
	if _, err := store.Token(tokenstore.RoleAdmin); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Errorf("token must not be persisted for a rejected login, got %v", err)
	}
}

func TestAdminRoleAcceptsAdminCredentials(t *testing.T) {
	sess, _, _ := newTestSession(t, httpapi.WithRole(tokenstore.RoleAdmin))

	if err := sess.Login(context.Background(), "admin@ecommerce.com", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !sess.IsAdmin() {
		t.Error("expected admin session")
	}
}

func TestCheckSessionRestoresFromPersistedToken(t *testing.T) {
	sess, api, store := newTestSession(t)

	if err := sess.Login(context.Background(), "test@example.com", "password"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// A fresh process start: new holder, same persisted token.
	restored := New(api, store, logrus.New())
	restored.CheckSession(context.Background())

	if !restored.IsAuthenticated() {
		t.Error("expected session restored from persisted token")
	}
	if u := restored.User(); u == nil || u.Email != "test@example.com" {
		t.Errorf("unexpected restored user: %+v", u)
	}
}

func TestCheckSessionExpiredTokenSkipsBackend(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	store := tokenstore.NewFileStore(filepath.Join(t.TempDir(), "tokens.json"))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user_1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	if err := store.Save(tokenstore.RoleCustomer, signed); err != nil {
		t.Fatalf("Save: %v", err)
	}

	logger := logrus.New()
	api := httpapi.New(srv.URL, store, httpapi.WithLogger(logger))
	sess := New(api, store, logger)
	sess.CheckSession(context.Background())

	if hits.Load() != 0 {
		t.Errorf("expired token must not reach the backend, saw %d requests", hits.Load())
	}
	if sess.IsAuthenticated() {
		t.Error("expected anonymous session")
	}
	if _, err := store.Token(tokenstore.RoleCustomer); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Errorf("expired token should be cleared, got %v", err)
	}
}

func TestCheckSessionInvalidTokenCleared(t *testing.T) {
	sess, _, store := newTestSession(t)

	if err := store.Save(tokenstore.RoleCustomer, "not-a-real-token"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sess.CheckSession(context.Background())

	if sess.IsAuthenticated() {
		t.Error("expected anonymous session after token rejection")
	}
	if _, err := store.Token(tokenstore.RoleCustomer); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Errorf("rejected token should be cleared, got %v", err)
	}
}

func TestRejectedRequestForcesLogout(t *testing.T) {
	sess, api, store := newTestSession(t)
	api.SetUnauthorizedHook(sess.ForceLogout)

	if err := sess.Login(context.Background(), "test@example.com", "password"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Simulate server-side invalidation: the persisted token no longer works.
	if err := store.Save(tokenstore.RoleCustomer, "revoked"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	err := api.Get(context.Background(), httpapi.EndpointMe, nil)
	if !errors.Is(err, httpapi.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if sess.IsAuthenticated() {
		t.Error("401 must force the session back to anonymous")
	}
	if _, err := store.Token(tokenstore.RoleCustomer); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Errorf("token should be cleared after 401, got %v", err)
	}
}

func TestLogoutClearsSessionAndToken(t *testing.T) {
	sess, _, store := newTestSession(t)

	if err := sess.Login(context.Background(), "test@example.com", "password"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	sess.Logout()

	if sess.IsAuthenticated() || sess.User() != nil {
		t.Error("expected anonymous session after logout")
	}
	if _, err := store.Token(tokenstore.RoleCustomer); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Errorf("token should be cleared on logout, got %v", err)
	}
}

func TestSignupEstablishesSession(t *testing.T) {
	sess, _, _ := newTestSession(t)

	fields := SignupFields{
		Email:     "new@example.com",
		Password:  "secret123",
		FirstName: "New",
		LastName:  "Customer",
	}
	if err := sess.Signup(context.Background(), fields); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if !sess.IsAuthenticated() {
		t.Error("signup should establish a session")
	}

	// The same address cannot be registered twice.
	other, _, _ := newTestSession(t)
	fields.Email = "test@example.com"
	if err := other.Signup(context.Background(), fields); err == nil {
		t.Fatal("expected duplicate email to fail")
	}
	if got := other.Err(); got != "Email already registered" {
		t.Errorf("expected server detail, got %q", got)
	}
}

func TestSubscribeSeesStateChanges(t *testing.T) {
	sess, _, _ := newTestSession(t)

	var fired atomic.Int32
	sess.Subscribe(func() { fired.Add(1) })

	if err := sess.Login(context.Background(), "test@example.com", "password"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if fired.Load() == 0 {
		t.Error("watcher not notified on login")
	}

	before := fired.Load()
	sess.Logout()
	if fired.Load() == before {
		t.Error("watcher not notified on logout")
	}
}

func TestRefreshReplacesPersistedToken(t *testing.T) {
	sess, _, store := newTestSession(t)

	if err := sess.Login(context.Background(), "test@example.com", "password"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	old, err := store.Token(tokenstore.RoleCustomer)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	time.Sleep(1100 * time.Millisecond) // exp has second granularity
	if err := sess.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	fresh, err := store.Token(tokenstore.RoleCustomer)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if fresh == old {
		t.Error("refresh did not rotate the token")
	}
}
