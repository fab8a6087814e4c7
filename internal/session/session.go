// Package session holds the authenticated identity for one client process.
// It mirrors the lifecycle anonymous -> checking -> authenticated, persisting
// the bearer token across restarts through a tokenstore.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/rafaelmeneses/shopfront/internal/httpapi"
	"github.com/rafaelmeneses/shopfront/internal/models"
	"github.com/rafaelmeneses/shopfront/internal/tokenstore"
)

// ErrLoginFailed is returned when credentials are rejected. The recorded
// Err() carries the server detail when one was provided.
var ErrLoginFailed = errors.New("login failed")

const adminRequiredMsg = "Access denied. Admin privileges required."

// Session is the auth state holder. All operations are safe for concurrent
// use; reads reflect the most recent completed operation.
type Session struct {
	api   *httpapi.Client
	store tokenstore.Store
	role  tokenstore.Role
	log   *logrus.Entry

	mu       sync.Mutex
	user     *models.User
	loading  bool
	errMsg   string
	watchers []func()
}

// New builds a session holder for the client's role. A holder constructed
// over an admin-role client refuses to establish sessions for non-admins.
func New(api *httpapi.Client, store tokenstore.Store, log *logrus.Logger) *Session {
	return &Session{
		api:   api,
		store: store,
		role:  api.Role(),
		log:   log.WithField("component", "session"),
	}
}

type authResponse struct {
	models.User
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SignupFields are the details collected by the signup form.
type SignupFields struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CheckSession restores the session from a persisted token, if any. Meant to
// run once at startup; a failure simply leaves the session anonymous.
func (s *Session) CheckSession(ctx context.Context) {
	token, err := s.store.Token(s.role)
	if err != nil {
		return
	}
	if expired(token) {
		// No point asking the backend about a token that is already stale.
		if err := s.store.Clear(s.role); err != nil {
			s.log.WithError(err).Warn("failed to clear expired token")
		}
		return
	}

	s.setLoading(true)
	defer s.setLoading(false)

	var user models.User
	if err := s.api.Get(ctx, httpapi.EndpointMe, &user); err != nil {
		// httpapi already cleared the token on 401; clear for any other
		// failure too so a broken token cannot wedge startup forever.
		if clearErr := s.store.Clear(s.role); clearErr != nil {
			s.log.WithError(clearErr).Warn("failed to clear token")
		}
		return
	}

	if s.role == tokenstore.RoleAdmin && !user.IsAdmin() {
		if err := s.store.Clear(s.role); err != nil {
			s.log.WithError(err).Warn("failed to clear token")
		}
		s.setError(adminRequiredMsg)
		return
	}

	s.setUser(&user)
}

// Login authenticates with email/password and persists the returned token.
// For an admin-role session, valid credentials for a non-admin account are
// treated as a failed login and the token is discarded.
func (s *Session) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}

	var resp authResponse
	if err := s.api.Post(ctx, httpapi.EndpointLogin, body, &resp); err != nil {
		msg := httpapi.Detail(err, "Login failed")
		s.setError(msg)
		return fmt.Errorf("%w: %s", ErrLoginFailed, msg)
	}

	if s.role == tokenstore.RoleAdmin && !resp.User.IsAdmin() {
		// Deliberately indistinguishable from bad credentials; do not
		// reveal that the password was right for a non-admin account.
		s.setError(adminRequiredMsg)
		return fmt.Errorf("%w: %s", ErrLoginFailed, adminRequiredMsg)
	}

	if err := s.store.Save(s.role, resp.AccessToken); err != nil {
		s.log.WithError(err).Error("failed to persist token")
	}
	s.setUser(&resp.User)
	return nil
}

// Signup registers a new account and establishes a session on success.
func (s *Session) Signup(ctx context.Context, fields SignupFields) error {
	var resp authResponse
	if err := s.api.Post(ctx, httpapi.EndpointSignup, fields, &resp); err != nil {
		msg := httpapi.Detail(err, "Signup failed")
		s.setError(msg)
		return fmt.Errorf("%w: %s", ErrLoginFailed, msg)
	}

	if err := s.store.Save(s.role, resp.AccessToken); err != nil {
		s.log.WithError(err).Error("failed to persist token")
	}
	s.setUser(&resp.User)
	return nil
}

// Refresh swaps the persisted token for a fresh one.
func (s *Session) Refresh(ctx context.Context) error {
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := s.api.Post(ctx, httpapi.EndpointRefresh, nil, &resp); err != nil {
		return err
	}
	return s.store.Save(s.role, resp.AccessToken)
}

// Logout clears the token and user locally; the backend is not called.
func (s *Session) Logout() {
	if err := s.store.Clear(s.role); err != nil {
		s.log.WithError(err).Warn("failed to clear token")
	}
	s.mu.Lock()
	s.user = nil
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
}

// ForceLogout drops the in-memory session after the API client has already
// cleared the token (the 401 hook).
func (s *Session) ForceLogout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *Session) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.IsAdmin()
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the message from the last failed operation, empty when the
// last operation succeeded or the error was cleared.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Session) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers a callback invoked after every state change, so
// header-style widgets can re-render without polling.
func (s *Session) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
	s.notify()
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	s.mu.Lock()
	watchers := make([]func(), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn()
	}
}

// expired reports whether the JWT's exp claim has passed. The signature is
// not verified here; only the backend can do that, this just avoids a
// guaranteed 401 round-trip.
func expired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false // opaque token, let the backend decide
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
