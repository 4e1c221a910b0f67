package storeclient

import (
	"context"
	"net/http"
	"sync"
)

// SessionStore holds the authenticated user and bearer token for one session.
// Safe for concurrent use.
type SessionStore struct {
	client *Client

	mu    sync.RWMutex
	user  *User
	token string
}

func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

type authResponse struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Register creates an account and starts a session with the returned token.
func (s *SessionStore) Register(ctx context.Context, username, email, password, confirmPassword string) (*User, error) {
	body := map[string]string{
		"username":        username,
		"email":           email,
		"password":        password,
		"confirmPassword": confirmPassword,
	}

	var resp authResponse
	if err := s.client.do(ctx, http.MethodPost, "/api/auth/register", "", body, &resp); err != nil {
		return nil, err
	}

	s.set(&resp.User, resp.Token)
	return &resp.User, nil
}

// Login authenticates and starts a session with the returned token.
func (s *SessionStore) Login(ctx context.Context, username, password string) (*User, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	var resp authResponse
	if err := s.client.do(ctx, http.MethodPost, "/api/auth/login", "", body, &resp); err != nil {
		return nil, err
	}

	s.set(&resp.User, resp.Token)
	return &resp.User, nil
}

// Logout revokes the token server-side and clears the session. Local state is
// cleared even when the API call fails.
func (s *SessionStore) Logout(ctx context.Context) error {
	token := s.Token()
	s.set(nil, "")

	if token == "" {
		return nil
	}
	return s.client.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// CurrentUser re-fetches the authenticated user from the API and refreshes
// the cached copy.
func (s *SessionStore) CurrentUser(ctx context.Context) (*User, error) {
	token := s.Token()
	if token == "" {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "not logged in"}
	}

	var u User
	if err := s.client.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &u); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return &u, nil
}

// Token returns the current bearer token, or empty when logged out.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CachedUser returns the last known user without hitting the API.
func (s *SessionStore) CachedUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *SessionStore) set(user *User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()
}
