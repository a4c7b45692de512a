// ABOUTME: Authentication service: login, logout, and identity derivation.
// ABOUTME: Login/logout are the only writers of the persisted credential.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/j0chan/sesac-semi/internal/api"
)

// AuthError is returned when the backend rejects a login attempt. Message
// carries the server-provided text.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Service combines the API client and credential store into the auth surface
// the rest of the client uses.
type Service struct {
	client *api.Client
	store  *Store
}

// NewService creates an auth service over the given client and store.
func NewService(client *api.Client, store *Store) *Service {
	return &Service{client: client, store: store}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates against the backend and persists the returned
// credential. A rejected login is reported as *AuthError.
func (s *Service) Login(ctx context.Context, email, password string) error {
	var resp loginResponse
	err := s.client.Do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return &AuthError{Message: apiErr.Message}
		}
		return err
	}

	if resp.AccessToken == "" {
		return fmt.Errorf("login response missing access token")
	}
	return s.store.Save(resp.AccessToken)
}

// Logout clears the persisted credential unconditionally.
func (s *Service) Logout() error {
	return s.store.Clear()
}

// IsLoggedIn reports whether a credential is currently persisted. The store
// is read fresh on every call.
func (s *Service) IsLoggedIn() bool {
	_, ok := s.store.Token()
	return ok
}

// CurrentIdentity returns the subject claim of the persisted credential, or
// "" when logged out or when the claims segment cannot be decoded. Identity
// is informational only; it never gates anything and never fails.
func (s *Service) CurrentIdentity() string {
	token, ok := s.store.Token()
	if !ok {
		return ""
	}
	return subjectClaim(token)
}

// subjectClaim decodes the token's claims segment without verifying the
// signature and reads the sub claim. Any anomaly yields "".
func subjectClaim(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
