package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/config"
	"gorm.io/gorm"
)

// RoleStaff is the only privileged role
const RoleStaff = "staff"

// Session is an authenticated staff context, passed explicitly through requests
type Session struct {
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Provider  string    `json:"provider"`
}

// IdentityProvider issues and checks staff sessions
type IdentityProvider interface {
	// SignIn exchanges email and password for a session
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// Verify turns a bearer token back into its session
	Verify(ctx context.Context, token string) (*Session, error)
	// SignOut invalidates the session's token
	SignOut(ctx context.Context, session *Session) error
}

// NewIdentityProvider builds the provider selected by AUTH_PROVIDER
func NewIdentityProvider(cfg *config.Config, db *gorm.DB) (IdentityProvider, error) {
	switch cfg.AuthProvider {
	case "local":
		return NewLocalIdentity(db, cfg.JWTSecret, cfg.SessionTTL), nil
	case "auth0":
		return NewAuth0Identity(cfg)
	default:
		return nil, fmt.Errorf("unsupported auth provider %q", cfg.AuthProvider)
	}
}

type sessionContextKey struct{}

// WithSession returns a context carrying the session
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the session stored by WithSession
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}

// RevocationList remembers signed-out tokens until they would have expired anyway
type RevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewRevocationList creates an empty list
func NewRevocationList() *RevocationList {
	return &RevocationList{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke blocks token until expiresAt
func (r *RevocationList) Revoke(token string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	r.entries[token] = expiresAt
}

// IsRevoked reports whether token was signed out
func (r *RevocationList) IsRevoked(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	_, ok := r.entries[token]
	return ok
}

// Len returns the number of tokens still tracked
func (r *RevocationList) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	return len(r.entries)
}

func (r *RevocationList) prune() {
	now := r.now()
	for token, exp := range r.entries {
		if !exp.After(now) {
			delete(r.entries, token)
		}
	}
}
