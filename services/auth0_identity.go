package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/bagusrestoration/bengkel-progress-api/config"
	"github.com/bagusrestoration/bengkel-progress-api/logger"
	"go.uber.org/zap"
)

// StaffPermission must be granted to an Auth0 user for them to act as staff
const StaffPermission = "manage:jobs"

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope       string   `json:"scope"`
	Permissions []string `json:"permissions"`
	Email       string   `json:"email"`
}

// Validate does nothing, but we need it to satisfy validator.CustomClaims interface.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	for _, s := range strings.Split(c.Scope, " ") {
		if s == expectedScope {
			return true
		}
	}
	for _, p := range c.Permissions {
		if p == expectedScope {
			return true
		}
	}
	return false
}

// Auth0Identity signs staff in with the password-realm grant and validates
// the resulting RS256 access tokens against the tenant's JWKS
type Auth0Identity struct {
	baseURL      string
	audience     string
	clientID     string
	clientSecret string
	realm        string
	httpClient   *http.Client
	validate     func(ctx context.Context, token string) (interface{}, error)
	revoked      *RevocationList
}

type auth0TokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// NewAuth0Identity creates the Auth0 identity provider from configuration
func NewAuth0Identity(cfg *config.Config) (*Auth0Identity, error) {
	base := auth0BaseURL(cfg.Auth0Domain)

	issuerURL, err := url.Parse(base + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	return &Auth0Identity{
		baseURL:      base,
		audience:     cfg.Auth0Audience,
		clientID:     cfg.Auth0ClientID,
		clientSecret: cfg.Auth0ClientSecret,
		realm:        cfg.Auth0Realm,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		validate: jwtValidator.ValidateToken,
		revoked:  NewRevocationList(),
	}, nil
}

// auth0BaseURL uses the domain as-is when it already carries a scheme (tests point it at httptest)
func auth0BaseURL(domain string) string {
	domain = strings.TrimRight(domain, "/")
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

func (p *Auth0Identity) SignIn(ctx context.Context, email, password string) (*Session, error) {
	payload, err := json.Marshal(map[string]string{
		"grant_type":    "http://auth0.com/oauth/grant-type/password-realm",
		"username":      strings.TrimSpace(email),
		"password":      password,
		"audience":      p.audience,
		"client_id":     p.clientID,
		"client_secret": p.clientSecret,
		"realm":         p.realm,
		"scope":         "openid profile email",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/oauth/token", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var token auth0TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token: %s", token.ErrorDescription)
	}

	session, err := p.Verify(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	if session.Email == "" {
		session.Email = strings.ToLower(strings.TrimSpace(email))
	}

	logger.WithContext(ctx).Info("staff signed in", zap.String("email", session.Email), zap.String("provider", "auth0"))
	return session, nil
}

func (p *Auth0Identity) Verify(ctx context.Context, token string) (*Session, error) {
	if p.revoked.IsRevoked(token) {
		return nil, ErrSessionRevoked
	}

	raw, err := p.validate(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := raw.(*validator.ValidatedClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type %T", ErrInvalidToken, raw)
	}

	custom, _ := claims.CustomClaims.(*CustomClaims)
	if custom == nil || !custom.HasScope(StaffPermission) {
		return nil, fmt.Errorf("%w: missing %s permission", ErrInvalidToken, StaffPermission)
	}

	session := &Session{
		Subject:  claims.RegisteredClaims.Subject,
		Email:    custom.Email,
		Role:     RoleStaff,
		Token:    token,
		Provider: "auth0",
	}
	if claims.RegisteredClaims.Expiry > 0 {
		session.ExpiresAt = time.Unix(claims.RegisteredClaims.Expiry, 0)
	}
	return session, nil
}

func (p *Auth0Identity) SignOut(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return nil
	}
	expiresAt := session.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(24 * time.Hour)
	}
	p.revoked.Revoke(session.Token, expiresAt)
	logger.WithContext(ctx).Info("staff signed out", zap.String("email", session.Email), zap.String("provider", "auth0"))
	return nil
}
