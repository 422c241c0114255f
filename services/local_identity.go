package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/logger"
	"github.com/bagusrestoration/bengkel-progress-api/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	localIssuer       = "bengkel-progress-api"
	minPasswordLength = 8
)

// StaffClaims are the claims of a locally issued session token
type StaffClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// LocalIdentity authenticates staff accounts stored in the application database
// and issues HS256 session tokens
type LocalIdentity struct {
	db      *gorm.DB
	secret  []byte
	ttl     time.Duration
	revoked *RevocationList
	now     func() time.Time
}

// NewLocalIdentity creates the local identity provider
func NewLocalIdentity(db *gorm.DB, secret string, ttl time.Duration) *LocalIdentity {
	return &LocalIdentity{
		db:      db,
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: NewRevocationList(),
		now:     time.Now,
	}
}

// CreateStaff adds a staff account with a bcrypt-hashed password
func (p *LocalIdentity) CreateStaff(ctx context.Context, email, name, password string) (*models.StaffAccount, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	switch {
	case email == "":
		return nil, missingField("email")
	case name == "":
		return nil, missingField("name")
	case len(password) < minPasswordLength:
		return nil, &ValidationError{
			Field:   "password",
			Code:    "PASSWORD_TOO_SHORT",
			Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength),
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.StaffAccount{Email: email, Name: name, PasswordHash: string(hash)}
	if err := p.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create staff account: %w", err)
	}
	return account, nil
}

func (p *LocalIdentity) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var account models.StaffAccount
	err := p.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load staff account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := p.now()
	expiresAt := now.Add(p.ttl)
	claims := StaffClaims{
		Email: account.Email,
		Name:  account.Name,
		Role:  RoleStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   strconv.FormatUint(uint64(account.ID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	logger.WithContext(ctx).Info("staff signed in", zap.String("email", account.Email))
	return &Session{
		Subject:   claims.Subject,
		Email:     account.Email,
		Name:      account.Name,
		Role:      RoleStaff,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Provider:  "local",
	}, nil
}

func (p *LocalIdentity) Verify(ctx context.Context, token string) (*Session, error) {
	if p.revoked.IsRevoked(token) {
		return nil, ErrSessionRevoked
	}

	claims := &StaffClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Role != RoleStaff {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidToken, claims.Role)
	}

	return &Session{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      claims.Role,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Provider:  "local",
	}, nil
}

func (p *LocalIdentity) SignOut(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return nil
	}
	p.revoked.Revoke(session.Token, session.ExpiresAt)
	logger.WithContext(ctx).Info("staff signed out", zap.String("email", session.Email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
