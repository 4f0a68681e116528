package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sekawan-grup/raya/internal/domain"
	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/store/sqlstore"
	"github.com/sekawan-grup/raya/internal/token"
)

// MinPasswordLength is the shortest new password the API accepts.
const MinPasswordLength = 6

type AdminStore interface {
	ByUsername(ctx context.Context, username string) (*domain.Admin, error)
	ByID(ctx context.Context, id uint) (*domain.Admin, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
}

// RevocationList remembers logged out tokens until they expire.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Auth struct {
	admins  AdminStore
	issuer  *token.Issuer
	revoked RevocationList
	log     logger.Logger
}

func NewAuth(admins AdminStore, issuer *token.Issuer, revoked RevocationList, log logger.Logger) *Auth {
	return &Auth{
		admins:  admins,
		issuer:  issuer,
		revoked: revoked,
		log:     log.Named("auth"),
	}
}

// Login checks the credentials and returns a signed session token.
func (a *Auth) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", invalid("username", "Username and password are required")
	}

	admin, err := a.admins.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sqlstore.ErrAdminNotFound) {
			a.log.Info("login rejected", logger.String("username", username), logger.String("reason", "unknown user"))
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load admin: %w", err)
	}

	if !CheckPassword(password, admin.Password) {
		a.log.Info("login rejected", logger.String("username", username), logger.String("reason", "wrong password"))
		return "", ErrInvalidCredentials
	}

	signed, claims, err := a.issuer.Issue(*admin)
	if err != nil {
		return "", err
	}

	a.log.Info("login succeeded",
		logger.String("username", admin.Username),
		logger.Time("expires_at", claims.Expiry()))
	return signed, nil
}

// Authenticate verifies a bearer token and rejects revoked ones.
func (a *Auth) Authenticate(ctx context.Context, bearer string) (token.Claims, error) {
	claims, err := a.issuer.Verify(bearer)
	if err != nil {
		return token.Claims{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if claims.RegisteredClaims.ID != "" {
		revoked, err := a.revoked.IsRevoked(ctx, claims.RegisteredClaims.ID)
		if err != nil {
			return token.Claims{}, fmt.Errorf("failed to check revocation: %w", err)
		}
		if revoked {
			return token.Claims{}, fmt.Errorf("%w: %w", ErrUnauthorized, ErrTokenRevoked)
		}
	}
	return claims, nil
}

// Logout revokes the token described by claims until its expiry.
func (a *Auth) Logout(ctx context.Context, claims token.Claims) error {
	if claims.RegisteredClaims.ID == "" {
		return nil
	}
	if err := a.revoked.RevokeToken(ctx, claims.RegisteredClaims.ID, claims.Expiry()); err != nil {
		return err
	}
	a.log.Info("logout", logger.String("username", claims.Username))
	return nil
}

// ChangePassword replaces the password of adminID after checking the current one.
func (a *Auth) ChangePassword(ctx context.Context, adminID uint, current, next string) error {
	if current == "" || next == "" {
		return invalid("new_password", "Input tidak valid")
	}
	if len(next) < MinPasswordLength {
		return invalid("new_password", fmt.Sprintf("Password baru minimal %d karakter", MinPasswordLength))
	}

	admin, err := a.admins.ByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !CheckPassword(current, admin.Password) {
		return ErrWrongPassword
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := a.admins.UpdatePassword(ctx, adminID, hash); err != nil {
		return err
	}

	a.log.Info("password changed", logger.String("username", admin.Username))
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
