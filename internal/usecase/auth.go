package usecase

import (
	"context"
	"errors"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
	pkgAuth "github.com/polkiloo/pdfshop/internal/pkg/auth"
)

// AdminSubject is the token subject of the back-office operator.
const AdminSubject = "admin"

// AuthUseCase handles back-office login and token checks.
type AuthUseCase struct {
	passwordHash string
	hasher       pkgAuth.PasswordHasher
	tokens       pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase for the configured bcrypt hash.
func NewAuthUseCase(passwordHash string, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{passwordHash: passwordHash, hasher: hasher, tokens: strategy}
}

// Login checks the admin password and returns a session token.
func (u *AuthUseCase) Login(ctx context.Context, password string) (string, error) {
	if password == "" || u.passwordHash == "" {
		return "", domainErrors.ErrInvalidCredentials
	}
	if err := u.hasher.Compare(u.passwordHash, password); err != nil {
		return "", domainErrors.ErrInvalidCredentials
	}
	return u.tokens.IssueToken(AdminSubject)
}

// ParseToken returns the subject of a valid token.
func (u *AuthUseCase) ParseToken(token string) (string, error) {
	if token == "" {
		return "", pkgAuth.ErrInvalidToken
	}
	subject, err := u.tokens.ParseToken(token)
	if err != nil {
		return "", err
	}
	if subject != AdminSubject {
		return "", errors.Join(pkgAuth.ErrInvalidToken, domainErrors.ErrForbidden)
	}
	return subject, nil
}
